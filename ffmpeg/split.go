// Package ffmpeg provides functionality for detecting and working with FFmpeg.
// This file implements size-constrained video splitting: a bisection search
// over candidate cut points that keeps every stream-copied segment at or
// under a size ceiling without re-encoding the source.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Public variables (alphabetical)

// ErrCannotReadMedia is returned when probing yields no usable duration,
// meaning the file cannot be split.
var ErrCannotReadMedia = errors.New("cannot read video information")

// ErrExtractionFailed is returned when the final extraction of an accepted
// segment fails. Trial failures during search are recovered internally and
// never surface through this error.
var ErrExtractionFailed = errors.New("segment extraction failed")

// ErrSameDirectory is returned when the requested output directory is the
// directory containing the input file.
var ErrSameDirectory = errors.New("output directory must differ from input directory")

// Private types (alphabetical)

// logThrottle suppresses duplicate diagnostic lines and limits their rate.
// One instance is created per split session so concurrent or consecutive
// sessions never share dedup state.
type logThrottle struct {
	sink     func(message string)
	lastMsg  string
	lastTime time.Time
	interval time.Duration
}

// Public types (alphabetical)

// MediaProber is the probing interface consumed by the Splitter. It is
// satisfied by Prober and by test doubles.
type MediaProber interface {
	// Probe returns the MediaInfo for path, or the zero sentinel when the
	// file cannot be read.
	Probe(ctx context.Context, path string) MediaInfo
}

// Splitter partitions a video file into stream-copied segments that each
// stay at or under a size ceiling. It orchestrates one session at a time:
// probe, search for a boundary, extract the accepted segment, repeat until
// the source is covered.
type Splitter struct {
	// Log receives human-readable diagnostic lines. May be nil.
	Log func(message string)

	// StateChange is invoked on every session state transition. May be nil.
	StateChange func(state SessionState)

	prober    MediaProber
	extractor SegmentExtractor
}

// Private methods (alphabetical)

// logf formats a line and hands it to the sink unless the identical line was
// emitted within the throttle interval.
func (t *logThrottle) logf(format string, args ...interface{}) {
	if t.sink == nil {
		return
	}

	message := fmt.Sprintf(format, args...)
	now := time.Now()
	if message == t.lastMsg && now.Sub(t.lastTime) < t.interval {
		return
	}

	t.lastMsg = message
	t.lastTime = now
	t.sink(message)
}

// findSplitPoint computes the largest duration, starting at start, whose
// stream-copied output stays at or under ceiling megabytes.
//
// The search runs in two phases. First a linear estimate assumes the source's
// average byte rate holds locally. Then a bisection bracket, seeded by a trial
// at the estimate, narrows to within DurationTolerance seconds. Bitrate is
// not constant over time, so the estimate is only a starting point and every
// candidate is verified by a real trial extraction.
//
// When the remainder after the candidate segment falls inside the tail-merge
// window, the whole remainder is tried first so the session never ends with
// a tiny final segment that a slightly larger predecessor could absorb.
//
// If not even a MinSegmentDuration cut fits under the ceiling, the minimum
// cut is returned as a best-effort duration. Stream copy cannot subdivide
// below a keyframe boundary, so emitting an oversized segment beats failing
// the whole session. Whether a segment actually exceeds the ceiling is
// decided by the caller from the final extraction's measured size, not from
// trial outcomes: a transient trial failure must never mislabel a segment.
func (s *Splitter) findSplitPoint(ctx context.Context, session *SplitSession, ceiling, total float64, log *logThrottle) (float64, error) {
	start := session.CurrentTime
	remaining := total - start

	trialOut := TrialPath(session.OutputDir, session.Input)
	defer removeIfExists(trialOut)

	// measure runs one trial extraction and always removes the trial file.
	measure := func(duration float64) (ExtractResult, error) {
		if err := ctx.Err(); err != nil {
			return ExtractResult{}, err
		}
		res := s.extractor.Extract(ctx, session.Input, start, duration, trialOut)
		if res.OK {
			removeIfExists(trialOut)
		} else if res.Diagnostic != "" {
			log.logf("trial at %.1fs failed: %s", duration, strings.TrimSpace(res.Diagnostic))
		}
		return res, nil
	}

	// No room to search below the minimum cut: take the remainder whole.
	if remaining <= MinSegmentDuration {
		res, err := measure(remaining)
		if err != nil {
			return 0, err
		}
		if res.OK && res.SizeMB > ceiling {
			log.logf("final %.1fs remainder exceeds %.0fMB ceiling, emitting oversized segment", remaining, ceiling)
		}
		return remaining, nil
	}

	// Remainder already inside the merge window: prefer one final segment
	// when it fits, otherwise search as usual.
	if remaining <= TailMergeWindow {
		res, err := measure(remaining)
		if err != nil {
			return 0, err
		}
		if res.OK && res.SizeMB <= ceiling {
			return remaining, nil
		}
	}

	estimate := session.estimateDuration(ceiling, total)
	if estimate > remaining {
		estimate = remaining
	}
	if estimate < MinSegmentDuration {
		estimate = MinSegmentDuration
	}

	minDur := MinSegmentDuration
	maxDur := remaining
	bestDur := 0.0

	// Seed the bracket with a trial at the linear estimate.
	res, err := measure(estimate)
	if err != nil {
		return 0, err
	}
	if res.OK && res.SizeMB <= ceiling {
		bestDur = estimate
		minDur = estimate
		// The whole remainder fits; nothing larger exists to search for.
		if estimate >= remaining {
			return remaining, nil
		}
	} else {
		maxDur = estimate
	}

	// Bisection: grow toward the ceiling from below, shrink from above.
	// A failed trial is indistinguishable from "too large" and shrinks the
	// bracket the same way.
	for maxDur-minDur > DurationTolerance {
		mid := (minDur + maxDur) / 2
		res, err := measure(mid)
		if err != nil {
			return 0, err
		}
		if res.OK && res.SizeMB <= ceiling {
			bestDur = mid
			minDur = mid
		} else {
			maxDur = mid
		}
	}

	if bestDur == 0 {
		// The bracket collapsed without a recorded success. The minimum cut
		// may still fit: the bisection narrows toward it but never tests it
		// exactly, so verify before claiming nothing does.
		res, err := measure(MinSegmentDuration)
		if err != nil {
			return 0, err
		}
		if res.OK && res.SizeMB > ceiling {
			log.logf("no cut under %.0fMB exists at %.1fs, emitting best-effort %.0fs segment", ceiling, start, MinSegmentDuration)
		}
		return MinSegmentDuration, nil
	}

	// Tail-merge: if accepting bestDur leaves a sliver, try swallowing the
	// whole remainder into this segment instead.
	if leftover := remaining - bestDur; leftover > 0 && leftover < TailMergeWindow {
		res, err := measure(remaining)
		if err != nil {
			return 0, err
		}
		if res.OK && res.SizeMB <= ceiling {
			log.logf("merged %.1fs tail into segment %d", leftover, session.PartIndex)
			return remaining, nil
		}
	}

	return bestDur, nil
}

// transition moves the session to a new state and notifies the observer.
func (s *Splitter) transition(session *SplitSession, state SessionState) {
	session.State = state
	if s.StateChange != nil {
		s.StateChange(state)
	}
}

// estimateDuration computes the linear first guess for the next segment:
// the duration at which a uniform average byte rate would hit the ceiling.
func (session *SplitSession) estimateDuration(ceiling, total float64) float64 {
	if session.avgRateMB <= 0 {
		return total - session.CurrentTime
	}
	return ceiling / session.avgRateMB
}

// Public functions (alphabetical)

// NewSplitter creates a Splitter from a prober and an extractor. Both are
// interfaces so the search can be exercised without a real FFmpeg binary.
func NewSplitter(prober MediaProber, extractor SegmentExtractor) *Splitter {
	return &Splitter{
		prober:    prober,
		extractor: extractor,
	}
}

// Public methods (alphabetical)

// Split partitions the input file into segments written to opts.OutputDir,
// each at or under opts.MaxSizeMB megabytes, named {base}_{index:03d}{ext}
// with 1-based indices. Segments are produced strictly in time order and the
// returned plan covers [0, duration] with no gaps or overlaps.
//
// Cancellation is cooperative through ctx: it is observed before every trial
// and before every final extraction, the in-flight FFmpeg process is killed
// and waited on, and all partial or trial files are removed before the
// session transitions to Cancelled.
func (s *Splitter) Split(ctx context.Context, input string, opts SplitOptions) (*SplitPlan, error) {
	ceiling := opts.MaxSizeMB
	if ceiling <= 0 {
		ceiling = DefaultMaxSegmentSizeMB
	}

	inputDir, err := filepath.Abs(filepath.Dir(input))
	if err != nil {
		return nil, FormatError("error resolving input path: %w", err)
	}
	outputDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, FormatError("error resolving output directory: %w", err)
	}
	if inputDir == outputDir {
		return nil, ErrSameDirectory
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, FormatError("error creating output directory: %w", err)
	}

	ext := filepath.Ext(input)
	session := &SplitSession{
		Input:     input,
		OutputDir: outputDir,
		BaseName:  strings.TrimSuffix(filepath.Base(input), ext),
		PartIndex: 1,
		State:     StateIdle,
	}
	log := &logThrottle{sink: s.Log, interval: time.Second}

	s.transition(session, StateProbing)
	info := s.prober.Probe(ctx, input)
	if info.Duration <= 0 {
		s.transition(session, StateFailed)
		return nil, ErrCannotReadMedia
	}
	session.avgRateMB = info.SizeMB / info.Duration
	log.logf("source: %.1fs, %.2fMB, %.3fMB/s average", info.Duration, info.SizeMB, session.avgRateMB)

	plan := &SplitPlan{
		Input:         input,
		TotalDuration: info.Duration,
	}
	lastProgress := -1
	report := func(percent int) {
		if opts.Progress == nil {
			return
		}
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		if percent > lastProgress {
			lastProgress = percent
			opts.Progress(percent)
		}
	}

	for session.CurrentTime < info.Duration-floatSlack {
		if err := ctx.Err(); err != nil {
			s.transition(session, StateCancelled)
			return nil, err
		}

		s.transition(session, StateSearching)
		duration, err := s.findSplitPoint(ctx, session, ceiling, info.Duration, log)
		if err != nil {
			s.transition(session, StateCancelled)
			return nil, err
		}

		if err := ctx.Err(); err != nil {
			s.transition(session, StateCancelled)
			return nil, err
		}

		s.transition(session, StateExtracting)
		outPath := filepath.Join(outputDir, fmt.Sprintf("%s_%03d%s", session.BaseName, session.PartIndex, ext))
		final := s.extractor.Extract(ctx, input, session.CurrentTime, duration, outPath)
		if !final.OK {
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.transition(session, StateCancelled)
				return nil, ctxErr
			}
			s.transition(session, StateFailed)
			return nil, fmt.Errorf("%w: part %d: %s", ErrExtractionFailed, session.PartIndex, strings.TrimSpace(final.Diagnostic))
		}

		// Oversized is judged on the file actually produced, so transient
		// trial failures during the search can never mislabel a segment.
		segment := Segment{
			Index:     session.PartIndex,
			Start:     session.CurrentTime,
			End:       session.CurrentTime + duration,
			SizeMB:    final.SizeMB,
			Oversized: final.SizeMB > ceiling,
		}
		plan.Segments = append(plan.Segments, segment)
		log.logf("part %03d: %.1fs-%.1fs, %.2fMB", segment.Index, segment.Start, segment.End, segment.SizeMB)

		session.CurrentTime = segment.End
		session.PartIndex++

		// Hold 100 back for completion so it is emitted exactly once.
		percent := int(math.Round(session.CurrentTime / info.Duration * 100))
		if percent > 99 && session.CurrentTime < info.Duration-floatSlack {
			percent = 99
		}
		if session.CurrentTime < info.Duration-floatSlack {
			report(percent)
		}
	}

	// Snap the last boundary onto the probed duration.
	if n := len(plan.Segments); n > 0 {
		plan.Segments[n-1].End = info.Duration
	}

	s.transition(session, StateCompleted)
	report(100)
	return plan, nil
}

// Validate checks the structural invariants of the plan: 1-based sequential
// indices, a first segment starting at zero, contiguous boundaries, and a
// final segment ending at the total duration, all within a one second
// tolerance at the edges.
func (p *SplitPlan) Validate() error {
	if len(p.Segments) == 0 {
		return FormatError("plan has no segments")
	}

	if math.Abs(p.Segments[0].Start) > DurationTolerance {
		return FormatError("first segment starts at %.3f, want 0", p.Segments[0].Start)
	}

	for i, segment := range p.Segments {
		if segment.Index != i+1 {
			return FormatError("segment %d has index %d", i, segment.Index)
		}
		if segment.End <= segment.Start {
			return FormatError("segment %d has non-positive duration", segment.Index)
		}
		if i > 0 && segment.Start != p.Segments[i-1].End {
			return FormatError("segment %d does not start where segment %d ends", segment.Index, i)
		}
	}

	last := p.Segments[len(p.Segments)-1]
	if math.Abs(last.End-p.TotalDuration) > DurationTolerance {
		return FormatError("last segment ends at %.3f, want %.3f", last.End, p.TotalDuration)
	}

	return nil
}

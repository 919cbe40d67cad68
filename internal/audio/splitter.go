package audio

import (
	"errors"
	"fmt"
	"sort"
)

var ErrSplit = errors.New("audio split failed")

// Metadata describes one audio stream, as reported by the probe collaborator.
type Metadata struct {
	DurationSeconds float64
	// BitrateBitsPerSecond is the encoded bitrate, used to convert the byte
	// budget into a duration budget.
	BitrateBitsPerSecond int
}

// Silence is one detected silent interval, in seconds from stream start.
type Silence struct {
	Start float64
	End   float64
}

// Options tunes chunk planning. SafetyFactor shrinks the computed target
// duration to leave margin for encoding variance. 0.8 is the default.
type Options struct {
	MaxChunkBytes int
	SafetyFactor  float64
}

const DefaultSafetyFactor = 0.8

// TimeRange is one planned chunk, [Start, End) in seconds.
type TimeRange struct {
	Start float64
	End   float64
}

func (r TimeRange) Duration() float64 { return r.End - r.Start }

// Plan greedily cuts the stream into contiguous time ranges whose encoded size
// stays under the byte budget, cutting at detected silence boundaries rather
// than mid-speech. The result always covers [0, duration] back to back with no
// gaps or overlaps; with no usable silences the whole stream becomes a single
// range. Greedy: it does not minimize chunk count.
func Plan(meta Metadata, silences []Silence, opts Options) ([]TimeRange, error) {
	if meta.DurationSeconds <= 0 {
		return nil, fmt.Errorf("%w: non-positive duration %f", ErrSplit, meta.DurationSeconds)
	}
	if meta.BitrateBitsPerSecond <= 0 {
		return nil, fmt.Errorf("%w: non-positive bitrate %d", ErrSplit, meta.BitrateBitsPerSecond)
	}
	if opts.MaxChunkBytes <= 0 {
		return nil, fmt.Errorf("%w: non-positive chunk byte budget %d", ErrSplit, opts.MaxChunkBytes)
	}

	factor := opts.SafetyFactor
	if factor <= 0 || factor > 1 {
		factor = DefaultSafetyFactor
	}

	target := float64(opts.MaxChunkBytes) * 8 / float64(meta.BitrateBitsPerSecond) * factor

	boundaries := cutCandidates(meta.DurationSeconds, silences)
	if len(boundaries) == 0 {
		return []TimeRange{{Start: 0, End: meta.DurationSeconds}}, nil
	}

	var ranges []TimeRange
	last := 0.0
	for _, b := range boundaries {
		if b-last >= target {
			ranges = append(ranges, TimeRange{Start: last, End: b})
			last = b
		}
	}

	// Trailing chunk: nothing past the last cut may be dropped.
	if last < meta.DurationSeconds {
		ranges = append(ranges, TimeRange{Start: last, End: meta.DurationSeconds})
	}

	return ranges, nil
}

// cutCandidates collects silence interval edges that fall strictly inside the
// stream, sorted and deduplicated.
func cutCandidates(duration float64, silences []Silence) []float64 {
	var out []float64
	for _, s := range silences {
		for _, edge := range []float64{s.Start, s.End} {
			if edge > 0 && edge < duration {
				out = append(out, edge)
			}
		}
	}
	sort.Float64s(out)

	dedup := out[:0]
	for i, v := range out {
		if i == 0 || v != out[i-1] {
			dedup = append(dedup, v)
		}
	}
	return dedup
}

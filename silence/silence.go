// Package silence finds and removes silent stretches of a recording. The
// silence threshold adapts to each recording: it is the recording's own RMS
// level plus a (negative) offset in dB.
package silence

import (
	"math"

	"github.com/maastricht-university/wavcut/audio"
)

// Params control silence detection. All durations are in milliseconds.
type Params struct {
	OffsetDB      float64
	MinSilenceMs  int
	KeepSilenceMs int
}

var DefaultParams = Params{OffsetDB: -16, MinSilenceMs: 100, KeepSilenceMs: 50}

// Span is a half-open range [StartMs, EndMs).
type Span struct {
	StartMs int
	EndMs   int
}

func (s Span) Len() int { return s.EndMs - s.StartMs }

// ThresholdDB is the absolute silence level used for w.
func ThresholdDB(w *audio.Waveform, offsetDB float64) float64 {
	return w.DBFS() + offsetDB
}

// DetectSilence returns the maximal runs in which every window of
// minSilenceMs, stepped by 1 ms, has an RMS at or below threshDB.
func DetectSilence(w *audio.Waveform, minSilenceMs int, threshDB float64) []Span {
	total := lengthMs(w)
	if minSilenceMs <= 0 || total < minSilenceMs {
		return nil
	}
	thresh := audio.FromDB(threshDB)
	energy := newEnergy(w)

	var out []Span
	open := false
	var cur Span
	prev := 0
	for i := 0; i <= total-minSilenceMs; i++ {
		if energy.rms(w.FrameAt(float64(i)), w.FrameAt(float64(i+minSilenceMs))) > thresh {
			continue
		}
		switch {
		case !open:
			cur, open = Span{StartMs: i}, true
		case i != prev+1 && i > prev+minSilenceMs:
			cur.EndMs = prev + minSilenceMs
			out = append(out, cur)
			cur = Span{StartMs: i}
		}
		prev = i
	}
	if open {
		cur.EndMs = prev + minSilenceMs
		out = append(out, cur)
	}
	return out
}

// DetectNonsilent is the complement of DetectSilence over the recording.
// It returns nil when the whole recording is silence.
func DetectNonsilent(w *audio.Waveform, minSilenceMs int, threshDB float64) []Span {
	total := lengthMs(w)
	silent := DetectSilence(w, minSilenceMs, threshDB)
	if len(silent) == 0 {
		if total == 0 {
			return nil
		}
		return []Span{{0, total}}
	}
	if silent[0].StartMs == 0 && silent[0].EndMs == total {
		return nil
	}

	var out []Span
	prevEnd := 0
	for _, s := range silent {
		if s.StartMs > prevEnd {
			out = append(out, Span{prevEnd, s.StartMs})
		}
		prevEnd = s.EndMs
	}
	if prevEnd < total {
		out = append(out, Span{prevEnd, total})
	}
	return out
}

// KeepSpans widens each voiced span by keepMs on both sides, clamped to
// [0, totalMs]. Where two widened spans would overlap they meet at the
// midpoint of the overlap so no audio is repeated.
func KeepSpans(spans []Span, keepMs, totalMs int) []Span {
	out := make([]Span, len(spans))
	for i, s := range spans {
		out[i] = Span{s.StartMs - keepMs, s.EndMs + keepMs}
	}
	for i := 0; i+1 < len(out); i++ {
		if out[i+1].StartMs < out[i].EndMs {
			mid := (out[i].EndMs + out[i+1].StartMs) / 2
			out[i].EndMs = mid
			out[i+1].StartMs = mid
		}
	}
	for i := range out {
		out[i].StartMs = max(out[i].StartMs, 0)
		out[i].EndMs = min(out[i].EndMs, totalMs)
	}
	return out
}

// Trim removes silence from w and returns the voiced spans, padded with
// KeepSilenceMs of their surroundings, joined in order. It returns nil when
// the recording holds no voiced span.
func Trim(w *audio.Waveform, p Params) *audio.Waveform {
	total := lengthMs(w)
	voiced := DetectNonsilent(w, p.MinSilenceMs, ThresholdDB(w, p.OffsetDB))
	if len(voiced) == 0 {
		return nil
	}
	kept := KeepSpans(voiced, p.KeepSilenceMs, total)
	parts := make([]*audio.Waveform, 0, len(kept))
	for _, s := range kept {
		parts = append(parts, w.SliceFrames(frameAt(w, s.StartMs, total), frameAt(w, s.EndMs, total)))
	}
	return audio.Concat(parts...)
}

// lengthMs is the recording length in whole milliseconds.
func lengthMs(w *audio.Waveform) int {
	return int(math.Floor(w.DurationMs() + 1e-9))
}

// frameAt maps a span boundary to a frame; the end of the recording keeps
// the trailing partial millisecond.
func frameAt(w *audio.Waveform, ms, total int) int {
	if ms >= total {
		return w.Frames()
	}
	return w.FrameAt(float64(ms))
}

// energy answers windowed RMS queries in constant time.
type energy struct {
	prefix   []float64
	channels int
}

func newEnergy(w *audio.Waveform) energy {
	p := make([]float64, len(w.Data)+1)
	for i, s := range w.Data {
		p[i+1] = p[i] + s*s
	}
	return energy{prefix: p, channels: w.Channels}
}

func (e energy) rms(from, to int) float64 {
	a, b := from*e.channels, to*e.channels
	if b <= a {
		return 0
	}
	sum := e.prefix[b] - e.prefix[a]
	if sum < 0 {
		sum = 0
	}
	return math.Sqrt(sum / float64(b-a))
}

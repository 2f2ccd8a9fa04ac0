package audio

import (
	"math"
)

// Waveform is a decoded recording. Data holds interleaved samples normalised
// to [-1, 1]; a frame is one sample per channel.
type Waveform struct {
	Data       []float64
	Channels   int
	SampleRate int
	BitDepth   int
}

func (w *Waveform) Frames() int {
	if w == nil || w.Channels == 0 {
		return 0
	}
	return len(w.Data) / w.Channels
}

// DurationMs is the exact length in milliseconds.
func (w *Waveform) DurationMs() float64 {
	if w == nil || w.SampleRate == 0 {
		return 0
	}
	return float64(w.Frames()) * 1000 / float64(w.SampleRate)
}

// FrameAt converts a millisecond offset to a frame index, truncating and
// clamping to [0, Frames()].
func (w *Waveform) FrameAt(ms float64) int {
	f := int(math.Floor(ms*float64(w.SampleRate)/1000 + 1e-9))
	if f < 0 {
		return 0
	}
	if n := w.Frames(); f > n {
		return n
	}
	return f
}

// SliceFrames returns frames [from, to) as a new waveform sharing no memory
// with w. Out of range bounds are clamped; to < from yields an empty waveform.
func (w *Waveform) SliceFrames(from, to int) *Waveform {
	n := w.Frames()
	from = clampInt(from, 0, n)
	to = clampInt(to, 0, n)
	if to < from {
		to = from
	}
	data := make([]float64, (to-from)*w.Channels)
	copy(data, w.Data[from*w.Channels:to*w.Channels])
	return &Waveform{Data: data, Channels: w.Channels, SampleRate: w.SampleRate, BitDepth: w.BitDepth}
}

func (w *Waveform) SliceMs(startMs, endMs float64) *Waveform {
	return w.SliceFrames(w.FrameAt(startMs), w.FrameAt(endMs))
}

// RMS over every sample of every channel.
func (w *Waveform) RMS() float64 {
	return RMS(w.Data)
}

// DBFS is the RMS level relative to full scale. Digital silence is -Inf.
func (w *Waveform) DBFS() float64 {
	return ToDB(w.RMS())
}

// Mono averages the channels of each frame.
func (w *Waveform) Mono() []float64 {
	if w.Channels == 1 {
		return w.Data
	}
	n := w.Frames()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for c := 0; c < w.Channels; c++ {
			s += w.Data[i*w.Channels+c]
		}
		out[i] = s / float64(w.Channels)
	}
	return out
}

// Concat joins waveforms in order. The result takes the first part's format.
func Concat(parts ...*Waveform) *Waveform {
	if len(parts) == 0 {
		return nil
	}
	first := parts[0]
	size := 0
	for _, p := range parts {
		size += len(p.Data)
	}
	data := make([]float64, 0, size)
	for _, p := range parts {
		data = append(data, p.Data...)
	}
	return &Waveform{Data: data, Channels: first.Channels, SampleRate: first.SampleRate, BitDepth: first.BitDepth}
}

func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func ToDB(ratio float64) float64 {
	if ratio <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(ratio)
}

func FromDB(db float64) float64 {
	return math.Pow(10, db/20)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package pitch tracks fundamental frequency and energy frame by frame.
//
// F0 is the lag of the strongest normalised autocorrelation peak inside
// [FminHz, FmaxHz]; the autocorrelation is computed through a real FFT.
// Frames are centred on multiples of HopLength, zero padded at the edges.
package pitch

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

type Params struct {
	FrameLength int
	HopLength   int
	FminHz      float64
	FmaxHz      float64
	// Clarity is the normalised autocorrelation peak a frame needs to be
	// flagged voiced.
	Clarity float64
}

var DefaultParams = Params{FrameLength: 2048, HopLength: 256, FminHz: 70, FmaxHz: 400, Clarity: 0.45}

// Frame holds one analysis frame. F0 is 0 for unvoiced frames.
type Frame struct {
	Time   float64
	F0     float64
	RMS    float64
	Voiced bool
}

// VoicingMode picks how IsVoiced decides.
type VoicingMode string

const (
	// ByFlag trusts the autocorrelation flag.
	ByFlag VoicingMode = "flag"
	// ByF0 calls a frame voiced when its F0 exceeds a threshold.
	ByF0 VoicingMode = "f0"
)

func (f Frame) IsVoiced(mode VoicingMode, thresholdHz float64) bool {
	if mode == ByF0 {
		return f.F0 > thresholdHz
	}
	return f.Voiced
}

// Track analyses mono samples. It returns 1 + len(samples)/HopLength frames.
func Track(samples []float64, sampleRate int, p Params) []Frame {
	if p.HopLength <= 0 || p.FrameLength <= 0 || sampleRate <= 0 {
		return nil
	}
	t := newTracker(sampleRate, p)
	n := 1 + len(samples)/p.HopLength
	out := make([]Frame, n)
	half := p.FrameLength / 2
	for k := 0; k < n; k++ {
		center := k * p.HopLength
		frame := t.window(samples, center-half)
		f0, voiced := t.estimate(frame)
		out[k] = Frame{
			Time:   float64(center) / float64(sampleRate),
			F0:     f0,
			RMS:    math.Sqrt(floats.Dot(frame, frame) / float64(len(frame))),
			Voiced: voiced,
		}
	}
	return out
}

type tracker struct {
	p      Params
	rate   float64
	fft    *fourier.FFT
	buf    []float64
	padded []float64
	coeffs []complex128
	acf    []float64
	minLag int
	maxLag int
}

func newTracker(sampleRate int, p Params) *tracker {
	size := 1
	for size < 2*p.FrameLength {
		size <<= 1
	}
	minLag := int(math.Floor(float64(sampleRate) / p.FmaxHz))
	maxLag := int(math.Ceil(float64(sampleRate) / p.FminHz))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag > p.FrameLength-2 {
		maxLag = p.FrameLength - 2
	}
	return &tracker{
		p:      p,
		rate:   float64(sampleRate),
		fft:    fourier.NewFFT(size),
		buf:    make([]float64, p.FrameLength),
		padded: make([]float64, size),
		minLag: minLag,
		maxLag: maxLag,
	}
}

// window copies FrameLength samples starting at from, zero filling outside
// the signal.
func (t *tracker) window(samples []float64, from int) []float64 {
	for i := range t.buf {
		j := from + i
		if j < 0 || j >= len(samples) {
			t.buf[i] = 0
			continue
		}
		t.buf[i] = samples[j]
	}
	return t.buf
}

func (t *tracker) estimate(frame []float64) (float64, bool) {
	if t.maxLag <= t.minLag {
		return 0, false
	}
	mean := floats.Sum(frame) / float64(len(frame))
	for i := range t.padded {
		t.padded[i] = 0
		if i < len(frame) {
			t.padded[i] = frame[i] - mean
		}
	}
	t.coeffs = t.fft.Coefficients(t.coeffs, t.padded)
	for i, c := range t.coeffs {
		t.coeffs[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	t.acf = t.fft.Sequence(t.acf, t.coeffs)
	if t.acf[0] <= 1e-12 {
		return 0, false
	}

	L := float64(len(frame))
	norm := func(lag int) float64 {
		return t.acf[lag] / t.acf[0] * L / (L - float64(lag))
	}

	best, bestLag := math.Inf(-1), -1
	for lag := t.minLag; lag <= t.maxLag; lag++ {
		if v := norm(lag); v > best {
			best, bestLag = v, lag
		}
	}
	// Prefer the shortest lag that is a local peak close to the best one;
	// multiples of the true period score almost as high.
	for lag := t.minLag + 1; lag < bestLag; lag++ {
		v := norm(lag)
		if v >= 0.9*best && v >= norm(lag-1) && v >= norm(lag+1) {
			bestLag = lag
			best = v
			break
		}
	}
	if best < t.p.Clarity {
		return 0, false
	}

	lag := float64(bestLag)
	if bestLag > t.minLag && bestLag < t.maxLag {
		a, b, c := norm(bestLag-1), best, norm(bestLag+1)
		if d := a - 2*b + c; d < 0 {
			lag += 0.5 * (a - c) / d
		}
	}
	return t.rate / lag, true
}

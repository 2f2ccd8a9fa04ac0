package silence

import (
	"math"
	"testing"

	"github.com/maastricht-university/wavcut/audio"
)

const rate = 16000

// build concatenates tone (true) and digital silence (false) sections.
func build(sections ...struct {
	ms   int
	tone bool
}) *audio.Waveform {
	var data []float64
	for _, s := range sections {
		n := s.ms * rate / 1000
		for i := 0; i < n; i++ {
			v := 0.0
			if s.tone {
				v = 0.5 * math.Sin(2*math.Pi*220*float64(len(data))/rate)
			}
			data = append(data, v)
		}
	}
	return &audio.Waveform{Data: data, Channels: 1, SampleRate: rate, BitDepth: 16}
}

type sec = struct {
	ms   int
	tone bool
}

func near(got, want, tol int) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestTrimAllSilence(t *testing.T) {
	w := build(sec{2000, false})
	if got := Trim(w, DefaultParams); got != nil {
		t.Fatalf("Trim(all silence) = %v ms, want nil", got.DurationMs())
	}
	if spans := DetectNonsilent(w, DefaultParams.MinSilenceMs, ThresholdDB(w, DefaultParams.OffsetDB)); spans != nil {
		t.Fatalf("DetectNonsilent = %v, want nil", spans)
	}
}

func TestTrimContinuousToneUnchanged(t *testing.T) {
	w := build(sec{1000, true})
	got := Trim(w, DefaultParams)
	if got == nil {
		t.Fatal("Trim returned nil for a tone")
	}
	if got.Frames() != w.Frames() {
		t.Fatalf("frames = %d, want %d", got.Frames(), w.Frames())
	}
}

func TestTrimInteriorSilence(t *testing.T) {
	w := build(sec{300, true}, sec{1000, false}, sec{300, true})
	thresh := ThresholdDB(w, DefaultParams.OffsetDB)

	silent := DetectSilence(w, DefaultParams.MinSilenceMs, thresh)
	if len(silent) != 1 {
		t.Fatalf("silent spans = %v, want one", silent)
	}
	if !near(silent[0].StartMs, 300, 2) || !near(silent[0].EndMs, 1300, 2) {
		t.Fatalf("silent span = %+v, want about [300,1300)", silent[0])
	}

	voiced := DetectNonsilent(w, DefaultParams.MinSilenceMs, thresh)
	if len(voiced) != 2 || voiced[0].StartMs != 0 || voiced[1].EndMs != 1600 {
		t.Fatalf("voiced spans = %v", voiced)
	}

	got := Trim(w, DefaultParams)
	if got == nil {
		t.Fatal("Trim returned nil")
	}
	ms := got.DurationMs()
	if ms > w.DurationMs() {
		t.Fatalf("trimmed %v ms longer than original %v ms", ms, w.DurationMs())
	}
	// 300 + 50 kept on the inner side of each tone.
	if math.Abs(ms-700) > 6 {
		t.Fatalf("trimmed duration = %v ms, want about 700", ms)
	}
}

func TestTrimLeadingAndTrailingSilence(t *testing.T) {
	w := build(sec{500, false}, sec{400, true}, sec{500, false})
	got := Trim(w, Params{OffsetDB: -16, MinSilenceMs: 100, KeepSilenceMs: 20})
	if got == nil {
		t.Fatal("Trim returned nil")
	}
	if ms := got.DurationMs(); math.Abs(ms-440) > 6 {
		t.Fatalf("trimmed duration = %v ms, want about 440", ms)
	}
}

func TestShortGapIsNotSilence(t *testing.T) {
	w := build(sec{300, true}, sec{50, false}, sec{300, true})
	voiced := DetectNonsilent(w, 100, ThresholdDB(w, -16))
	if len(voiced) != 1 || voiced[0] != (Span{0, 650}) {
		t.Fatalf("voiced = %v, want one span covering the recording", voiced)
	}
}

func TestShorterThanMinSilence(t *testing.T) {
	w := build(sec{60, false})
	if s := DetectSilence(w, 100, -40); s != nil {
		t.Fatalf("DetectSilence = %v, want nil", s)
	}
	if s := DetectNonsilent(w, 100, -40); len(s) != 1 || s[0] != (Span{0, 60}) {
		t.Fatalf("DetectNonsilent = %v", s)
	}
}

func TestKeepSpans(t *testing.T) {
	tests := []struct {
		name  string
		spans []Span
		keep  int
		total int
		want  []Span
	}{
		{"clamped", []Span{{10, 100}}, 50, 120, []Span{{0, 120}}},
		{"disjoint", []Span{{100, 200}, {400, 500}}, 50, 600, []Span{{50, 250}, {350, 550}}},
		{"overlap split at midpoint", []Span{{100, 200}, {260, 300}}, 50, 400, []Span{{50, 230}, {230, 350}}},
		{"no padding", []Span{{0, 10}, {20, 30}}, 0, 30, []Span{{0, 10}, {20, 30}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeepSpans(tt.spans, tt.keep, tt.total)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTrimNeverLonger(t *testing.T) {
	layouts := [][]sec{
		{{200, true}, {150, false}, {200, true}, {150, false}, {200, true}},
		{{120, false}, {80, true}, {120, false}},
		{{1000, true}},
	}
	for i, l := range layouts {
		w := build(l...)
		got := Trim(w, Params{OffsetDB: -16, MinSilenceMs: 100, KeepSilenceMs: 80})
		if got == nil {
			t.Fatalf("layout %d: nil", i)
		}
		if got.Frames() > w.Frames() {
			t.Fatalf("layout %d: trimmed %d frames > original %d", i, got.Frames(), w.Frames())
		}
	}
}

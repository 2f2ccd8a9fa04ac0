package audio

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func sine(freq float64, ms, rate int) *Waveform {
	n := ms * rate / 1000
	data := make([]float64, n)
	for i := range data {
		data[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return &Waveform{Data: data, Channels: 1, SampleRate: rate, BitDepth: 16}
}

func TestWAVRoundTrip(t *testing.T) {
	codec, err := CodecFor("wav")
	if err != nil {
		t.Fatal(err)
	}
	in := sine(220, 250, 16000)
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := codec.Encode(path, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := codec.Decode(path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SampleRate != 16000 || out.Channels != 1 || out.BitDepth != 16 {
		t.Fatalf("format = %d Hz %d ch %d bit", out.SampleRate, out.Channels, out.BitDepth)
	}
	if out.Frames() != in.Frames() {
		t.Fatalf("frames = %d, want %d", out.Frames(), in.Frames())
	}
	for i := range in.Data {
		if d := math.Abs(in.Data[i] - out.Data[i]); d > 1e-4 {
			t.Fatalf("sample %d differs by %g", i, d)
		}
	}
}

func TestWAVEncodeEmpty(t *testing.T) {
	codec := WAV{DefaultBitDepth: 16}
	path := filepath.Join(t.TempDir(), "empty.wav")
	if err := codec.Encode(path, &Waveform{Channels: 1, SampleRate: 8000}); err != nil {
		t.Fatalf("encode empty: %v", err)
	}
}

func TestCodecForUnknown(t *testing.T) {
	_, err := CodecFor("mp3")
	if !errors.Is(err, ErrCodecUnavailable) {
		t.Fatalf("err = %v, want ErrCodecUnavailable", err)
	}
	if _, err := CodecFor(".WAV"); err != nil {
		t.Fatalf("CodecFor(.WAV): %v", err)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := WAV{}.Decode(filepath.Join(t.TempDir(), "nope.wav"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSliceMs(t *testing.T) {
	w := &Waveform{Data: make([]float64, 2000), Channels: 2, SampleRate: 1000}
	if got := w.DurationMs(); got != 1000 {
		t.Fatalf("duration = %v", got)
	}
	tests := []struct {
		start, end float64
		want       int
	}{
		{0, 500, 500},
		{250.9, 500, 250},
		{900, 2000, 100},
		{-10, 10, 10},
		{600, 600, 0},
		{700, 600, 0},
		{0, 1000, 1000},
	}
	for _, tt := range tests {
		if got := w.SliceMs(tt.start, tt.end).Frames(); got != tt.want {
			t.Errorf("SliceMs(%v, %v) frames = %d, want %d", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestFrameAtExactEnd(t *testing.T) {
	w := &Waveform{Data: make([]float64, 44100), Channels: 1, SampleRate: 44100}
	if got := w.FrameAt(w.DurationMs()); got != 44100 {
		t.Fatalf("FrameAt(duration) = %d", got)
	}
	w = &Waveform{Data: make([]float64, 12345), Channels: 1, SampleRate: 22050}
	if got := w.FrameAt(w.DurationMs()); got != 12345 {
		t.Fatalf("FrameAt(duration) = %d", got)
	}
}

func TestLevels(t *testing.T) {
	square := &Waveform{Data: []float64{1, -1, 1, -1}, Channels: 1, SampleRate: 4}
	if db := square.DBFS(); math.Abs(db) > 1e-9 {
		t.Errorf("full scale square dBFS = %v", db)
	}
	quiet := &Waveform{Data: make([]float64, 10), Channels: 1, SampleRate: 10}
	if db := quiet.DBFS(); !math.IsInf(db, -1) {
		t.Errorf("silence dBFS = %v, want -Inf", db)
	}
	if r := FromDB(ToDB(0.25)); math.Abs(r-0.25) > 1e-12 {
		t.Errorf("FromDB(ToDB(0.25)) = %v", r)
	}
}

func TestMonoAndConcat(t *testing.T) {
	st := &Waveform{Data: []float64{1, 0, 0.5, 0.5}, Channels: 2, SampleRate: 2}
	m := st.Mono()
	if len(m) != 2 || m[0] != 0.5 || m[1] != 0.5 {
		t.Fatalf("mono = %v", m)
	}
	c := Concat(st.SliceFrames(0, 1), st.SliceFrames(1, 2))
	if c.Frames() != 2 || c.Channels != 2 || c.Data[2] != 0.5 {
		t.Fatalf("concat = %+v", c)
	}
}

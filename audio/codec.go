package audio

import (
	"errors"
	"fmt"
	"os"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	ErrCodecUnavailable = errors.New("audio codec unavailable")
	ErrInvalidFile      = errors.New("not a valid audio file")
)

// Codec loads and stores waveforms in one container format.
type Codec interface {
	Decode(path string) (*Waveform, error)
	Encode(path string, w *Waveform) error
}

var codecs = map[string]Codec{
	"wav": WAV{DefaultBitDepth: 16},
}

// CodecFor returns the codec registered for format ("wav", ".wav", "WAV").
func CodecFor(format string) (Codec, error) {
	key := strings.ToLower(strings.TrimPrefix(format, "."))
	c, ok := codecs[key]
	if !ok {
		return nil, fmt.Errorf("%w: no encoder/decoder for %q (supported: wav)", ErrCodecUnavailable, format)
	}
	return c, nil
}

// WAV is a PCM RIFF/WAVE codec. DefaultBitDepth is used when encoding a
// waveform that carries no bit depth of its own.
type WAV struct {
	DefaultBitDepth int
}

func (c WAV) Decode(path string) (*Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidFile)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm %s: %w", path, err)
	}

	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(dec.BitDepth)
	}
	scale := fullScale(depth - 1)
	data := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		if depth == 8 {
			v -= 128
		}
		data[i] = float64(v) / scale
	}
	return &Waveform{
		Data:       data,
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
		BitDepth:   depth,
	}, nil
}

func (c WAV) Encode(path string, w *Waveform) error {
	depth := w.BitDepth
	if depth == 0 {
		depth = c.DefaultBitDepth
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, w.SampleRate, depth, w.Channels, 1)
	scale := fullScale(depth-1) - 1
	ints := make([]int, len(w.Data))
	for i, s := range w.Data {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		v := int(s * scale)
		if depth == 8 {
			v += 128
		}
		ints[i] = v
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: w.Channels, SampleRate: w.SampleRate},
		Data:           ints,
		SourceBitDepth: depth,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("write pcm %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return f.Close()
}

func fullScale(bits int) float64 {
	return float64(int64(1) << uint(bits))
}

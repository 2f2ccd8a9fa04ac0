// Package analysis turns recordings and clips into F0/RMS tables and
// compares voicing between speaker groups.
package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/wavcut/audio"
	"github.com/maastricht-university/wavcut/orchestrator"
	"github.com/maastricht-university/wavcut/pitch"
)

// Options configure frame analysis and the voicing decision.
type Options struct {
	Pitch       pitch.Params
	Mode        pitch.VoicingMode
	F0Threshold float64
	// VoicedRatio is the share of sounding frames that must be voiced for a
	// clip to count as Voiced.
	VoicedRatio float64
}

var DefaultOptions = Options{
	Pitch:       pitch.DefaultParams,
	Mode:        pitch.ByFlag,
	F0Threshold: 80,
	VoicedRatio: 0.5,
}

// Contour tracks F0 and RMS over the mono mix of w.
func Contour(w *audio.Waveform, o Options) []pitch.Frame {
	return pitch.Track(w.Mono(), w.SampleRate, o.Pitch)
}

// WriteContourCSV writes time,f0,rms,is_voiced rows.
func WriteContourCSV(path string, frames []pitch.Frame, o Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Write([]string{"time", "f0", "rms", "is_voiced"})
	for _, fr := range frames {
		voiced := "0"
		if fr.IsVoiced(o.Mode, o.F0Threshold) {
			voiced = "1"
		}
		cw.Write([]string{
			strconv.FormatFloat(fr.Time, 'f', 4, 64),
			strconv.FormatFloat(fr.F0, 'f', 3, 64),
			strconv.FormatFloat(fr.RMS, 'f', 6, 64),
			voiced,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}

// FileError records a file that could not be processed.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e FileError) Unwrap() error { return e.Err }

// ContourReport lists what ContourDir wrote and what it skipped.
type ContourReport struct {
	Written []string
	Failed  []FileError
}

// ContourDir writes <outDir>/csv/<name>.csv for every recording in inDir
// named like S01_001.wav. A bad file is reported and skipped.
func ContourDir(codec audio.Codec, inDir, outDir string, o Options, log logrus.FieldLogger) (*ContourReport, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	csvDir := filepath.Join(outDir, "csv")
	if err := os.MkdirAll(csvDir, 0o755); err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && orchestrator.InputPattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	rep := &ContourReport{}
	for _, name := range names {
		in := filepath.Join(inDir, name)
		out := filepath.Join(csvDir, name[:len(name)-len(filepath.Ext(name))]+".csv")
		l := log.WithField("file", name)

		w, err := codec.Decode(in)
		if err != nil {
			rep.Failed = append(rep.Failed, FileError{in, err})
			l.WithError(err).Error("decode failed")
			continue
		}
		frames := Contour(w, o)
		if err := WriteContourCSV(out, frames, o); err != nil {
			rep.Failed = append(rep.Failed, FileError{in, err})
			l.WithError(err).Error("write csv failed")
			continue
		}
		rep.Written = append(rep.Written, out)
		l.WithFields(logrus.Fields{"frames": len(frames), "csv": out}).Info("contour written")
	}
	return rep, nil
}

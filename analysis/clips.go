package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/wavcut/audio"
	"github.com/maastricht-university/wavcut/orchestrator"
	"github.com/maastricht-university/wavcut/phonetic"
)

const (
	Voiced   = "Voiced"
	Unvoiced = "Unvoiced"
	Silent   = "Silent"
)

// ClipRow is one line of the clip results table.
type ClipRow struct {
	SubjectID        string
	SentenceID       string
	Position         int
	Phoneme          string
	FullFilename     string
	TotalSoundFrames int
	VoicedFrames     int
	Decision         string
}

var resultsHeader = []string{
	"subject_id", "sentence_id", "position", "phoneme", "full_filename",
	"total_sound_frames", "voiced_frames", "voicing_decision",
}

// Decide classifies a clip from its frames: Silent when no frame has
// energy, otherwise Voiced when the voiced share of sounding frames reaches
// o.VoicedRatio.
func Decide(w *audio.Waveform, o Options) (total, voiced int, decision string) {
	for _, f := range Contour(w, o) {
		if f.RMS <= 0 {
			continue
		}
		total++
		if f.IsVoiced(o.Mode, o.F0Threshold) {
			voiced++
		}
	}
	switch {
	case total == 0:
		return 0, 0, Silent
	case float64(voiced)/float64(total) >= o.VoicedRatio:
		return total, voiced, Voiced
	default:
		return total, voiced, Unvoiced
	}
}

// skipDirs are output subdirectories that never hold clips.
var skipDirs = map[string]bool{"runs": true, "csv": true}

// AnalyzeClips decides every clip under root/<category>/. Clips in the
// default category are skipped unless includeOther is set. Unreadable
// clips are returned as errors and do not stop the walk.
func AnalyzeClips(codec audio.Codec, root string, includeOther bool, o Options, log logrus.FieldLogger) ([]ClipRow, []FileError, error) {
	var rows []ClipRow
	var failed []FileError
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		depth := len(strings.Split(rel, string(filepath.Separator)))
		if d.IsDir() {
			if path == root {
				return nil
			}
			if depth > 1 || skipDirs[d.Name()] || (!includeOther && d.Name() == phonetic.Other) {
				return filepath.SkipDir
			}
			return nil
		}
		if depth != 2 || !strings.EqualFold(filepath.Ext(path), ".wav") {
			return nil
		}

		clip, err := orchestrator.ParseClipPath(path)
		if err != nil {
			log.WithField("file", path).Debug("not a clip, ignored")
			return nil
		}
		w, err := codec.Decode(path)
		if err != nil {
			failed = append(failed, FileError{path, err})
			log.WithError(err).WithField("file", path).Error("decode failed")
			return nil
		}
		total, voiced, decision := Decide(w, o)
		rows = append(rows, ClipRow{
			SubjectID:        clip.Speaker,
			SentenceID:       clip.SentenceID,
			Position:         clip.Position,
			Phoneme:          clip.Category,
			FullFilename:     filepath.Base(path),
			TotalSoundFrames: total,
			VoicedFrames:     voiced,
			Decision:         decision,
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return rows, failed, nil
}

func WriteResultsCSV(path string, rows []ClipRow) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Write(resultsHeader)
	for _, r := range rows {
		cw.Write([]string{
			r.SubjectID, r.SentenceID, strconv.Itoa(r.Position), r.Phoneme, r.FullFilename,
			strconv.Itoa(r.TotalSoundFrames), strconv.Itoa(r.VoicedFrames), r.Decision,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}

var ErrResultsFormat = errors.New("unexpected results table")

// ReadResultsCSV reads a table written by WriteResultsCSV. Columns are
// matched by header name, so extra columns and other orders are accepted.
func ReadResultsCSV(path string) ([]ClipRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResultsFormat, path, err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, h := range []string{"subject_id", "phoneme", "total_sound_frames", "voicing_decision"} {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("%w: %s: missing column %q", ErrResultsFormat, path, h)
		}
	}
	get := func(rec []string, name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var rows []ClipRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrResultsFormat, path, err)
		}
		total, err := strconv.Atoi(get(rec, "total_sound_frames"))
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: total_sound_frames: %v", ErrResultsFormat, path, line, err)
		}
		pos, _ := strconv.Atoi(get(rec, "position"))
		voiced, _ := strconv.Atoi(get(rec, "voiced_frames"))
		rows = append(rows, ClipRow{
			SubjectID:        get(rec, "subject_id"),
			SentenceID:       get(rec, "sentence_id"),
			Position:         pos,
			Phoneme:          get(rec, "phoneme"),
			FullFilename:     get(rec, "full_filename"),
			TotalSoundFrames: total,
			VoicedFrames:     voiced,
			Decision:         get(rec, "voicing_decision"),
		})
	}
	return rows, nil
}

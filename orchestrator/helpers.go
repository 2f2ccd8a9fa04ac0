package orchestrator

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var ErrClipName = errors.New("not a clip file name")

// InputName is the recording file for a pair, e.g. S01_001.wav.
func InputName(speaker, sentenceID, ext string) string {
	return fmt.Sprintf("S%s_%s.%s", speaker, sentenceID, strings.TrimPrefix(ext, "."))
}

// ClipName is the file for one slot, e.g. S01_001_03_ざ.wav. Position is
// 1-based.
func ClipName(speaker, sentenceID string, position int, char rune, ext string) string {
	return fmt.Sprintf("S%s_%s_%02d_%s.%s", speaker, sentenceID, position, sanitizeChar(char), strings.TrimPrefix(ext, "."))
}

// sanitizeChar keeps the literal character unless it cannot appear in a
// file name.
func sanitizeChar(r rune) string {
	switch {
	case strings.ContainsRune(`/\:*?"<>|`, r), r == 0, unicode.IsControl(r):
		return fmt.Sprintf("U+%04X", r)
	case unicode.IsSpace(r):
		return "_"
	}
	return string(r)
}

// Clip identifies a clip parsed back from its file name.
type Clip struct {
	Speaker    string
	SentenceID string
	Position   int
	Char       string
	Category   string
	Path       string
}

var clipPattern = regexp.MustCompile(`^S([^_]+)_([^_]+)_(\d+)_(.+)\.[A-Za-z0-9]+$`)

// ParseClipPath reads speaker, sentence, position and character from a
// clip path; the category is the clip's directory name.
func ParseClipPath(path string) (Clip, error) {
	m := clipPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return Clip{}, fmt.Errorf("%w: %s", ErrClipName, filepath.Base(path))
	}
	pos, err := strconv.Atoi(m[3])
	if err != nil {
		return Clip{}, fmt.Errorf("%w: %s", ErrClipName, filepath.Base(path))
	}
	return Clip{
		Speaker:    m[1],
		SentenceID: m[2],
		Position:   pos,
		Char:       m[4],
		Category:   filepath.Base(filepath.Dir(path)),
		Path:       path,
	}, nil
}

// InputPattern matches recording names such as S01_001.wav.
var InputPattern = regexp.MustCompile(`^S(\d{2})_(\d{3})\.wav$`)

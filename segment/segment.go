// Package segment divides a recording's duration evenly among the characters
// of its reading and widens the window of characters in a target class.
package segment

import (
	"errors"
	"math"

	"github.com/maastricht-university/wavcut/phonetic"
)

var (
	ErrEmptyText           = errors.New("segment: empty text")
	ErrNonPositiveDuration = errors.New("segment: duration must be positive")
)

type Classifier interface {
	Classify(r rune) string
}

type Options struct {
	// MarginMs is added on both sides of a non-default character's window.
	MarginMs float64
	// Expand enables margin expansion. With Expand false every final window
	// equals its base window.
	Expand bool
	// Classifier defaults to phonetic.ZLine.
	Classifier Classifier
}

// Slot is one character's share of the recording. Times are milliseconds.
type Slot struct {
	Index      int
	Char       rune
	Category   string
	BaseStart  float64
	BaseEnd    float64
	FinalStart float64
	FinalEnd   float64
}

// Position is the 1-based index used in file names.
func (s Slot) Position() int { return s.Index + 1 }

func (s Slot) Expanded() bool {
	return s.FinalStart != s.BaseStart || s.FinalEnd != s.BaseEnd
}

// Segment returns one slot per rune of text. Base windows tile
// [0, durationMs) exactly; each slot starts at the previous slot's base end,
// never at its expanded end.
func Segment(durationMs float64, text string, opt Options) ([]Slot, error) {
	if !(durationMs > 0) || math.IsInf(durationMs, 1) {
		return nil, ErrNonPositiveDuration
	}
	chars := []rune(text)
	if len(chars) == 0 {
		return nil, ErrEmptyText
	}
	cls := opt.Classifier
	if cls == nil {
		cls = phonetic.ZLine
	}

	n := len(chars)
	slots := make([]Slot, n)
	cursor := 0.0
	for i, c := range chars {
		end := durationMs
		if i+1 < n {
			end = durationMs * float64(i+1) / float64(n)
		}
		s := Slot{
			Index:      i,
			Char:       c,
			Category:   cls.Classify(c),
			BaseStart:  cursor,
			BaseEnd:    end,
			FinalStart: cursor,
			FinalEnd:   end,
		}
		if opt.Expand && s.Category != phonetic.Other {
			s.FinalStart = clamp(s.BaseStart-opt.MarginMs, 0, durationMs)
			s.FinalEnd = clamp(s.BaseEnd+opt.MarginMs, 0, durationMs)
		}
		slots[i] = s
		cursor = end
	}
	return slots, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

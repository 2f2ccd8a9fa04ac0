// Package phonetic routes kana to the phonetic class under study.
//
// A Table is a fixed rune to label mapping with a default label, Other, for
// every rune it does not list. Classify is total: punctuation, the long
// vowel mark and the small tsu all fall into Other.
package phonetic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Other is the label of every character outside a table.
const Other = "other"

var ErrUnknownTable = errors.New("unknown classifier table")

type Table struct {
	Name   string
	labels map[rune]string
	// foldKana classifies katakana (full or half width) as its hiragana.
	foldKana bool
}

func (t *Table) Classify(r rune) string {
	if l, ok := t.labels[r]; ok {
		return l
	}
	if !t.foldKana {
		return Other
	}
	if l, ok := t.labels[ToHiragana(r)]; ok {
		return l
	}
	return Other
}

// Labels lists every label the table can produce, Other last.
func (t *Table) Labels() []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range t.labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return append(out, Other)
}

// ToHiragana maps a full or half width katakana rune to its hiragana.
// Runes without a hiragana counterpart are returned unchanged.
func ToHiragana(r rune) rune {
	if p := width.LookupRune(r); p.Kind() == width.EastAsianHalfwidth {
		if w := p.Wide(); w != 0 {
			r = w
		}
	}
	if r >= 'ァ' && r <= 'ヶ' {
		return r - 0x60
	}
	return r
}

// Normalize prepares reading text for per-rune segmentation: half width
// kana are widened, full width ASCII is narrowed, spacing voicing marks
// become combining ones, and the result is NFC composed so that "ｻﾞ" and
// "ザ" both become "ザ".
func Normalize(text string) string {
	s := width.Fold.String(text)
	s = strings.NewReplacer("\u309b", "\u3099", "\u309c", "\u309a").Replace(s)
	return norm.NFC.String(s)
}

var tables = map[string]*Table{}

func register(t *Table) *Table {
	tables[t.Name] = t
	return t
}

// Lookup returns the table registered under name.
func Lookup(name string) (*Table, error) {
	t, ok := tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownTable, name, strings.Join(Names(), ", "))
	}
	return t, nil
}

func Names() []string {
	out := make([]string, 0, len(tables))
	for n := range tables {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

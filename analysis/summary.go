package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

var ErrNoValidRows = errors.New("no clips with sound")

// Counts are one group's decisions for one phoneme.
type Counts struct {
	Total    int
	Voiced   int
	Unvoiced int
}

// UnvoicedRate is the unvoiced share in percent, rounded to 2 decimals.
func (c Counts) UnvoicedRate() float64 {
	if c.Total == 0 {
		return math.NaN()
	}
	return math.Round(float64(c.Unvoiced)/float64(c.Total)*10000) / 100
}

// Grouping splits subjects by numeric id: ids below Threshold belong to
// Below, the rest to AtOrAbove.
type Grouping struct {
	Threshold int
	Below     string
	AtOrAbove string
}

func (g Grouping) Of(subjectID string) (string, error) {
	id, err := strconv.Atoi(subjectID)
	if err != nil {
		return "", fmt.Errorf("subject id %q: %w", subjectID, err)
	}
	if id >= g.Threshold {
		return g.AtOrAbove, nil
	}
	return g.Below, nil
}

// Comparison holds per-phoneme counts for both groups.
type Comparison struct {
	Grouping Grouping
	Phonemes []string
	// ByGroup maps group label to phoneme to counts. A phoneme missing for
	// a group has no entry.
	ByGroup map[string]map[string]Counts
	// Valid is the number of rows with sound that were counted.
	Valid int
}

// Compare drops rows without sound and counts voiced and unvoiced
// decisions per phoneme and group.
func Compare(rows []ClipRow, g Grouping) (*Comparison, error) {
	c := &Comparison{
		Grouping: g,
		ByGroup:  map[string]map[string]Counts{g.Below: {}, g.AtOrAbove: {}},
	}
	seen := map[string]bool{}
	for _, r := range rows {
		if r.TotalSoundFrames <= 0 {
			continue
		}
		group, err := g.Of(r.SubjectID)
		if err != nil {
			return nil, err
		}
		cnt := c.ByGroup[group][r.Phoneme]
		cnt.Total++
		switch r.Decision {
		case Voiced:
			cnt.Voiced++
		case Unvoiced:
			cnt.Unvoiced++
		}
		c.ByGroup[group][r.Phoneme] = cnt
		c.Valid++
		if !seen[r.Phoneme] {
			seen[r.Phoneme] = true
			c.Phonemes = append(c.Phonemes, r.Phoneme)
		}
	}
	if c.Valid == 0 {
		return nil, ErrNoValidRows
	}
	sort.Strings(c.Phonemes)
	return c, nil
}

// WriteCSV writes one row per phoneme with voiced count, unvoiced count and
// unvoiced rate for each group. Cells of a group without that phoneme are
// left empty.
func (c *Comparison) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	groups := []string{c.Grouping.Below, c.Grouping.AtOrAbove}
	header := []string{"phoneme"}
	for _, g := range groups {
		header = append(header, g+"_voiced", g+"_unvoiced", g+"_unvoiced_rate")
	}

	cw := csv.NewWriter(f)
	cw.Write(header)
	for _, ph := range c.Phonemes {
		rec := []string{ph}
		for _, g := range groups {
			cnt, ok := c.ByGroup[g][ph]
			if !ok {
				rec = append(rec, "", "", "")
				continue
			}
			rec = append(rec,
				strconv.Itoa(cnt.Voiced),
				strconv.Itoa(cnt.Unvoiced),
				strconv.FormatFloat(cnt.UnvoicedRate(), 'f', 2, 64),
			)
		}
		cw.Write(rec)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}

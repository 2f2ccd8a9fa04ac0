package segment

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/maastricht-university/wavcut/phonetic"
)

var opts = Options{MarginMs: 50, Expand: true, Classifier: phonetic.ZLine}

func TestSegmentZaru(t *testing.T) {
	slots, err := Segment(1000, "ざる", opts)
	if err != nil {
		t.Fatal(err)
	}
	want := []Slot{
		{Index: 0, Char: 'ざ', Category: "za", BaseStart: 0, BaseEnd: 500, FinalStart: 0, FinalEnd: 550},
		{Index: 1, Char: 'る', Category: phonetic.Other, BaseStart: 500, BaseEnd: 1000, FinalStart: 500, FinalEnd: 1000},
	}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("got %+v\nwant %+v", slots, want)
	}
	if slots[1].Position() != 2 {
		t.Errorf("position = %d", slots[1].Position())
	}
	if !slots[0].Expanded() || slots[1].Expanded() {
		t.Errorf("expanded flags wrong: %+v", slots)
	}
}

func TestSegmentInvalidInput(t *testing.T) {
	if _, err := Segment(1000, "", opts); !errors.Is(err, ErrEmptyText) {
		t.Errorf("empty text err = %v", err)
	}
	for _, d := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if _, err := Segment(d, "ざ", opts); !errors.Is(err, ErrNonPositiveDuration) {
			t.Errorf("duration %v err = %v", d, err)
		}
	}
}

func TestSegmentExpandDisabled(t *testing.T) {
	slots, err := Segment(900, "ざじず", Options{MarginMs: 50})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range slots {
		if s.Expanded() {
			t.Errorf("slot %d expanded with Expand=false: %+v", s.Index, s)
		}
		if s.Category == phonetic.Other {
			t.Errorf("slot %d not classified", s.Index)
		}
	}
}

func TestSegmentCountsRunes(t *testing.T) {
	slots, err := Segment(1200, "ざーっ。", opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 4 {
		t.Fatalf("len = %d, want 4", len(slots))
	}
	if slots[3].Char != '。' || slots[3].Category != phonetic.Other {
		t.Errorf("last slot = %+v", slots[3])
	}
}

var corpus = []string{
	"ざるそばやのまちじかんにじっくりざっしをよんでいた。",
	"いちにちじゅうずっとざーざーふりでざんねんだった。",
	"ぞ",
	"る",
	"ぱぴぷぺぽ",
	"ガギグゲゴ、ダヂヅデド",
}

func TestSegmentProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, text := range corpus {
		for k := 0; k < 50; k++ {
			d := 1 + rng.Float64()*5000
			margin := rng.Float64() * 200
			o := Options{MarginMs: margin, Expand: true, Classifier: phonetic.ZLine}
			slots, err := Segment(d, text, o)
			if err != nil {
				t.Fatal(err)
			}
			checkTiling(t, slots, d)
			checkFinal(t, slots, d, margin)

			again, _ := Segment(d, text, o)
			if !reflect.DeepEqual(slots, again) {
				t.Fatalf("Segment not deterministic for %q / %v", text, d)
			}
		}
	}
}

func checkTiling(t *testing.T, slots []Slot, d float64) {
	t.Helper()
	if slots[0].BaseStart != 0 {
		t.Fatalf("first base start = %v", slots[0].BaseStart)
	}
	if last := slots[len(slots)-1].BaseEnd; last != d {
		t.Fatalf("last base end = %v, want %v", last, d)
	}
	for i := 0; i+1 < len(slots); i++ {
		if slots[i].BaseEnd != slots[i+1].BaseStart {
			t.Fatalf("gap between slot %d and %d: %v != %v", i, i+1, slots[i].BaseEnd, slots[i+1].BaseStart)
		}
	}
}

func checkFinal(t *testing.T, slots []Slot, d, margin float64) {
	t.Helper()
	const eps = 1e-9
	for _, s := range slots {
		if s.FinalStart < 0 || s.FinalEnd > d || s.FinalStart > s.FinalEnd {
			t.Fatalf("slot %d final window out of bounds: %+v (d=%v)", s.Index, s, d)
		}
		if s.Category == phonetic.Other {
			if s.FinalStart != s.BaseStart || s.FinalEnd != s.BaseEnd {
				t.Fatalf("default slot %d changed: %+v", s.Index, s)
			}
			continue
		}
		deficit := math.Max(0, margin-s.BaseStart) + math.Max(0, s.BaseEnd+margin-d)
		want := s.BaseEnd - s.BaseStart + 2*margin - deficit
		if got := s.FinalEnd - s.FinalStart; math.Abs(got-want) > eps*math.Max(1, d) {
			t.Fatalf("slot %d final length = %v, want %v", s.Index, got, want)
		}
	}
}

package orchestrator

import (
	"time"

	cfg "github.com/maastricht-university/wavcut/config"
)

// Pair is one speaker reading one sentence: one input file.
type Pair struct {
	Speaker  string
	Sentence cfg.Sentence
}

type PairStatus string

const (
	StatusDone     PairStatus = "done"
	StatusMissing  PairStatus = "missing"
	StatusSilent   PairStatus = "silent"
	StatusFailed   PairStatus = "failed"
	StatusCanceled PairStatus = "canceled"
)

type SlotResult struct {
	Position   int     `json:"position"`
	Char       string  `json:"char"`
	Category   string  `json:"category"`
	StartMs    float64 `json:"start_ms"`
	EndMs      float64 `json:"end_ms"`
	Path       string  `json:"path,omitempty"`
	Err        error   `json:"-"`
	ErrMessage string  `json:"error,omitempty"`
}

type PairResult struct {
	Speaker    string       `json:"speaker"`
	SentenceID string       `json:"sentence_id"`
	Input      string       `json:"input"`
	Status     PairStatus   `json:"status"`
	DurationMs float64      `json:"duration_ms"`
	TrimmedMs  float64      `json:"trimmed_ms,omitempty"`
	Slots      []SlotResult `json:"slots,omitempty"`
	Err        error        `json:"-"`
	ErrMessage string       `json:"error,omitempty"`
}

// SlotsFailed counts slots whose export failed.
func (r PairResult) SlotsFailed() int {
	n := 0
	for _, s := range r.Slots {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Summary aggregates one segmentation run.
type Summary struct {
	Tool       string       `json:"tool"`
	Version    string       `json:"version"`
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	InputRoot  string       `json:"input_root"`
	OutputRoot string       `json:"output_root"`
	Pairs      []PairResult `json:"pairs"`

	Done         int `json:"done"`
	Missing      int `json:"missing"`
	Silent       int `json:"silent"`
	Failed       int `json:"failed"`
	Canceled     int `json:"canceled"`
	SlotsWritten int `json:"slots_written"`
	SlotsFailed  int `json:"slots_failed"`
}

func (s *Summary) add(r PairResult) {
	if r.Err != nil {
		r.ErrMessage = r.Err.Error()
	}
	for i := range r.Slots {
		if r.Slots[i].Err != nil {
			r.Slots[i].ErrMessage = r.Slots[i].Err.Error()
			s.SlotsFailed++
		} else {
			s.SlotsWritten++
		}
	}
	switch r.Status {
	case StatusDone:
		s.Done++
	case StatusMissing:
		s.Missing++
	case StatusSilent:
		s.Silent++
	case StatusFailed:
		s.Failed++
	case StatusCanceled:
		s.Canceled++
	}
	s.Pairs = append(s.Pairs, r)
}

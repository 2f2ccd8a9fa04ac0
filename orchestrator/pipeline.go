package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/wavcut/audio"
	cfg "github.com/maastricht-university/wavcut/config"
	"github.com/maastricht-university/wavcut/phonetic"
	"github.com/maastricht-university/wavcut/segment"
	"github.com/maastricht-university/wavcut/silence"
)

var (
	ErrMissingInput = errors.New("input file not found")
	ErrAllSilence   = errors.New("recording is silence")
)

// Pipeline cuts every (speaker, sentence) recording into per-character
// clips. Pairs are independent; failures are reported per pair and per
// slot and never stop the run.
type Pipeline struct {
	cfg   *cfg.Root
	codec audio.Codec
	table *phonetic.Table
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewPipeline(c *cfg.Root, codec audio.Codec, log logrus.FieldLogger) (*Pipeline, error) {
	table, err := phonetic.Lookup(c.Segment.Classifier)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{cfg: c, codec: codec, table: table, log: log, now: time.Now}, nil
}

// Pairs lists the work of a run, speaker by speaker.
func (p *Pipeline) Pairs() []Pair {
	out := make([]Pair, 0, len(p.cfg.Speakers)*len(p.cfg.Sentences))
	for _, spk := range p.cfg.Speakers {
		for _, s := range p.cfg.Sentences {
			out = append(out, Pair{Speaker: spk, Sentence: s})
		}
	}
	return out
}

// Run processes every pair and returns the run summary. The error is
// non-nil only when ctx ended the run early.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	pairs := p.Pairs()
	sum := &Summary{
		Tool:       p.cfg.Pipeline.Name,
		Version:    p.cfg.Pipeline.Version,
		RunID:      uuid.NewString(),
		StartedAt:  p.now(),
		InputRoot:  p.cfg.Paths.Input,
		OutputRoot: p.cfg.Paths.Output,
	}
	p.log.WithFields(logrus.Fields{
		"run":       sum.RunID,
		"tool":      sum.Tool,
		"version":   sum.Version,
		"speakers":  len(p.cfg.Speakers),
		"sentences": len(p.cfg.Sentences),
		"workers":   p.cfg.Pipeline.Workers,
	}).Info("segmentation started")

	results := forEach(ctx, p.cfg.Pipeline.Workers, pairs, p.processPair, func(pr Pair) PairResult {
		return PairResult{
			Speaker:    pr.Speaker,
			SentenceID: pr.Sentence.ID,
			Input:      p.inputPath(pr),
			Status:     StatusCanceled,
			Err:        context.Cause(ctx),
		}
	})
	for _, r := range results {
		sum.add(r)
	}
	sum.FinishedAt = p.now()

	p.log.WithFields(logrus.Fields{
		"run":           sum.RunID,
		"done":          sum.Done,
		"missing":       sum.Missing,
		"silent":        sum.Silent,
		"failed":        sum.Failed,
		"slots_written": sum.SlotsWritten,
		"slots_failed":  sum.SlotsFailed,
	}).Info("segmentation finished")

	return sum, ctx.Err()
}

func (p *Pipeline) inputPath(pr Pair) string {
	return filepath.Join(p.cfg.Paths.Input, InputName(pr.Speaker, pr.Sentence.ID, p.cfg.Audio.Format))
}

func (p *Pipeline) processPair(ctx context.Context, pr Pair) PairResult {
	res := PairResult{Speaker: pr.Speaker, SentenceID: pr.Sentence.ID, Input: p.inputPath(pr)}
	log := p.log.WithFields(logrus.Fields{"speaker": pr.Speaker, "sentence": pr.Sentence.ID})

	if err := ctx.Err(); err != nil {
		res.Status, res.Err = StatusCanceled, err
		return res
	}
	if _, err := os.Stat(res.Input); errors.Is(err, fs.ErrNotExist) {
		res.Status, res.Err = StatusMissing, fmt.Errorf("%w: %s", ErrMissingInput, res.Input)
		log.WithField("input", res.Input).Warn("input not found, skipping")
		return res
	}

	w, err := p.codec.Decode(res.Input)
	if err != nil {
		res.Status, res.Err = StatusFailed, fmt.Errorf("decode %s: %w", res.Input, err)
		log.WithError(err).Error("decode failed, skipping")
		return res
	}
	res.DurationMs = w.DurationMs()

	if p.cfg.Segment.TrimSilence {
		w = silence.Trim(w, p.cfg.Segment.SilenceParams())
		if w == nil {
			res.Status, res.Err = StatusSilent, ErrAllSilence
			log.Warn("whole recording is silence, skipping")
			return res
		}
		res.TrimmedMs = w.DurationMs()
	}
	if w.Frames() == 0 {
		res.Status, res.Err = StatusSilent, ErrAllSilence
		log.Warn("empty recording, skipping")
		return res
	}

	slots, err := segment.Segment(w.DurationMs(), pr.Sentence.Text, segment.Options{
		MarginMs:   p.cfg.Segment.MarginMs,
		Expand:     p.cfg.Segment.ExpandMargin,
		Classifier: p.table,
	})
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		log.WithError(err).Error("segmentation failed")
		return res
	}
	log.WithFields(logrus.Fields{
		"duration_ms": w.DurationMs(),
		"per_char_ms": w.DurationMs() / float64(len(slots)),
	}).Debug("segmenting")

	res.Slots = make([]SlotResult, 0, len(slots))
	for _, s := range slots {
		res.Slots = append(res.Slots, p.export(w, pr, s, log))
	}
	res.Status = StatusDone
	log.WithField("failed_slots", res.SlotsFailed()).Info("pair done")
	return res
}

// export writes one slot. The clip is written beside its destination and
// renamed into place, so a failed slot leaves no partial file.
func (p *Pipeline) export(w *audio.Waveform, pr Pair, s segment.Slot, log logrus.FieldLogger) SlotResult {
	r := SlotResult{
		Position: s.Position(),
		Char:     string(s.Char),
		Category: s.Category,
		StartMs:  s.FinalStart,
		EndMs:    s.FinalEnd,
	}
	log = log.WithFields(logrus.Fields{"slot": r.Position, "char": r.Char, "category": r.Category})

	dir := filepath.Join(p.cfg.Paths.Output, s.Category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.Err = fmt.Errorf("slot %d (%s): %w", r.Position, r.Char, err)
		log.WithError(err).Error("export failed")
		return r
	}
	path := filepath.Join(dir, ClipName(pr.Speaker, pr.Sentence.ID, r.Position, s.Char, p.cfg.Audio.Format))
	tmp := path + ".part"

	if err := p.codec.Encode(tmp, w.SliceMs(s.FinalStart, s.FinalEnd)); err != nil {
		os.Remove(tmp)
		r.Err = fmt.Errorf("slot %d (%s): %w", r.Position, r.Char, err)
		log.WithError(err).Error("export failed")
		return r
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		r.Err = fmt.Errorf("slot %d (%s): %w", r.Position, r.Char, err)
		log.WithError(err).Error("export failed")
		return r
	}
	r.Path = path

	if s.Expanded() {
		log.WithField("margin_ms", p.cfg.Segment.MarginMs).Info("saved expanded clip")
	} else {
		log.Debug("saved clip")
	}
	return r
}

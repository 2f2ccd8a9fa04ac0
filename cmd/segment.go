package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/wavcut/orchestrator"
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Cut every speaker/sentence recording into per-character clips",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := orchestrator.NewPipeline(conf, codec, log)
		if err != nil {
			return err
		}
		sum, runErr := p.Run(ctx)
		path, err := orchestrator.Persist(conf.Paths.Output, sum)
		if err != nil {
			log.WithError(err).Error("could not write run summary")
		} else {
			log.WithField("summary", path).Info("run summary written")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "pairs: %d done, %d missing, %d silent, %d failed, %d canceled; clips: %d written, %d failed\n",
			sum.Done, sum.Missing, sum.Silent, sum.Failed, sum.Canceled, sum.SlotsWritten, sum.SlotsFailed)
		if errors.Is(runErr, context.Canceled) {
			log.Warn("interrupted, remaining recordings were not processed")
			return nil
		}
		return runErr
	},
}

func init() {
	f := segmentCmd.Flags()
	f.StringSlice("speakers", []string{"01", "02", "03"}, "speaker ids")
	f.Float64("margin", 50, "margin in ms added around characters of the target class")
	f.Bool("expand", true, "widen target-class windows by the margin")
	f.Bool("trim", false, "remove silence before dividing")
	f.Float64("silence-offset", -16, "silence threshold relative to the recording level, dB")
	f.Int("min-silence", 100, "shortest silence removed, ms")
	f.Int("keep-silence", 50, "silence kept around each voiced span, ms")
	f.String("classifier", "zline", "phonetic class table (zline, zrow, voiced)")
	f.String("sentences", "", "YAML sentence table, replaces any list in the config (default: built-in list)")
	f.IntP("workers", "w", 1, "recordings processed in parallel")

	bindFlags(segmentCmd, map[string]string{
		"speakers":       "speakers",
		"margin":         "segment.margin_ms",
		"expand":         "segment.expand_margin",
		"trim":           "segment.trim_silence",
		"silence-offset": "segment.silence_offset_db",
		"min-silence":    "segment.min_silence_ms",
		"keep-silence":   "segment.keep_silence_ms",
		"classifier":     "segment.classifier",
		"sentences":      "paths.sentences",
		"workers":        "pipeline.workers",
	})
}

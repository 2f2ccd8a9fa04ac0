package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/wavcut/analysis"
	cfg "github.com/maastricht-university/wavcut/config"
	"github.com/maastricht-university/wavcut/pitch"
)

var contourCmd = &cobra.Command{
	Use:   "contour",
	Short: "Write F0/RMS/voicing contours of every input recording as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := analysis.ContourDir(codec, conf.Paths.Input, conf.Paths.Output, analysisOptions(conf.Analysis), log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "contours: %d written, %d failed\n", len(rep.Written), len(rep.Failed))
		return nil
	},
}

var clipsCmd = &cobra.Command{
	Use:   "clips",
	Short: "Decide voicing of every clip under the output root",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := conf.Analysis
		results := pathFlag(cmd, "results", conf.Paths.Results)
		rows, failed, err := analysis.AnalyzeClips(codec, conf.Paths.Output, a.IncludeOther, analysisOptions(a), log)
		if err != nil {
			return err
		}
		if err := analysis.WriteResultsCSV(results, rows); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		log.WithField("results", results).Info("clip results written")
		fmt.Fprintf(cmd.OutOrStdout(), "clips: %d analysed, %d failed\n", len(rows), len(failed))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Compare per-phoneme voicing between the two speaker groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := analysis.ReadResultsCSV(pathFlag(cmd, "results", conf.Paths.Results))
		if err != nil {
			return err
		}
		g := conf.Analysis.Groups
		c, err := analysis.Compare(rows, analysis.Grouping{Threshold: g.Threshold, Below: g.Below, AtOrAbove: g.AtOrAbove})
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"rows": len(rows), "valid": c.Valid}).Info("rows without sound dropped")
		out := pathFlag(cmd, "summary", conf.Paths.Summary)
		if err := c.WriteCSV(out); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "summary: %d phonemes written to %s\n", len(c.Phonemes), out)
		return nil
	},
}

func analysisOptions(a cfg.Analysis) analysis.Options {
	return analysis.Options{
		Pitch:       a.PitchParams(),
		Mode:        pitch.VoicingMode(a.Voicing),
		F0Threshold: a.F0Threshold,
		VoicedRatio: a.VoicedRatio,
	}
}

// pathFlag returns the flag's value when it was given, else def. The
// results path is shared by two commands, so it is not bound to the config.
func pathFlag(cmd *cobra.Command, name, def string) string {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return f.Value.String()
	}
	return def
}

func init() {
	clipsCmd.Flags().String("results", "", "results CSV path")
	clipsCmd.Flags().Bool("include-other", false, "also analyse clips of the default class")
	summaryCmd.Flags().String("results", "", "results CSV path")
	summaryCmd.Flags().String("summary", "", "comparison CSV path")
	summaryCmd.Flags().Int("group-threshold", 3, "subject ids at or above this belong to the second group")

	bindFlags(clipsCmd, map[string]string{
		"include-other": "analysis.include_other",
	})
	bindFlags(summaryCmd, map[string]string{
		"group-threshold": "analysis.groups.threshold",
	})
}

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/wavcut/audio"
	cfg "github.com/maastricht-university/wavcut/config"
)

var (
	v       = cfg.NewViper()
	cfgFile string

	conf  *cfg.Root
	log   *logrus.Logger
	codec audio.Codec
)

var rootCmd = &cobra.Command{
	Use:   "wavcut",
	Short: "Cut sentence recordings into per-character clips and analyse their voicing",
	Long: `wavcut divides each S{speaker}_{sentence}.wav recording evenly among the
characters of the sentence's reading, widens the window of characters in the
phonetic class under study and writes one clip per character into a
directory named after its class.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfg.Load(v, cfgFile)
		if err != nil {
			return err
		}
		l, err := newLogger(c.Pipeline)
		if err != nil {
			return err
		}
		cd, err := newCodec(c.Audio)
		if err != nil {
			return err
		}
		conf, log, codec = c, l, cd
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default config/$CONFIG_ENV/config.yaml)")
	pf.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text or json)")
	pf.StringP("input", "i", ".", "directory holding S{speaker}_{sentence}.wav recordings")
	pf.StringP("output", "o", "output", "output root")

	bindFlags(rootCmd, map[string]string{
		"log-level":  "pipeline.log_level",
		"log-format": "pipeline.log_format",
		"input":      "paths.input",
		"output":     "paths.output",
	})

	rootCmd.AddCommand(segmentCmd, contourCmd, clipsCmd, summaryCmd)
}

// bindFlags ties flags to config keys; a flag set on the command line wins
// over file and environment.
func bindFlags(c *cobra.Command, keys map[string]string) {
	for name, key := range keys {
		f := c.PersistentFlags().Lookup(name)
		if f == nil {
			f = c.Flags().Lookup(name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}
}

func newLogger(p cfg.Pipeline) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(p.LogLvl)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(lvl)
	if p.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

// newCodec resolves the audio codec once, before any file is touched; a
// missing codec stops the whole run.
func newCodec(a cfg.Audio) (audio.Codec, error) {
	c, err := audio.CodecFor(a.Format)
	if err != nil {
		return nil, fmt.Errorf("%w; set audio.format to a supported format or convert the recordings to WAV", err)
	}
	if w, ok := c.(audio.WAV); ok {
		w.DefaultBitDepth = a.BitDepth
		c = w
	}
	return c, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/maastricht-university/wavcut/pitch"
	"github.com/maastricht-university/wavcut/silence"
)

var ErrInvalid = errors.New("invalid configuration")

type Pipeline struct {
	Name      string `mapstructure:"name"`
	Version   string `mapstructure:"version"`
	LogLvl    string `mapstructure:"log_level" validate:"oneof=trace debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`
	Workers   int    `mapstructure:"workers" validate:"gte=1"`
}

type Audio struct {
	Format   string `mapstructure:"format" validate:"required"`
	BitDepth int    `mapstructure:"bit_depth" validate:"oneof=8 16 24 32"`
}

type Paths struct {
	Input     string `mapstructure:"input" validate:"required"`
	Output    string `mapstructure:"output" validate:"required"`
	Sentences string `mapstructure:"sentences"`
	Results   string `mapstructure:"results"`
	Summary   string `mapstructure:"summary"`
}

type Segment struct {
	MarginMs        float64 `mapstructure:"margin_ms" validate:"gte=0"`
	ExpandMargin    bool    `mapstructure:"expand_margin"`
	TrimSilence     bool    `mapstructure:"trim_silence"`
	SilenceOffsetDB float64 `mapstructure:"silence_offset_db" validate:"lte=0"`
	MinSilenceMs    int     `mapstructure:"min_silence_ms" validate:"gte=1"`
	KeepSilenceMs   int     `mapstructure:"keep_silence_ms" validate:"gte=0"`
	Classifier      string  `mapstructure:"classifier" validate:"required"`
}

type Analysis struct {
	FrameLength int     `mapstructure:"frame_length" validate:"gte=64"`
	HopLength   int     `mapstructure:"hop_length" validate:"gte=1"`
	FminHz      float64 `mapstructure:"fmin_hz" validate:"gt=0"`
	FmaxHz      float64 `mapstructure:"fmax_hz" validate:"gtfield=FminHz"`
	Clarity     float64 `mapstructure:"clarity" validate:"gt=0,lte=1"`
	Voicing     string  `mapstructure:"voicing" validate:"oneof=flag f0"`
	F0Threshold float64 `mapstructure:"f0_threshold" validate:"gte=0"`
	VoicedRatio float64 `mapstructure:"voiced_ratio" validate:"gt=0,lte=1"`
	// IncludeOther also analyses clips routed to the default class.
	IncludeOther bool `mapstructure:"include_other"`
	Groups       struct {
		Threshold int    `mapstructure:"threshold"`
		Below     string `mapstructure:"below" validate:"required"`
		AtOrAbove string `mapstructure:"at_or_above" validate:"required,nefield=Below"`
	} `mapstructure:"groups"`
}

type Root struct {
	Pipeline  Pipeline   `mapstructure:"pipeline"`
	Audio     Audio      `mapstructure:"audio"`
	Paths     Paths      `mapstructure:"paths"`
	Speakers  []string   `mapstructure:"speakers" validate:"min=1,dive,required"`
	Sentences []Sentence `mapstructure:"sentences" validate:"dive"`
	Segment   Segment    `mapstructure:"segment"`
	Analysis  Analysis   `mapstructure:"analysis"`
}

// NewViper returns a viper instance carrying every default, reading
// WAVCUT_* environment overrides (WAVCUT_SEGMENT_MARGIN_MS, ...).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("pipeline.name", "wavcut")
	v.SetDefault("pipeline.version", "dev")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")
	v.SetDefault("pipeline.workers", 1)

	v.SetDefault("audio.format", "wav")
	v.SetDefault("audio.bit_depth", 16)

	v.SetDefault("paths.input", ".")
	v.SetDefault("paths.output", "output")
	v.SetDefault("paths.sentences", "")
	v.SetDefault("paths.results", "")
	v.SetDefault("paths.summary", "")

	v.SetDefault("speakers", []string{"01", "02", "03"})

	v.SetDefault("segment.margin_ms", 50.0)
	v.SetDefault("segment.expand_margin", true)
	v.SetDefault("segment.trim_silence", false)
	v.SetDefault("segment.silence_offset_db", silence.DefaultParams.OffsetDB)
	v.SetDefault("segment.min_silence_ms", silence.DefaultParams.MinSilenceMs)
	v.SetDefault("segment.keep_silence_ms", silence.DefaultParams.KeepSilenceMs)
	v.SetDefault("segment.classifier", "zline")

	v.SetDefault("analysis.frame_length", pitch.DefaultParams.FrameLength)
	v.SetDefault("analysis.hop_length", pitch.DefaultParams.HopLength)
	v.SetDefault("analysis.fmin_hz", pitch.DefaultParams.FminHz)
	v.SetDefault("analysis.fmax_hz", pitch.DefaultParams.FmaxHz)
	v.SetDefault("analysis.clarity", pitch.DefaultParams.Clarity)
	v.SetDefault("analysis.voicing", string(pitch.ByFlag))
	v.SetDefault("analysis.f0_threshold", 80.0)
	v.SetDefault("analysis.voiced_ratio", 0.5)
	v.SetDefault("analysis.include_other", false)
	v.SetDefault("analysis.groups.threshold", 3)
	v.SetDefault("analysis.groups.below", "Korean")
	v.SetDefault("analysis.groups.at_or_above", "Japanese")

	v.SetEnvPrefix("WAVCUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file, or when file is empty the first config.yaml found in
// config/$CONFIG_ENV (default dev) or the working directory. A missing
// implicit config file is not an error: defaults apply.
func Load(v *viper.Viper, file string) (*Root, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join("config", env))
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// A sentence file replaces any inline list.
	if cfg.Paths.Sentences != "" {
		s, err := LoadSentences(cfg.Paths.Sentences)
		if err != nil {
			return nil, err
		}
		cfg.Sentences = s
	}
	if len(cfg.Sentences) == 0 {
		cfg.Sentences = DefaultSentences()
	}
	cfg.Sentences = normalizeSentences(cfg.Sentences)
	if cfg.Paths.Results == "" {
		cfg.Paths.Results = filepath.Join(cfg.Paths.Output, "za_line_analysis_results.csv")
	}
	if cfg.Paths.Summary == "" {
		cfg.Paths.Summary = filepath.Join(cfg.Paths.Output, "nationality_summary_comparison.csv")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

func (c *Root) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	seen := make(map[string]bool, len(c.Sentences))
	for _, s := range c.Sentences {
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate sentence id %q", ErrInvalid, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

func (s Segment) SilenceParams() silence.Params {
	return silence.Params{
		OffsetDB:      s.SilenceOffsetDB,
		MinSilenceMs:  s.MinSilenceMs,
		KeepSilenceMs: s.KeepSilenceMs,
	}
}

func (a Analysis) PitchParams() pitch.Params {
	return pitch.Params{
		FrameLength: a.FrameLength,
		HopLength:   a.HopLength,
		FminHz:      a.FminHz,
		FmaxHz:      a.FmaxHz,
		Clarity:     a.Clarity,
	}
}

// Package config provides the YAML configuration schema, loader, and
// validation for the cadence CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phonetica/cadence/pkg/segment"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Format selects the sentence list output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// IsValid reports whether f is a recognised output format.
func (f Format) IsValid() bool {
	return f == FormatJSON || f == FormatCSV
}

// Config is the root configuration for cadence, typically loaded from a YAML
// file via [Load] or [LoadFromReader].
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Output   OutputConfig   `yaml:"output"`
	Detector DetectorConfig `yaml:"detector"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level controls verbosity: debug, info, warn, error.
	Level LogLevel `yaml:"level"`
}

// OutputConfig holds sentence list output settings.
type OutputConfig struct {
	// Format is the output encoding: json (one object per line) or csv.
	Format Format `yaml:"format"`

	// Path is the output file. Empty means stdout.
	Path string `yaml:"path"`
}

// DetectorConfig mirrors every segment.Options field in YAML form.
type DetectorConfig struct {
	MinSilenceDuration        float64      `yaml:"min_silence_duration"`
	SilenceThreshold          float64      `yaml:"silence_threshold"`
	MinSentenceLength         float64      `yaml:"min_sentence_length"`
	MaxSentenceLength         float64      `yaml:"max_sentence_length"`
	WindowSize                int          `yaml:"window_size"`
	IdealSentenceLength       float64      `yaml:"ideal_sentence_length"`
	IdealSilenceDuration      float64      `yaml:"ideal_silence_duration"`
	AllowGaps                 bool         `yaml:"allow_gaps"`
	MinSegmentLength          float64      `yaml:"min_segment_length"`
	AlignToAudioBoundaries    bool         `yaml:"align_to_audio_boundaries"`
	FundamentalFreqMin        float64      `yaml:"fundamental_freq_min"`
	FundamentalFreqMax        float64      `yaml:"fundamental_freq_max"`
	FormantFreqRanges         [][2]float64 `yaml:"formant_freq_ranges"`
	VoiceActivityThreshold    float64      `yaml:"voice_activity_threshold"`
	ZeroCrossingRateThreshold float64      `yaml:"zero_crossing_rate_threshold"`
	Debug                     bool         `yaml:"debug"`
}

// Default returns the configuration used when no file is supplied: the
// detector defaults, JSON output on stdout, info-level logging.
func Default() Config {
	return Config{
		Log:      LogConfig{Level: LogInfo},
		Output:   OutputConfig{Format: FormatJSON},
		Detector: fromOptions(segment.DefaultOptions()),
	}
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. Fields absent from the file keep their defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of the defaults and
// validates the result. Unknown fields are rejected. Useful in tests where
// configs are constructed from string literals.
func LoadFromReader(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file: defaults apply.
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Log.Level != "" && !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}
	if cfg.Output.Format != "" && !cfg.Output.Format.IsValid() {
		errs = append(errs, fmt.Errorf("output.format %q is invalid; valid values: json, csv", cfg.Output.Format))
	}
	if err := cfg.Options().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detector: %w", err))
	}

	return errors.Join(errs...)
}

// Options converts the detector block into the core's option type.
func (c *Config) Options() segment.Options {
	d := c.Detector
	return segment.Options{
		MinSilenceDuration:        d.MinSilenceDuration,
		SilenceThreshold:          d.SilenceThreshold,
		MinSentenceLength:         d.MinSentenceLength,
		MaxSentenceLength:         d.MaxSentenceLength,
		WindowSize:                d.WindowSize,
		IdealSentenceLength:       d.IdealSentenceLength,
		IdealSilenceDuration:      d.IdealSilenceDuration,
		AllowGaps:                 d.AllowGaps,
		MinSegmentLength:          d.MinSegmentLength,
		AlignToAudioBoundaries:    d.AlignToAudioBoundaries,
		FundamentalFreqMin:        d.FundamentalFreqMin,
		FundamentalFreqMax:        d.FundamentalFreqMax,
		FormantFreqRanges:         d.FormantFreqRanges,
		VoiceActivityThreshold:    d.VoiceActivityThreshold,
		ZeroCrossingRateThreshold: d.ZeroCrossingRateThreshold,
		Debug:                     d.Debug,
	}
}

// SlogLevel maps the configured level to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func fromOptions(o segment.Options) DetectorConfig {
	return DetectorConfig{
		MinSilenceDuration:        o.MinSilenceDuration,
		SilenceThreshold:          o.SilenceThreshold,
		MinSentenceLength:         o.MinSentenceLength,
		MaxSentenceLength:         o.MaxSentenceLength,
		WindowSize:                o.WindowSize,
		IdealSentenceLength:       o.IdealSentenceLength,
		IdealSilenceDuration:      o.IdealSilenceDuration,
		AllowGaps:                 o.AllowGaps,
		MinSegmentLength:          o.MinSegmentLength,
		AlignToAudioBoundaries:    o.AlignToAudioBoundaries,
		FundamentalFreqMin:        o.FundamentalFreqMin,
		FundamentalFreqMax:        o.FundamentalFreqMax,
		FormantFreqRanges:         o.FormantFreqRanges,
		VoiceActivityThreshold:    o.VoiceActivityThreshold,
		ZeroCrossingRateThreshold: o.ZeroCrossingRateThreshold,
		Debug:                     o.Debug,
	}
}

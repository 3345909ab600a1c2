package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/phonetica/cadence/internal/config"
	"github.com/phonetica/cadence/internal/observe"
	"github.com/phonetica/cadence/pkg/audio"
	"github.com/phonetica/cadence/pkg/decode"
	"github.com/phonetica/cadence/pkg/segment"
)

// detectCmd creates the detect command.
func detectCmd() *cobra.Command {
	var (
		configPath  string
		input       string
		format      string
		output      string
		logLevel    string
		debug       bool
		metricsAddr string

		minSilence  float64
		silenceThr  float64
		minSentence float64
		maxSentence float64
		minSegment  float64
		noGaps      bool
		align       bool
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect sentence boundaries in a WAV file",
		Long: `Detect reads a WAV file, downmixes it to mono, and segments it into
probable spoken sentences using silence detection and spectral voice
activity analysis. The sentence list is written as JSON lines or CSV.`,
		Example: `  cadence detect -i interview.wav                      # JSON lines on stdout
  cadence detect -i talk.wav -f csv -o sentences.csv   # CSV to a file
  cadence detect -i talk.wav --min-segment-length 6    # merge short sentences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				cfg, err = config.Load(configPath)
				if err != nil {
					if errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("config file %q not found", configPath)
					}
					return err
				}
			}

			// Flags override file values.
			flags := cmd.Flags()
			if flags.Changed("format") {
				cfg.Output.Format = config.Format(format)
			}
			if flags.Changed("output") {
				cfg.Output.Path = output
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = config.LogLevel(logLevel)
			}
			if flags.Changed("min-silence-duration") {
				cfg.Detector.MinSilenceDuration = minSilence
			}
			if flags.Changed("silence-threshold") {
				cfg.Detector.SilenceThreshold = silenceThr
			}
			if flags.Changed("min-sentence-length") {
				cfg.Detector.MinSentenceLength = minSentence
			}
			if flags.Changed("max-sentence-length") {
				cfg.Detector.MaxSentenceLength = maxSentence
			}
			if flags.Changed("min-segment-length") {
				cfg.Detector.MinSegmentLength = minSegment
			}
			if flags.Changed("no-gaps") {
				cfg.Detector.AllowGaps = !noGaps
			}
			if flags.Changed("align") {
				cfg.Detector.AlignToAudioBoundaries = align
			}
			if debug {
				cfg.Detector.Debug = true
				cfg.Log.Level = config.LogDebug
			}
			if err := config.Validate(&cfg); err != nil {
				return err
			}

			slog.SetDefault(newLogger(cfg.SlogLevel()))

			return runDetect(cmd, cfg, input, metricsAddr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input WAV file (required)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&debug, "debug", false, "Emit per-window and per-sentence trace values")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().Float64Var(&minSilence, "min-silence-duration", 0.5, "Minimum silence duration in seconds")
	cmd.Flags().Float64Var(&silenceThr, "silence-threshold", 0.01, "RMS amplitude below which a window is silent")
	cmd.Flags().Float64Var(&minSentence, "min-sentence-length", 1, "Minimum sentence length in seconds")
	cmd.Flags().Float64Var(&maxSentence, "max-sentence-length", 15, "Maximum sentence length in seconds")
	cmd.Flags().Float64Var(&minSegment, "min-segment-length", 0, "Merge sentences until each group spans this many seconds (0 disables)")
	cmd.Flags().BoolVar(&noGaps, "no-gaps", false, "Push boundaries into the silence so sentences tile the audio")
	cmd.Flags().BoolVar(&align, "align", false, "Force the first sentence to start at 0 and the last to end at the audio's end")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// runDetect executes one detection pass: decode, downmix, detect, output.
func runDetect(cmd *cobra.Command, cfg config.Config, input, metricsAddr string) error {
	ctx := cmd.Context()
	metrics := observe.DefaultMetrics()

	if metricsAddr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			return fmt.Errorf("init metrics provider: %w", err)
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				slog.Warn("metrics provider shutdown failed", "err", err)
			}
		}()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics endpoint failed", "err", err)
			}
		}()
		defer srv.Close()
		slog.Info("serving metrics", "addr", metricsAddr)
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	decoded, err := decode.WAV(f)
	if err != nil {
		if metrics.DecodeErrors != nil {
			metrics.DecodeErrors.Add(ctx, 1)
		}
		return err
	}
	mono := audio.Downmix(decoded.ChannelData)

	slog.Info("audio decoded",
		"input", input,
		"sample_rate", decoded.SampleRate,
		"channels", len(decoded.ChannelData),
		"duration_s", decoded.Duration(),
	)

	detector, err := segment.New(cfg.Options())
	if err != nil {
		return err
	}

	start := time.Now()
	sentences, err := detector.Detect(mono, decoded.SampleRate)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	metrics.RecordDetection(ctx, input, elapsed.Seconds(), decoded.Duration(), len(sentences))
	slog.Info("detection complete", "sentences", len(sentences), "elapsed", elapsed)

	out := cmd.OutOrStdout()
	if cfg.Output.Path != "" {
		of, err := os.Create(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer of.Close()
		out = of
	}

	switch cfg.Output.Format {
	case config.FormatCSV:
		return writeCSV(out, sentences)
	default:
		return writeJSON(out, sentences)
	}
}

// writeJSON emits one JSON object per line.
func writeJSON(w io.Writer, sentences []segment.Sentence) error {
	enc := json.NewEncoder(w)
	for _, s := range sentences {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	return nil
}

// writeCSV emits a header row plus one row per sentence.
func writeCSV(w io.Writer, sentences []segment.Sentence) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "start", "end", "duration", "probability"}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, s := range sentences {
		rec := []string{
			strconv.Itoa(s.Index),
			strconv.FormatFloat(s.Start, 'f', 3, 64),
			strconv.FormatFloat(s.End, 'f', 3, 64),
			strconv.FormatFloat(s.Duration, 'f', 3, 64),
			strconv.FormatFloat(s.Probability, 'f', 4, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

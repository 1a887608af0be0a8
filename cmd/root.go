package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mindbot/pkg/config"
	"mindbot/pkg/counter"
	"mindbot/pkg/draw"
	"mindbot/pkg/screen"
	"mindbot/process/compare"
)

// cfg is loaded once per invocation, before any command runs.
var cfg config.Config

// rootCmd runs the comparison loop when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mindbot",
	Short: "Compare two on-screen numbers and draw the answer",
	Long: `mindbot watches two screen regions, reads the number in each with OCR,
and draws ">" or "<" into the answer region with the mouse. A running count
of answers is kept in the counter file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		c, err := loadConfig(cmd)
		if err != nil {
			setupLogging("", verbose)
			return err
		}
		cfg = c
		setupLogging(cfg.LogLevel, verbose)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runLoop(ctx, cfg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("counter-file", "", "Counter file (overrides COUNTER_FILE)")
	rootCmd.PersistentFlags().String("debug-dir", "", "Directory for diagnostic images (overrides DEBUG_DIR)")
	rootCmd.Flags().Bool("no-debug-images", false, "Do not write diagnostic images")
}

func setupLogging(level string, verbose bool) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if verbose && lvl > zerolog.DebugLevel {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// loadConfig reads .env and the environment, then applies command-line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if v, _ := cmd.Flags().GetString("counter-file"); v != "" {
		cfg.CounterFile = v
	}
	if v, _ := cmd.Flags().GetString("debug-dir"); v != "" {
		cfg.DebugDir = v
	}
	if f := cmd.Flags().Lookup("no-debug-images"); f != nil && f.Changed {
		cfg.DebugImages = false
	}
	return cfg, cfg.Validate()
}

func runLoop(ctx context.Context, cfg config.Config) error {
	pool, err := compare.NewTesseractPool(cfg.OCRWorkers, cfg.OCRLanguage, cfg.OCRWhitelist, cfg.MinConfidence)
	if err != nil {
		return fmt.Errorf("start ocr: %w", err)
	}
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn().Err(err).Msg("close ocr workers")
		}
	}()

	store := counter.Open(cfg.CounterFile)
	drawer := draw.New(cfg.WriteRegion, screen.NewRobotPointer(), cfg.Draw)
	loop := compare.New(compare.Settings{
		Region1:     cfg.Region1,
		Region2:     cfg.Region2,
		Interval:    cfg.RecognitionInterval,
		RepeatDelay: cfg.RepeatDelay,
	}, screen.NewCapturer(cfg.DiagnosticDir()), pool, drawer, store)

	log.Info().
		Str("counter_file", store.Path()).
		Int("workers", cfg.OCRWorkers).
		Str("debug_dir", cfg.DiagnosticDir()).
		Msg("starting")
	return loop.Run(ctx)
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/qrlab/qrgen/api"
	"github.com/qrlab/qrgen/config"
	"github.com/qrlab/qrgen/fixture"
	"github.com/qrlab/qrgen/qr"
)

var version = "v0.1.0"

func main() {
	// .env files supply QRGEN_* overrides during development.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "qrgen",
		Short: "QR test-image generator for decoder development",
	}

	// --- fixtures command ----------------------------------------------------
	var fixturesConfig string
	fixturesCmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Generate the built-in decoder test images",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixtures(fixturesConfig)
		},
	}
	fixturesCmd.Flags().StringVarP(&fixturesConfig, "config", "c", "config.yaml", "Path to config file")
	root.AddCommand(fixturesCmd)

	// --- generate command ----------------------------------------------------
	var generateConfig string
	var genOpts generateOptions
	generateCmd := &cobra.Command{
		Use:   "generate [payload]",
		Short: "Encode a payload and write it as a PNG artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genOpts.payload = args[0]
			return runGenerate(generateConfig, genOpts)
		},
	}
	generateCmd.Flags().StringVarP(&generateConfig, "config", "c", "config.yaml", "Path to config file")
	generateCmd.Flags().StringVarP(&genOpts.output, "output", "o", "qr.png", "Output file name inside the output directory")
	generateCmd.Flags().IntVar(&genOpts.version, "version", 0, "Symbol version 1..40, 0 picks the smallest that fits")
	generateCmd.Flags().StringVar(&genOpts.level, "level", "", "Error correction level L, M, Q or H")
	generateCmd.Flags().IntVar(&genOpts.moduleSize, "module-size", 0, "Pixels per module")
	generateCmd.Flags().IntVar(&genOpts.border, "border", -1, "Quiet zone width in modules")
	generateCmd.Flags().BoolVar(&genOpts.exact, "exact", false, "Fail instead of growing the version when the payload does not fit")
	root.AddCommand(generateCmd)

	// --- preview command -----------------------------------------------------
	var previewLevel string
	var previewBorder int
	previewCmd := &cobra.Command{
		Use:   "preview [payload]",
		Short: "Print a payload as a scannable QR code in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(args[0], previewLevel, previewBorder)
		},
	}
	previewCmd.Flags().StringVar(&previewLevel, "level", "M", "Error correction level L, M, Q or H")
	previewCmd.Flags().IntVar(&previewBorder, "border", 2, "Quiet zone width in modules")
	root.AddCommand(previewCmd)

	// --- serve command -------------------------------------------------------
	var serveConfig string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fixture gallery and generation API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(serveConfig)
		},
	}
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "config.yaml", "Path to config file")
	root.AddCommand(serveCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qrgen %s\n", version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger. Log lines go to stderr; stdout is
// reserved for the status lines of generated artifacts.
func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
	return log
}

// runFixtures generates the fixed set of decoder test images.
func runFixtures(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureOutputDir(); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	manifest, err := fixture.OpenManifest(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	gen := fixture.NewGenerator(cfg.OutputDir, manifest, os.Stdout, log)

	return fixture.Run(gen, fixture.DefaultScenarios())
}

type generateOptions struct {
	payload    string
	output     string
	version    int
	level      string
	moduleSize int
	border     int
	exact      bool
}

// runGenerate writes a single artifact, filling unset flags from the config
// file's generate defaults.
func runGenerate(configPath string, o generateOptions) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureOutputDir(); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	if o.level == "" {
		o.level = cfg.Generate.Level
	}
	lvl, err := qr.ParseLevel(o.level)
	if err != nil {
		return err
	}
	if o.moduleSize <= 0 {
		o.moduleSize = cfg.Generate.ModuleSize
	}
	if o.border < 0 {
		o.border = cfg.Generate.Border
	}

	manifest, err := fixture.OpenManifest(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	gen := fixture.NewGenerator(cfg.OutputDir, manifest, os.Stdout, log)

	_, err = gen.Generate(o.payload, qr.Config{
		Version:    o.version,
		Level:      lvl,
		ModuleSize: o.moduleSize,
		Border:     o.border,
		Fit:        !o.exact,
	}, o.output)
	return err
}

// runPreview prints the payload as a half-block QR code on stdout.
func runPreview(payload, level string, border int) error {
	lvl, err := qr.ParseLevel(level)
	if err != nil {
		return err
	}
	sym, err := qr.Encode(payload, qr.Config{Level: lvl, ModuleSize: 1, Border: border, Fit: true})
	if err != nil {
		return err
	}
	fmt.Print(qr.ASCII(sym))
	return nil
}

// runServe is the gallery server entrypoint that wires all components together.
func runServe(configPath string) error {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureOutputDir(); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}

	// 2. Setup logger
	log := newLogger(cfg.LogLevel)
	log.Info("starting qrgen", "version", version, "port", cfg.Port, "output_dir", cfg.OutputDir)

	// 3. Open the artifact manifest
	manifest, err := fixture.OpenManifest(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}

	// 4. Create the generator. The server reports results as JSON, so the
	// per-artifact status lines are discarded.
	gen := fixture.NewGenerator(cfg.OutputDir, manifest, io.Discard, log)

	defaultLevel, err := qr.ParseLevel(cfg.Generate.Level)
	if err != nil {
		return fmt.Errorf("config generate.level: %w", err)
	}

	// 5. Start HTTP server
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: api.NewRouter(&api.Server{
			Gen:       gen,
			Manifest:  manifest,
			OutputDir: cfg.OutputDir,
			Defaults: qr.Config{
				Level:      defaultLevel,
				ModuleSize: cfg.Generate.ModuleSize,
				Border:     cfg.Generate.Border,
				Fit:        true,
			},
			Log:     log,
			Version: version,
			Started: time.Now(),
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("gallery is up", "url", fmt.Sprintf("http://localhost:%d/", cfg.Port))

	// 6. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("goodbye")
	return nil
}

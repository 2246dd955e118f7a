package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ironsheep/scorecard-mcp/internal/config"
	"github.com/ironsheep/scorecard-mcp/internal/ocr"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configFile string
	v          = config.New()

	// Set by setup before any command runs.
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "scorecard-mcp",
	Short: "Read golf scores from scorecard photos",
	Long: `scorecard-mcp reads one player's 18 hole scores from a photo of a golf
scorecard. Without a subcommand it runs as an MCP server over stdin/stdout.

Configuration comes from --config, ./scorecard.yaml or
$XDG_CONFIG_HOME/scorecard-mcp/config.yaml, overridden by SCORECARD_*
environment variables (a .env file in the working directory is loaded first).

Examples:
  scorecard-mcp                                   # MCP server on stdio
  scorecard-mcp extract --player Lee --image card.jpg
  scorecard-mcp extract --player Lee --observations obs.json --xlsx lee.xlsx
  scorecard-mcp watch ./inbox --player Lee`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE: runServe,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (YAML)")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-file", "", "write logs to this file with rotation instead of stderr")
	pf.String("backend", "", "text detector: tesseract or easyocr")
	pf.String("easyocr-url", "", "EasyOCR server URL")
	pf.String("preset", "", "engine threshold preset: default or lenient")

	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log.file", pf.Lookup("log-file"))
	_ = v.BindPFlag("detector.backend", pf.Lookup("backend"))
	_ = v.BindPFlag("detector.easyocr_url", pf.Lookup("easyocr-url"))
	_ = v.BindPFlag("engine.preset", pf.Lookup("preset"))
}

// setup loads .env and the configuration and installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	c, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	cfg = c
	logger, logCloser = cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"file", cfg.File,
		"backend", cfg.Detector.Backend,
		"preset", cfg.Preset,
		"version", Version)
	return nil
}

// newDetector builds the configured text detector.
func newDetector() (scorecard.Detector, error) {
	return ocr.New(cfg.OCROptions(logger))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/scorecard-mcp/internal/ocr"
	"github.com/ironsheep/scorecard-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdin/stdout (default)",
	Long: `Run the MCP server. Requests are read from stdin one per line and
responses written to stdout, so logs always go to stderr or --log-file.

Configure it in your MCP client (e.g., Claude Desktop) with this binary as the
command and no arguments.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	det, err := newDetector()
	if err != nil {
		// scorecard_extract works without a detector.
		logger.Warn("text detector unavailable; photo tools will fail", "error", err)
	}
	if easy, ok := det.(*ocr.EasyOCRDetector); ok {
		hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := easy.Health(hctx); err != nil {
			logger.Warn("easyocr server not healthy", "url", cfg.Detector.EasyOCRURL, "error", err)
		}
		cancel()
	}

	logger.Info("scorecard-mcp server starting",
		"version", Version,
		"commit", GitCommit,
		"backend", cfg.Detector.Backend,
		"tesseract", ocr.Version(),
		"preset", cfg.Preset)

	srv := server.New(server.Options{
		Detector: det,
		Backend:  cfg.Detector.Backend,
		Engine:   cfg.Engine,
		Version:  Version,
		Logger:   logger,
	})
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

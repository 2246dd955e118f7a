package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/scorecard-mcp/internal/export"
	"github.com/ironsheep/scorecard-mcp/internal/ingest"
	"github.com/ironsheep/scorecard-mcp/internal/report"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Read every scorecard photo dropped into a directory",
	Long: `Watch DIR and read each photo that is created or rewritten there. The
report is written next to the photo as <photo>.scorecard.json, and with
--xlsx as <photo>.xlsx too. Stops on interrupt after in-flight reads finish.

Examples:
  scorecard-mcp watch ./inbox --player Lee
  scorecard-mcp watch ./inbox --player Lee --existing --workers 4 --xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("player", "", "player name as written on the card")
	watchCmd.Flags().Int("workers", 2, "photos read concurrently")
	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "quiet time before a photo is read")
	watchCmd.Flags().Bool("existing", false, "also read photos already in DIR that have no up-to-date report")
	watchCmd.Flags().Bool("xlsx", false, "write an Excel workbook next to each photo")
	_ = watchCmd.MarkFlagRequired("player")
	rootCmd.AddCommand(watchCmd)
}

// cardProcessor reads photos for one player and writes their reports.
type cardProcessor struct {
	reader   *scorecard.Reader
	exporter *export.Exporter
	player   string
	backend  string
	xlsx     bool
	// skipFresh leaves photos alone when their report is newer.
	skipFresh bool
	logger    *slog.Logger
}

// upToDate reports whether path already has a report written after it.
func upToDate(path string) bool {
	img, err := os.Stat(path)
	if err != nil {
		return false
	}
	rep, err := os.Stat(report.SidecarPath(path))
	if err != nil {
		return false
	}
	return !rep.ModTime().Before(img.ModTime())
}

func (p *cardProcessor) handle(ctx context.Context, path string) error {
	if p.skipFresh && upToDate(path) {
		p.logger.Debug("report up to date", "path", path)
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	res, err := p.reader.Read(ctx, raw, p.player)
	if err != nil {
		return err
	}
	rep := report.New(res, p.player, path, p.backend)
	if err := rep.WriteFile(report.SidecarPath(path)); err != nil {
		return err
	}
	if p.xlsx {
		if err := p.exporter.WriteFile(path+".xlsx", rep); err != nil {
			return err
		}
	}
	p.logger.Info("report written",
		"path", path,
		"route", rep.Route,
		"valid_scores", res.ValidScores,
		"total", rep.Total)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	player, _ := flags.GetString("player")
	workers, _ := flags.GetInt("workers")
	debounce, _ := flags.GetDuration("debounce")
	existing, _ := flags.GetBool("existing")
	xlsx, _ := flags.GetBool("xlsx")
	if strings.TrimSpace(player) == "" {
		return fmt.Errorf("--player must not be blank")
	}

	det, err := newDetector()
	if err != nil {
		return err
	}

	proc := &cardProcessor{
		reader:    scorecard.NewReader(det, cfg.Engine, logger),
		exporter:  export.NewExporter(logger),
		player:    player,
		backend:   cfg.Detector.Backend,
		xlsx:      xlsx,
		skipFresh: true,
		logger:    logger,
	}

	w, err := ingest.NewWatcher(args[0], proc.handle, ingest.WatcherOptions{
		Debounce:        debounce,
		Workers:         workers,
		ProcessExisting: existing,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/scorecard-mcp/internal/export"
	"github.com/ironsheep/scorecard-mcp/internal/ingest"
	"github.com/ironsheep/scorecard-mcp/internal/report"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Read one player's scores from a photo or an observations file",
	Long: `Read one player's scores and print them.

Give either --image (text detection runs with the configured backend) or
--observations (a JSON file of detector output, either an array of
{text, x, y, width, height} with fractional bottom-left coordinates or
{"player": ..., "observations": [...]}).

Output is a table on a terminal and JSON otherwise; --json forces JSON.
The command fails only when no score at all could be recovered.

Examples:
  scorecard-mcp extract --player Lee --image card.jpg
  scorecard-mcp extract --player Lee --image card.jpg --preset lenient --xlsx lee.xlsx
  scorecard-mcp extract --observations obs.json --json`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("player", "", "player name as written on the card")
	extractCmd.Flags().String("image", "", "scorecard photo")
	extractCmd.Flags().String("observations", "", "JSON file of detector output")
	extractCmd.Flags().String("xlsx", "", "also write an Excel workbook to this path")
	extractCmd.Flags().Bool("json", false, "print JSON even on a terminal")
	extractCmd.MarkFlagsMutuallyExclusive("image", "observations")
	extractCmd.MarkFlagsOneRequired("image", "observations")
	rootCmd.AddCommand(extractCmd)
}

type extractOptions struct {
	player       string
	image        string
	observations string
}

// buildReport reads the card named by opts. detect is only called for
// photos.
func buildReport(ctx context.Context, opts extractOptions, detect func() (scorecard.Detector, error), engine scorecard.Config, backend string) (*report.Report, error) {
	if opts.observations != "" {
		doc, err := ingest.LoadFile(opts.observations)
		if err != nil {
			return nil, err
		}
		player := opts.player
		if player == "" {
			player = doc.Player
		}
		if strings.TrimSpace(player) == "" {
			return nil, fmt.Errorf("--player is required unless the observations file names one")
		}
		res := scorecard.Extract(doc.Observations, player, engine)
		return report.New(res, player, opts.observations, ""), nil
	}

	if strings.TrimSpace(opts.player) == "" {
		return nil, fmt.Errorf("--player is required")
	}
	raw, err := os.ReadFile(opts.image)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	det, err := detect()
	if err != nil {
		return nil, err
	}
	res, err := scorecard.NewReader(det, engine, logger).Read(ctx, raw, opts.player)
	if err != nil {
		return nil, err
	}
	return report.New(res, opts.player, opts.image, backend), nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	opts := extractOptions{}
	opts.player, _ = flags.GetString("player")
	opts.image, _ = flags.GetString("image")
	opts.observations, _ = flags.GetString("observations")
	xlsxPath, _ := flags.GetString("xlsx")
	asJSON, _ := flags.GetBool("json")

	rep, err := buildReport(cmd.Context(), opts, newDetector, cfg.Engine, cfg.Detector.Backend)
	if err != nil {
		return err
	}

	if xlsxPath != "" {
		if err := export.NewExporter(logger).WriteFile(xlsxPath, rep); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if !asJSON {
		if f, ok := out.(*os.File); !ok || !isTerminal(f) {
			asJSON = true
		}
	}
	if err := printReport(out, rep, asJSON); err != nil {
		return err
	}

	if rep.Route == scorecard.RouteFailed {
		return fmt.Errorf("no scores recovered: %s", rep.Error)
	}
	return nil
}

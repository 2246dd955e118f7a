package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/ironsheep/scorecard-mcp/internal/report"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printReport writes rep as indented JSON or as a score table.
func printReport(w io.Writer, rep *report.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	renderTable(w, rep)
	return nil
}

var confidenceMarks = map[scorecard.Confidence]string{
	scorecard.ConfidenceHigh:   "H",
	scorecard.ConfidenceMedium: "M",
	scorecard.ConfidenceLow:    "L",
	scorecard.ConfidenceNone:   "-",
}

// renderTable prints holes across, with the player's scores and a
// confidence mark under each, followed by a short summary.
func renderTable(w io.Writer, rep *report.Report) {
	res := rep.Result
	header := []string{"Hole"}
	scores := []string{rep.Player}
	if res.PlayerName != "" {
		scores[0] = res.PlayerName
	}
	conf := []string{"Conf"}
	for h := 1; h <= scorecard.MaxHoles; h++ {
		header = append(header, strconv.Itoa(h))
		s, c := scorecard.Unknown, scorecard.ConfidenceNone
		if h-1 < len(res.Scores) {
			s = res.Scores[h-1]
		}
		if h-1 < len(res.Confidence) {
			c = res.Confidence[h-1]
		}
		scores = append(scores, s.String())
		conf = append(conf, confidenceMarks[c])
	}
	header = append(header, "Tot")
	scores = append(scores, strconv.Itoa(rep.Total))
	conf = append(conf, "")

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetHeader(header)
	table.Append(scores)
	table.Append(conf)
	table.Render()

	fmt.Fprintf(w, "strategy: %s  state: %s  valid: %d/%d\n",
		res.Strategy, res.State, res.ValidScores, scorecard.MaxHoles)
	if rep.NeedsManualEntry {
		fmt.Fprintf(w, "manual entry needed (%s)", rep.Route)
		if rep.Error != "" {
			fmt.Fprintf(w, ": %s", rep.Error)
		}
		fmt.Fprintln(w)
	}
}

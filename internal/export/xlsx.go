// Package export writes scorecard reports as spreadsheets.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ironsheep/scorecard-mcp/internal/report"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// Sheet names in the generated workbook.
const (
	ScoreSheet = "Scorecard"
	TraceSheet = "Trace"
)

// Exporter produces XLSX workbooks from reports.
type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// XLSX returns a workbook with the hole, score and confidence rows plus
// report metadata on the first sheet and the decision trace on the second.
// Scores read with low or no confidence are highlighted.
func (e *Exporter) XLSX(r *report.Report) ([]byte, error) {
	if r == nil || r.Result == nil {
		return nil, fmt.Errorf("export: empty report")
	}
	start := time.Now()
	res := r.Result

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ScoreSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(TraceSheet); err != nil {
		return nil, fmt.Errorf("add trace sheet: %w", err)
	}
	activeIndex, err := f.GetSheetIndex(ScoreSheet)
	if err != nil {
		return nil, fmt.Errorf("sheet index: %w", err)
	}
	f.SetActiveSheet(activeIndex)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("bold style: %w", err)
	}
	review, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
	})
	if err != nil {
		return nil, fmt.Errorf("review style: %w", err)
	}

	w := &sheetWriter{f: f}
	write, style := w.value, w.style

	// Rows 1-3: holes, scores, confidence. Column 1 holds labels.
	write(ScoreSheet, 1, 1, "Hole")
	write(ScoreSheet, 1, 2, playerLabel(r))
	write(ScoreSheet, 1, 3, "Confidence")
	for h := 1; h <= scorecard.MaxHoles; h++ {
		col := h + 1
		write(ScoreSheet, col, 1, h)

		conf := scorecard.ConfidenceNone
		if h-1 < len(res.Confidence) {
			conf = res.Confidence[h-1]
		}
		if h-1 < len(res.Scores) && res.Scores[h-1].Known() {
			write(ScoreSheet, col, 2, int(res.Scores[h-1]))
		}
		write(ScoreSheet, col, 3, conf.String())
		if conf < scorecard.ConfidenceMedium {
			style(ScoreSheet, col, 2, review)
		}
	}
	totalCol := scorecard.MaxHoles + 2
	write(ScoreSheet, totalCol, 1, "Total")
	write(ScoreSheet, totalCol, 2, r.Total)
	w.styleRange(ScoreSheet, 1, 1, 1, 3, bold)
	w.styleRange(ScoreSheet, 1, 1, totalCol, 1, bold)

	meta := []struct {
		key string
		val any
	}{
		{"Strategy", res.Strategy.String()},
		{"State", res.State.String()},
		{"Route", string(r.Route)},
		{"Failure", string(res.Failure)},
		{"Valid scores", res.ValidScores},
		{"Needs manual entry", r.NeedsManualEntry},
		{"Source", r.Source},
		{"Detector", r.Detector},
		{"Report ID", r.ID.String()},
		{"Created", r.CreatedAt.Format(time.RFC3339)},
	}
	for i, m := range meta {
		row := 5 + i
		write(ScoreSheet, 1, row, m.key)
		write(ScoreSheet, 2, row, m.val)
		style(ScoreSheet, 1, row, bold)
	}

	write(TraceSheet, 1, 1, "Step")
	write(TraceSheet, 2, 1, "Decision")
	w.styleRange(TraceSheet, 1, 1, 2, 1, bold)
	for i, line := range res.Trace {
		write(TraceSheet, 1, i+2, i+1)
		write(TraceSheet, 2, i+2, line)
	}

	w.colWidth(ScoreSheet, "A", "A", 20)
	w.colWidth(ScoreSheet, "B", "S", 7)
	w.colWidth(ScoreSheet, "T", "T", 8)
	w.colWidth(TraceSheet, "A", "A", 6)
	w.colWidth(TraceSheet, "B", "B", 90)
	if w.err != nil {
		return nil, fmt.Errorf("xlsx cells: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("export.xlsx.ok",
		"report_id", r.ID.String(),
		"player", r.Player,
		"trace_lines", len(res.Trace),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile writes the workbook for r to path.
func (e *Exporter) WriteFile(path string, r *report.Report) error {
	data, err := e.XLSX(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sheetWriter wraps cell edits and keeps the first error.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) keep(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *sheetWriter) value(sheet string, col, row int, v any) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.keep(err)
		return
	}
	w.keep(w.f.SetCellValue(sheet, cell, v))
}

func (w *sheetWriter) style(sheet string, col, row, id int) {
	w.styleRange(sheet, col, row, col, row, id)
}

func (w *sheetWriter) styleRange(sheet string, col1, row1, col2, row2, id int) {
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		w.keep(err)
		return
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		w.keep(err)
		return
	}
	w.keep(w.f.SetCellStyle(sheet, from, to, id))
}

func (w *sheetWriter) colWidth(sheet, startCol, endCol string, width float64) {
	w.keep(w.f.SetColWidth(sheet, startCol, endCol, width))
}

func playerLabel(r *report.Report) string {
	if r.Result.PlayerName != "" {
		return r.Result.PlayerName
	}
	if r.Player != "" {
		return r.Player
	}
	return "Score"
}

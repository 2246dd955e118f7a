package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/scorecard-mcp/internal/imaging"
	"github.com/ironsheep/scorecard-mcp/internal/ingest"
	"github.com/ironsheep/scorecard-mcp/internal/report"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "scorecard_read").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// paramError marks a tool failure caused by the caller's arguments.
type paramError struct {
	msg string
}

func (e *paramError) Error() string { return e.msg }

func invalidParams(format string, args ...interface{}) error {
	return &paramError{msg: fmt.Sprintf(format, args...)}
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return -32602; any other tool failure returns -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var pe *paramError
		if errors.As(err, &pe) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "scorecard_read":
		return s.handleScorecardRead(ctx, args)
	case "scorecard_extract":
		return s.handleScorecardExtract(args)
	case "scorecard_detect":
		return s.handleScorecardDetect(ctx, args)
	case "scorecard_overlay":
		return s.handleScorecardOverlay(ctx, args)
	case "scorecard_export_xlsx":
		return s.handleScorecardExportXLSX(ctx, args)
	default:
		return nil, invalidParams("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return invalidParams("invalid arguments: %v", err)
	}
	return nil
}

// engineFor returns the server's thresholds or the named preset. Presets
// keep the server's detection timeout.
func (s *Server) engineFor(preset string) (scorecard.Config, error) {
	if preset == "" {
		return s.engine, nil
	}
	cfg, err := scorecard.Preset(preset)
	if err != nil {
		return scorecard.Config{}, invalidParams("%v", err)
	}
	cfg.DetectionTimeout = s.engine.DetectionTimeout
	return cfg, nil
}

func (s *Server) loadImage(path string) (*imaging.Image, error) {
	if path == "" {
		return nil, invalidParams("path is required")
	}
	return s.cache.Load(path)
}

// detect runs the detector on a cached photo under the detection timeout.
func (s *Server) detect(ctx context.Context, img *imaging.Image) ([]scorecard.TextObservation, error) {
	if s.detector == nil {
		return nil, errors.New("no text detector configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.engine.DetectionTimeout)
	defer cancel()
	return s.detector.Detect(ctx, img.Raw)
}

// readReport runs the full pipeline on the photo at path.
func (s *Server) readReport(ctx context.Context, path, player string, cfg scorecard.Config) (*report.Report, error) {
	if s.detector == nil {
		return nil, errors.New("no text detector configured")
	}
	img, err := s.loadImage(path)
	if err != nil {
		return nil, err
	}
	res, err := scorecard.NewReader(s.detector, cfg, s.logger).Read(ctx, img.Raw, player)
	if err != nil {
		return nil, err
	}
	return report.New(res, player, path, s.backend), nil
}

// extractReport runs the strategies on caller-supplied observations.
func extractReport(raw json.RawMessage, player string, cfg scorecard.Config) (*report.Report, error) {
	if len(raw) == 0 {
		return nil, invalidParams("observations are required")
	}
	doc, err := ingest.Decode(raw)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	if player == "" {
		player = doc.Player
	}
	if strings.TrimSpace(player) == "" {
		return nil, invalidParams("player is required")
	}
	res := scorecard.Extract(doc.Observations, player, cfg)
	return report.New(res, player, "", ""), nil
}

// === Scorecard Handlers ===

type scorecardReadArgs struct {
	Path   string `json:"path"`
	Player string `json:"player"`
	Preset string `json:"preset"`
}

func (s *Server) handleScorecardRead(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scorecardReadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Player) == "" {
		return nil, invalidParams("player is required")
	}
	cfg, err := s.engineFor(a.Preset)
	if err != nil {
		return nil, err
	}
	return s.readReport(ctx, a.Path, a.Player, cfg)
}

type scorecardExtractArgs struct {
	Observations json.RawMessage `json:"observations"`
	Player       string          `json:"player"`
	Preset       string          `json:"preset"`
}

func (s *Server) handleScorecardExtract(args json.RawMessage) (interface{}, error) {
	var a scorecardExtractArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cfg, err := s.engineFor(a.Preset)
	if err != nil {
		return nil, err
	}
	return extractReport(a.Observations, a.Player, cfg)
}

type scorecardDetectArgs struct {
	Path string `json:"path"`
}

type detectResult struct {
	Path         string                      `json:"path"`
	Image        imaging.ImageInfo           `json:"image"`
	Detector     string                      `json:"detector,omitempty"`
	Count        int                         `json:"count"`
	Observations []scorecard.TextObservation `json:"observations"`
}

func (s *Server) handleScorecardDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scorecardDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	obs, err := s.detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}
	if obs == nil {
		obs = []scorecard.TextObservation{}
	}
	return &detectResult{
		Path:         a.Path,
		Image:        img.Info(),
		Detector:     s.backend,
		Count:        len(obs),
		Observations: obs,
	}, nil
}

type scorecardOverlayArgs struct {
	Path        string `json:"path"`
	Player      string `json:"player"`
	Labels      bool   `json:"labels"`
	ColumnColor string `json:"column_color"`
	Preset      string `json:"preset"`
}

func (s *Server) handleScorecardOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scorecardOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cfg, err := s.engineFor(a.Preset)
	if err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	obs, err := s.detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}
	return imaging.RenderOverlay(img.Image, obs, imaging.OverlayOptions{
		Player:      a.Player,
		Config:      cfg,
		Labels:      a.Labels,
		ColumnColor: a.ColumnColor,
	})
}

type scorecardExportArgs struct {
	Path         string          `json:"path"`
	Observations json.RawMessage `json:"observations"`
	Player       string          `json:"player"`
	Output       string          `json:"output"`
	Preset       string          `json:"preset"`
}

type exportResult struct {
	Output      string          `json:"output"`
	ReportID    string          `json:"report_id"`
	Route       scorecard.Route `json:"route"`
	ValidScores int             `json:"valid_scores"`
	Total       int             `json:"total"`
}

func (s *Server) handleScorecardExportXLSX(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scorecardExportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if (a.Path == "") == (len(a.Observations) == 0) {
		return nil, invalidParams("exactly one of path or observations is required")
	}
	output := a.Output
	if output == "" {
		if a.Path == "" {
			return nil, invalidParams("output is required when exporting observations")
		}
		output = a.Path + ".xlsx"
	}
	cfg, err := s.engineFor(a.Preset)
	if err != nil {
		return nil, err
	}

	var rep *report.Report
	if a.Path != "" {
		if strings.TrimSpace(a.Player) == "" {
			return nil, invalidParams("player is required")
		}
		rep, err = s.readReport(ctx, a.Path, a.Player, cfg)
	} else {
		rep, err = extractReport(a.Observations, a.Player, cfg)
	}
	if err != nil {
		return nil, err
	}

	if err := s.exporter.WriteFile(output, rep); err != nil {
		return nil, err
	}
	return &exportResult{
		Output:      output,
		ReportID:    rep.ID.String(),
		Route:       rep.Route,
		ValidScores: rep.Result.ValidScores,
		Total:       rep.Total,
	}, nil
}

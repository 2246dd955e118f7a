package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ironsheep/scorecard-mcp/internal/export"
	"github.com/ironsheep/scorecard-mcp/internal/imaging"
	"github.com/ironsheep/scorecard-mcp/internal/report"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
	"github.com/ironsheep/scorecard-mcp/internal/scorecard/scorecardtest"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "card.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func staticDetector(obs []scorecard.TextObservation, err error) scorecard.Detector {
	return scorecard.DetectorFunc(func(context.Context, []byte) ([]scorecard.TextObservation, error) {
		return obs, err
	})
}

// newCardServer returns a server whose detector always reports a full card
// for Lee with a 4 on every hole.
func newCardServer() *Server {
	return New(Options{
		Detector: staticDetector(scorecardtest.Card("Lee", scorecardtest.Par4(18)...), nil),
		Backend:  "fake",
		Logger:   quietLogger(),
	})
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeContent unmarshals the text content of a successful tool response.
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content = %#v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type = %v", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("decode content: %v\n%s", err, text)
	}
}

func expectErrorCode(t *testing.T, resp *MCPResponse, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error %d, got result %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Errorf("Error code: got %d (%v), want %d", resp.Error.Code, resp.Error.Data, code)
	}
}

func cardObservationsJSON(t *testing.T, values ...int) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(scorecardtest.Card("Lee", values...))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHandleToolsCall_ScorecardRead(t *testing.T) {
	s := newCardServer()
	imgPath := createTestImageFile(t, 400, 200, color.White)

	resp := callTool(t, s, "scorecard_read", map[string]interface{}{
		"path":   imgPath,
		"player": "lee",
	})

	var rep report.Report
	decodeContent(t, resp, &rep)
	if rep.Route != scorecard.RouteSucceeded || rep.NeedsManualEntry {
		t.Errorf("route = %s, manual = %v", rep.Route, rep.NeedsManualEntry)
	}
	if rep.Total != 72 || rep.Result.ValidScores != 18 {
		t.Errorf("total = %d, valid = %d", rep.Total, rep.Result.ValidScores)
	}
	if rep.Source != imgPath || rep.Detector != "fake" || rep.Player != "lee" {
		t.Errorf("source/detector/player = %q/%q/%q", rep.Source, rep.Detector, rep.Player)
	}
	if rep.Result.PlayerName != "Lee" || rep.Result.Strategy != scorecard.StrategyGrid {
		t.Errorf("player name = %q, strategy = %s", rep.Result.PlayerName, rep.Result.Strategy)
	}
	if rep.Result.State != scorecard.StateExtractionSucceeded {
		t.Errorf("state = %s", rep.Result.State)
	}
}

func TestHandleToolsCall_ScorecardReadDetectionFailure(t *testing.T) {
	s := New(Options{
		Detector: staticDetector(nil, errors.New("engine offline")),
		Logger:   quietLogger(),
	})
	imgPath := createTestImageFile(t, 50, 50, color.White)

	resp := callTool(t, s, "scorecard_read", map[string]interface{}{"path": imgPath, "player": "Lee"})

	// A failed read is a result, not a protocol error.
	var rep report.Report
	decodeContent(t, resp, &rep)
	if rep.Route != scorecard.RouteFailed || !rep.NeedsManualEntry {
		t.Errorf("route = %s, manual = %v", rep.Route, rep.NeedsManualEntry)
	}
	if rep.Result.State != scorecard.StateDetectionFailed {
		t.Errorf("state = %s", rep.Result.State)
	}
	if !strings.Contains(rep.Error, "engine offline") {
		t.Errorf("error = %q", rep.Error)
	}
}

func TestHandleToolsCall_ScorecardReadErrors(t *testing.T) {
	imgPath := createTestImageFile(t, 50, 50, color.White)
	tests := []struct {
		name   string
		server *Server
		args   map[string]interface{}
		code   int
	}{
		{"missing player", newCardServer(), map[string]interface{}{"path": imgPath}, -32602},
		{"missing path", newCardServer(), map[string]interface{}{"player": "Lee"}, -32602},
		{"unknown preset", newCardServer(), map[string]interface{}{"path": imgPath, "player": "Lee", "preset": "strict"}, -32602},
		{"missing file", newCardServer(), map[string]interface{}{"path": "/nonexistent/card.png", "player": "Lee"}, -32000},
		{"no detector", newTestServer(), map[string]interface{}{"path": imgPath, "player": "Lee"}, -32000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectErrorCode(t, callTool(t, tt.server, "scorecard_read", tt.args), tt.code)
		})
	}
}

func TestHandleToolsCall_ScorecardExtract(t *testing.T) {
	s := newTestServer()

	t.Run("array with player", func(t *testing.T) {
		resp := callTool(t, s, "scorecard_extract", map[string]interface{}{
			"observations": cardObservationsJSON(t, 4, 5, 3, 4, 4, 5, 3, 4, 4, 5),
			"player":       "Lee",
		})
		var rep report.Report
		decodeContent(t, resp, &rep)
		if rep.Route != scorecard.RoutePartial || rep.Result.ValidScores != 10 {
			t.Errorf("route = %s, valid = %d", rep.Route, rep.Result.ValidScores)
		}
		if rep.Source != "" || rep.Detector != "" {
			t.Errorf("source/detector should be empty: %q/%q", rep.Source, rep.Detector)
		}
	})

	t.Run("envelope names the player", func(t *testing.T) {
		envelope := map[string]interface{}{
			"player":       "Lee",
			"observations": json.RawMessage(cardObservationsJSON(t, scorecardtest.Par4(18)...)),
		}
		resp := callTool(t, s, "scorecard_extract", map[string]interface{}{"observations": envelope})
		var rep report.Report
		decodeContent(t, resp, &rep)
		if rep.Player != "Lee" || rep.Route != scorecard.RouteSucceeded {
			t.Errorf("player = %q, route = %s", rep.Player, rep.Route)
		}
	})

	t.Run("lenient preset", func(t *testing.T) {
		resp := callTool(t, s, "scorecard_extract", map[string]interface{}{
			"observations": cardObservationsJSON(t, scorecardtest.Par4(18)...),
			"player":       "Lee",
			"preset":       "lenient",
		})
		var rep report.Report
		decodeContent(t, resp, &rep)
		if rep.Route != scorecard.RouteSucceeded {
			t.Errorf("route = %s", rep.Route)
		}
	})
}

func TestHandleToolsCall_ScorecardExtractErrors(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"no observations", map[string]interface{}{"player": "Lee"}},
		{"no player", map[string]interface{}{"observations": []interface{}{}}},
		{"observation out of range", map[string]interface{}{
			"player":       "Lee",
			"observations": []map[string]interface{}{{"text": "4", "x": 2, "y": 0, "width": 0.1, "height": 0.1}},
		}},
		{"observations not a list", map[string]interface{}{"player": "Lee", "observations": "4 5 3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectErrorCode(t, callTool(t, s, "scorecard_extract", tt.args), -32602)
		})
	}
}

func TestHandleToolsCall_ScorecardDetect(t *testing.T) {
	s := newCardServer()
	imgPath := createTestImageFile(t, 300, 100, color.White)

	resp := callTool(t, s, "scorecard_detect", map[string]interface{}{"path": imgPath})

	var got detectResult
	decodeContent(t, resp, &got)
	want := len(scorecardtest.Card("Lee", scorecardtest.Par4(18)...))
	if got.Count != want || len(got.Observations) != want {
		t.Errorf("count = %d, observations = %d, want %d", got.Count, len(got.Observations), want)
	}
	if got.Image.Width != 300 || got.Image.Height != 100 || got.Image.Format != "png" {
		t.Errorf("image = %+v", got.Image)
	}
	if got.Detector != "fake" {
		t.Errorf("detector = %q", got.Detector)
	}
}

func TestHandleToolsCall_ScorecardDetectTimeout(t *testing.T) {
	slow := scorecard.DetectorFunc(func(ctx context.Context, _ []byte) ([]scorecard.TextObservation, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	engine := scorecard.DefaultConfig()
	engine.DetectionTimeout = 20 * time.Millisecond
	s := New(Options{Detector: slow, Engine: engine, Logger: quietLogger()})
	imgPath := createTestImageFile(t, 20, 20, color.White)

	resp := callTool(t, s, "scorecard_detect", map[string]interface{}{"path": imgPath})
	expectErrorCode(t, resp, -32000)
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "deadline") {
		t.Errorf("error data = %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_ScorecardOverlay(t *testing.T) {
	s := newCardServer()
	imgPath := createTestImageFile(t, 400, 200, color.White)

	resp := callTool(t, s, "scorecard_overlay", map[string]interface{}{
		"path":   imgPath,
		"player": "Lee",
		"labels": true,
	})

	var got imaging.OverlayResult
	decodeContent(t, resp, &got)
	if got.MimeType != "image/png" || got.ImageBase64 == "" {
		t.Errorf("mime = %q, image empty = %v", got.MimeType, got.ImageBase64 == "")
	}
	if got.Width != 400 || got.Height != 200 {
		t.Errorf("size = %dx%d", got.Width, got.Height)
	}
	if got.Columns != scorecard.MaxHoles {
		t.Errorf("columns = %d, want %d", got.Columns, scorecard.MaxHoles)
	}
	if got.Roles[imaging.RolePlayer] != 1 {
		t.Errorf("roles = %v", got.Roles)
	}
}

func TestHandleToolsCall_ScorecardExportXLSX(t *testing.T) {
	s := newCardServer()
	imgPath := createTestImageFile(t, 400, 200, color.White)

	resp := callTool(t, s, "scorecard_export_xlsx", map[string]interface{}{
		"path":   imgPath,
		"player": "Lee",
	})

	var got exportResult
	decodeContent(t, resp, &got)
	if got.Output != imgPath+".xlsx" {
		t.Errorf("output = %q", got.Output)
	}
	if got.Route != scorecard.RouteSucceeded || got.Total != 72 || got.ValidScores != 18 {
		t.Errorf("result = %+v", got)
	}

	f, err := excelize.OpenFile(got.Output)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue(export.ScoreSheet, "T2"); v != "72" {
		t.Errorf("workbook total = %q", v)
	}
}

func TestHandleToolsCall_ScorecardExportObservations(t *testing.T) {
	s := newTestServer()
	out := filepath.Join(t.TempDir(), "round.xlsx")

	resp := callTool(t, s, "scorecard_export_xlsx", map[string]interface{}{
		"observations": cardObservationsJSON(t, 4, 5, 3, 4, 4, 5, 3, 4, 4, 5),
		"player":       "Lee",
		"output":       out,
	})

	var got exportResult
	decodeContent(t, resp, &got)
	if got.Route != scorecard.RoutePartial || got.Total != 41 {
		t.Errorf("result = %+v", got)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestHandleToolsCall_ScorecardExportErrors(t *testing.T) {
	s := newCardServer()
	imgPath := createTestImageFile(t, 50, 50, color.White)
	obs := cardObservationsJSON(t, 4)
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"neither source", map[string]interface{}{"player": "Lee"}},
		{"both sources", map[string]interface{}{"player": "Lee", "path": imgPath, "observations": obs}},
		{"observations without output", map[string]interface{}{"player": "Lee", "observations": obs}},
		{"photo without player", map[string]interface{}{"path": imgPath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectErrorCode(t, callTool(t, s, "scorecard_export_xlsx", tt.args), -32602)
		})
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	resp := callTool(t, newTestServer(), "image_crop", map[string]interface{}{})
	expectErrorCode(t, resp, -32602)
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	expectErrorCode(t, resp, -32602)
}

func TestHandleToolsCall_MalformedArguments(t *testing.T) {
	s := newCardServer()
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name":"scorecard_read","arguments":{"path":42}}`),
	})
	expectErrorCode(t, resp, -32602)
}

func TestHandleToolsCall_CachesImages(t *testing.T) {
	s := newCardServer()
	imgPath := createTestImageFile(t, 100, 100, color.White)

	for i := 0; i < 3; i++ {
		resp := callTool(t, s, "scorecard_detect", map[string]interface{}{"path": imgPath})
		if resp.Error != nil {
			t.Fatalf("call %d failed: %+v", i, resp.Error)
		}
	}
	if n := s.cache.Len(); n != 1 {
		t.Errorf("cache holds %d images, want 1", n)
	}
}

func TestMustMarshalJSON(t *testing.T) {
	got := mustMarshalJSON(map[string]int{"a": 1})
	if got != "{\n  \"a\": 1\n}" {
		t.Errorf("mustMarshalJSON = %q", got)
	}
	if got := mustMarshalJSON(make(chan int)); got != "" {
		t.Errorf("unmarshalable value should give empty string, got %q", got)
	}
}

package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// EasyOCRDetector calls a remote EasyOCR server.
//
// The server accepts POST /ocr with {"image": "<base64>"} and answers
// {"success": true, "detections": [{"text", "confidence", "bbox": {x, y,
// width, height}}]} in pixels from the top-left. GET /health reports
// liveness.
type EasyOCRDetector struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewEasyOCRDetector returns a detector for the server at baseURL. timeout
// bounds each HTTP exchange; zero leaves it to the caller's context.
func NewEasyOCRDetector(baseURL string, timeout time.Duration, logger *slog.Logger) *EasyOCRDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &EasyOCRDetector{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type easyOCRRequest struct {
	Image string `json:"image"`
}

type easyOCRBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type easyOCRDetection struct {
	Text       string     `json:"text"`
	Confidence float64    `json:"confidence"`
	BBox       easyOCRBox `json:"bbox"`
}

type easyOCRResponse struct {
	Success        bool               `json:"success"`
	Detections     []easyOCRDetection `json:"detections"`
	Error          string             `json:"error"`
	ProcessingTime float64            `json:"processing_time"`
}

// Detect implements scorecard.Detector. Observations come back sorted by
// confidence, highest first.
func (d *EasyOCRDetector) Detect(ctx context.Context, raw []byte) ([]scorecard.TextObservation, error) {
	width, height, err := dimensions(raw)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(easyOCRRequest{Image: base64.StdEncoding.EncodeToString(raw)})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/ocr", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var result easyOCRResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !result.Success {
		msg := result.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("easyocr failed with status %d: %s", resp.StatusCode, msg)
	}

	obs := make([]scorecard.TextObservation, 0, len(result.Detections))
	for _, det := range result.Detections {
		r := image.Rect(
			int(math.Round(det.BBox.X)),
			int(math.Round(det.BBox.Y)),
			int(math.Round(det.BBox.X+det.BBox.Width)),
			int(math.Round(det.BBox.Y+det.BBox.Height)),
		)
		obs = append(obs, FromPixels(det.Text, det.Confidence, r, width, height))
	}
	obs = dropBlank(obs)
	sortByConfidence(obs)
	d.logger.Debug("easyocr detection", "detections", len(obs), "server_seconds", result.ProcessingTime)
	return obs, nil
}

// Health checks that the server answers GET /health with 200.
func (d *EasyOCRDetector) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("easyocr unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("easyocr unhealthy: %d", resp.StatusCode)
	}
	var status struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err == nil && status.Status != "" && status.Status != "healthy" {
		return fmt.Errorf("easyocr reports status %q", status.Status)
	}
	return nil
}

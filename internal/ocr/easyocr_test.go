package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func blankPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func easyOCRServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestEasyOCRDetector_Detect(t *testing.T) {
	raw := blankPNG(t, 200, 100)

	srv := easyOCRServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ocr" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var req easyOCRRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		got, _ := base64.StdEncoding.DecodeString(req.Image)
		if !bytes.Equal(got, raw) {
			t.Error("request image does not match input")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"detections": []map[string]any{
				{"text": "Smith", "confidence": 0.61, "bbox": map[string]float64{"x": 0, "y": 60, "width": 40, "height": 10}},
				{"text": "4", "confidence": 0.95, "bbox": map[string]float64{"x": 100, "y": 60, "width": 10, "height": 10}},
				{"text": "  ", "confidence": 0.99, "bbox": map[string]float64{"x": 1, "y": 1, "width": 5, "height": 5}},
			},
			"processing_time": 0.12,
		})
	})

	d := NewEasyOCRDetector(srv.URL+"/", time.Second, nil)
	obs, err := d.Detect(context.Background(), raw)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("got %d observations, want 2: %+v", len(obs), obs)
	}
	if obs[0].Text != "4" || obs[1].Text != "Smith" {
		t.Errorf("not sorted by confidence: %q, %q", obs[0].Text, obs[1].Text)
	}
	four := obs[0]
	if four.X != 0.5 || four.Width != 0.05 || four.Height != 0.1 {
		t.Errorf("x/width/height = %.3f/%.3f/%.3f", four.X, four.Width, four.Height)
	}
	if y := four.Y; y < 0.299 || y > 0.301 {
		t.Errorf("y = %.3f, want 0.3 (bottom-left origin)", y)
	}
}

func TestEasyOCRDetector_Failures(t *testing.T) {
	raw := blankPNG(t, 50, 50)
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "server error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "OCR processing failed: boom"})
			},
			want: "boom",
		},
		{
			name: "success false with 200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Missing image data"})
			},
			want: "Missing image data",
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>"))
			},
			want: "decode response",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := easyOCRServer(t, tt.handler)
			_, err := NewEasyOCRDetector(srv.URL, time.Second, nil).Detect(context.Background(), raw)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestEasyOCRDetector_BadImage(t *testing.T) {
	d := NewEasyOCRDetector("http://127.0.0.1:1", time.Second, nil)
	if _, err := d.Detect(context.Background(), []byte("nope")); err == nil {
		t.Error("Detect should fail before any request for undecodable bytes")
	}
}

func TestEasyOCRDetector_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := easyOCRServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := NewEasyOCRDetector(srv.URL, 0, nil).Detect(ctx, blankPNG(t, 10, 10))
	if err == nil {
		t.Fatal("Detect should fail when the context expires")
	}
	if ctx.Err() == nil {
		t.Error("context should have expired")
	}
}

func TestEasyOCRDetector_Health(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"healthy", http.StatusOK, `{"status":"healthy","message":"EasyOCR server is running"}`, false},
		{"no body", http.StatusOK, ``, false},
		{"degraded", http.StatusOK, `{"status":"loading"}`, true},
		{"down", http.StatusServiceUnavailable, ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := easyOCRServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			err := NewEasyOCRDetector(srv.URL, time.Second, nil).Health(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Health err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package scorecard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticDetector(obs []TextObservation, err error) Detector {
	return DetectorFunc(func(context.Context, []byte) ([]TextObservation, error) {
		return obs, err
	})
}

func TestReader_Read(t *testing.T) {
	r := NewReader(staticDetector(scenarioA(), nil), DefaultConfig(), quietLogger())

	res, err := r.Read(context.Background(), []byte("img"), "Smith")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res.Strategy != StrategyGrid || res.State != StateExtractionPartial {
		t.Errorf("strategy/state = %s/%s", res.Strategy, res.State)
	}
	if len(res.Trace) < 2 || res.Trace[0] != "state: idle -> detecting" {
		t.Errorf("trace should open with the detecting transition: %v", res.Trace)
	}
	joined := strings.Join(res.Trace, "\n")
	if !strings.Contains(joined, "state: detecting -> extracting") {
		t.Errorf("trace missing extracting transition:\n%s", joined)
	}
}

func TestReader_DetectionFailures(t *testing.T) {
	boom := errors.New("engine offline")
	tests := []struct {
		name     string
		detector Detector
		cause    error
	}{
		{"detector error", staticDetector(nil, boom), boom},
		{"no observations", staticDetector(nil, nil), nil},
		{"empty slice", staticDetector([]TextObservation{}, nil), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.detector, DefaultConfig(), quietLogger())
			res, err := r.Read(context.Background(), nil, "Smith")
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if res.State != StateDetectionFailed || res.Failure != FailureDetectionUnavailable {
				t.Errorf("state/failure = %s/%s", res.State, res.Failure)
			}
			if !errors.Is(res.Err(), ErrDetectionUnavailable) {
				t.Errorf("Err() = %v, want ErrDetectionUnavailable", res.Err())
			}
			if tt.cause != nil && !errors.Is(res.Err(), tt.cause) {
				t.Errorf("Err() should wrap %v", tt.cause)
			}
			if !res.NeedsManualEntry() {
				t.Error("detection failure should route to manual entry")
			}
			if err := res.RequestManualEntry(); err != nil {
				t.Errorf("RequestManualEntry: %v", err)
			}
		})
	}
}

func TestReader_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DetectionTimeout = 20 * time.Millisecond

	t.Run("detector honours context", func(t *testing.T) {
		d := DetectorFunc(func(ctx context.Context, _ []byte) ([]TextObservation, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		res, err := NewReader(d, cfg, quietLogger()).Read(context.Background(), nil, "Smith")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if res.Failure != FailureDetectionTimedOut {
			t.Errorf("failure = %s, want DETECTION_TIMED_OUT", res.Failure)
		}
		if !errors.Is(res.Err(), ErrDetectionTimedOut) {
			t.Errorf("Err() = %v, want ErrDetectionTimedOut", res.Err())
		}
	})

	t.Run("detector ignores context", func(t *testing.T) {
		release := make(chan struct{})
		t.Cleanup(func() { close(release) })
		d := DetectorFunc(func(context.Context, []byte) ([]TextObservation, error) {
			<-release
			return scenarioA(), nil
		})

		start := time.Now()
		res, err := NewReader(d, cfg, quietLogger()).Read(context.Background(), nil, "Smith")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if res.Failure != FailureDetectionTimedOut {
			t.Errorf("failure = %s, want DETECTION_TIMED_OUT", res.Failure)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("Read took %v, timeout not enforced", elapsed)
		}
	})
}

func TestReader_Cancellation(t *testing.T) {
	t.Run("cancelled during detection", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		d := DetectorFunc(func(dctx context.Context, _ []byte) ([]TextObservation, error) {
			cancel()
			<-dctx.Done()
			return nil, dctx.Err()
		})
		res, err := NewReader(d, DefaultConfig(), quietLogger()).Read(ctx, nil, "Smith")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if res != nil {
			t.Errorf("cancelled read returned a result: %+v", res)
		}
	})

	t.Run("cancelled before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		d := DetectorFunc(func(context.Context, []byte) ([]TextObservation, error) {
			called = true
			return nil, nil
		})
		res, err := NewReader(d, DefaultConfig(), quietLogger()).Read(ctx, nil, "Smith")
		if !errors.Is(err, context.Canceled) || res != nil {
			t.Errorf("Read = %v, %v; want nil, context.Canceled", res, err)
		}
		if called {
			t.Error("detector should not run on a cancelled context")
		}
	})
}

func TestReader_WithAligners(t *testing.T) {
	obs := cardWith([]TextObservation{nameAt("Smith", 0.30)}, scoreRow(repeat(4, 9), 0.30))
	r := NewReader(staticDetector(obs, nil), DefaultConfig(), nil).WithAligners(rowFallback{})

	res, err := r.Read(context.Background(), nil, "Smith")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res.Strategy != StrategyRowFallback {
		t.Errorf("strategy = %s, want row_fallback", res.Strategy)
	}
}

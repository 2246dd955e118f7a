package scorecard

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Detector turns an encoded image into text observations. Coordinates must be
// normalized to [0,1] with the origin at the bottom-left.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]TextObservation, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, image []byte) ([]TextObservation, error)

func (f DetectorFunc) Detect(ctx context.Context, image []byte) ([]TextObservation, error) {
	return f(ctx, image)
}

// Reader runs detection and extraction for one image at a time.
type Reader struct {
	detector Detector
	selector *Selector
	cfg      Config
	logger   *slog.Logger
}

// NewReader returns a Reader over d. A nil logger uses slog.Default.
func NewReader(d Detector, cfg Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{detector: d, selector: NewSelector(), cfg: cfg, logger: logger}
}

// WithAligners replaces the strategy chain.
func (r *Reader) WithAligners(aligners ...Aligner) *Reader {
	r.selector = NewSelector(aligners...)
	return r
}

type detection struct {
	obs []TextObservation
	err error
}

// Read detects text in image and extracts the player's scores.
//
// Detection is bounded by Config.DetectionTimeout; expiry yields a
// DetectionFailed result with FailureDetectionTimedOut. If ctx itself is
// cancelled Read returns ctx.Err() and no result. Every other outcome,
// including failures, is reported through the result.
func (r *Reader) Read(ctx context.Context, image []byte, player string) (*ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tr := &Trace{}
	m := newMachine(StateIdle, tr)
	m.to(StateDetecting)

	timeout := r.cfg.DetectionTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().DetectionTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan detection, 1)
	go func() {
		obs, err := r.detector.Detect(dctx, image)
		done <- detection{obs: obs, err: err}
	}()

	var d detection
	select {
	case d = <-done:
	case <-dctx.Done():
		d.err = dctx.Err()
	}
	if err := ctx.Err(); err != nil {
		r.logger.Debug("read cancelled", "player", player, "error", err)
		return nil, err
	}
	elapsed := time.Since(start)

	if d.err != nil || len(d.obs) == 0 {
		code := FailureDetectionUnavailable
		if errors.Is(d.err, context.DeadlineExceeded) {
			code = FailureDetectionTimedOut
		}
		if d.err != nil {
			tr.Addf("detect: %v", d.err)
		} else {
			tr.Addf("detect: no observations")
		}
		m.to(StateDetectionFailed)
		res := &ExtractionResult{
			Scores:     []Score{},
			Confidence: []Confidence{},
			Strategy:   StrategyNone,
			State:      m.state,
			Failure:    code,
			Trace:      tr.Lines(),
			requested:  player,
			cause:      d.err,
		}
		r.logger.Warn("detection failed", "player", player, "failure", code, "elapsed", elapsed, "error", d.err)
		return res, nil
	}

	tr.Addf("detect: %d observations in %s", len(d.obs), elapsed.Round(time.Millisecond))
	m.to(StateExtracting)
	res := r.selector.extract(d.obs, player, r.cfg, tr, m)
	r.logger.Info("scorecard read",
		"player", player,
		"strategy", res.Strategy,
		"valid_scores", res.ValidScores,
		"state", res.State,
		"elapsed", elapsed,
	)
	return res, nil
}

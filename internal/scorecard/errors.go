package scorecard

import (
	"errors"
	"fmt"
)

// FailureCode classifies why an extraction did not fully succeed.
type FailureCode string

const (
	FailureNone                 FailureCode = ""
	FailureDetectionUnavailable FailureCode = "DETECTION_UNAVAILABLE"
	FailureDetectionTimedOut    FailureCode = "DETECTION_TIMED_OUT"
	FailurePlayerNotFound       FailureCode = "PLAYER_NOT_FOUND"
	FailureNoScoresDetected     FailureCode = "NO_SCORES_DETECTED"
	FailurePartialExtraction    FailureCode = "PARTIAL_EXTRACTION"
)

// Sentinels for errors.Is.
var (
	ErrDetectionUnavailable = &ExtractionError{Code: FailureDetectionUnavailable}
	ErrDetectionTimedOut    = &ExtractionError{Code: FailureDetectionTimedOut}
	ErrPlayerNotFound       = &ExtractionError{Code: FailurePlayerNotFound}
	ErrNoScoresDetected     = &ExtractionError{Code: FailureNoScoresDetected}
	ErrPartialExtraction    = &ExtractionError{Code: FailurePartialExtraction}
)

// ExtractionError carries a FailureCode plus context.
type ExtractionError struct {
	Code   FailureCode
	Player string
	Cause  error
}

func (e *ExtractionError) Error() string {
	msg := string(e.Code)
	switch e.Code {
	case FailureDetectionUnavailable:
		msg += ": text detection unavailable"
	case FailureDetectionTimedOut:
		msg += ": text detection timed out"
	case FailurePlayerNotFound:
		msg += fmt.Sprintf(": player %q not found on card", e.Player)
	case FailureNoScoresDetected:
		msg += fmt.Sprintf(": no scores detected for %q", e.Player)
	case FailurePartialExtraction:
		msg += fmt.Sprintf(": incomplete scores for %q", e.Player)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// Is matches any ExtractionError with the same code.
func (e *ExtractionError) Is(target error) bool {
	var t *ExtractionError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newExtractionError(code FailureCode, player string, cause error) *ExtractionError {
	return &ExtractionError{Code: code, Player: player, Cause: cause}
}

package export

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks ffmpeg failures (non-zero exit, spawn failure).
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks per-job input problems (missing segments).
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks submission-time problems; no job is scheduled.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks per-job missing inputs (no manifest in the capture).
	ErrNotFound = errors.New("not found")

	// errCancelled propagates a cooperative stop out of the pipeline. It is
	// classified as Cancelled, never Failed.
	errCancelled = errors.New("export cancelled")
)

// wrap builds an error carrying stage context, tagged with one of the
// sentinel markers above for later classification.
func wrap(marker error, stage, message string, err error) error {
	detail := stage
	if message = strings.TrimSpace(message); message != "" {
		detail += ": " + message
	}
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

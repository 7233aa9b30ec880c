package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation covers missing credentials, voices, or decks. Aborts a run
	// before any slide work starts.
	ErrValidation = errors.New("validation error")
	// ErrTransient covers network-level failures that were retried and still failed.
	ErrTransient = errors.New("transient failure")
	// ErrAPI covers non-2xx final responses from the synthesis service.
	ErrAPI = errors.New("api error")
	// ErrProcess covers transcoder or host-automation call failures.
	ErrProcess = errors.New("process error")
	// ErrFatalHost covers document-open failures that abort the entire run.
	ErrFatalHost = errors.New("fatal host error")
)

// Wrap builds an error message that includes slide/stage context while tagging
// it with the provided marker for later outcome classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the run rather than a single slide.
func IsFatal(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrFatalHost)
}

// Kind returns a short classification label used in manifests and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrFatalHost):
		return "fatal_host"
	case errors.Is(err, ErrAPI):
		return "api"
	case errors.Is(err, ErrProcess):
		return "process"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

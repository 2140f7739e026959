package annotation

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidText = "INVALID_TEXT"
	CodeTextTooLong = "TEXT_TOO_LONG"
)

// ErrArchiveDisabled is returned by Export when no object storage is configured.
var ErrArchiveDisabled = errors.New("annotation archive not configured")

// ValidationError reports input the caller has to fix.
type ValidationError struct {
	Code         string
	Reason       string
	MaxLength    int
	ActualLength int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid annotation request: %s", e.Reason)
}

// Details is the client-facing context for the error.
func (e *ValidationError) Details() map[string]any {
	if e.Code == CodeTextTooLong {
		return map[string]any{"maxLength": e.MaxLength, "actualLength": e.ActualLength}
	}
	return map[string]any{"error": e.Reason}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

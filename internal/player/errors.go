package player

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when no decoder handles the source.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// LoadError reports a source that could not be opened or decoded.
type LoadError struct {
	URI string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", redact(e.URI), e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// redact keeps log lines short for inline data: sources.
func redact(uri string) string {
	const maxLen = 96
	if len(uri) <= maxLen {
		return uri
	}
	return uri[:maxLen] + "…"
}

package llm

import "errors"

var ErrNotConfigured = errors.New("text generation is not configured")

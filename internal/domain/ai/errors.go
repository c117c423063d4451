package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrUnavailable indicates the backend could not produce a narrative after
// retries; the caller received the degraded fallback text instead.
var ErrUnavailable = errors.New("ai backend unavailable")

package ai

import "errors"

// Provider failures. Adapters translate vendor errors into exactly one of these.
var (
	// ErrNotConfigured means no API credential was supplied; no request is made.
	ErrNotConfigured = errors.New("ai provider not configured")
	// ErrUnauthorized indicates the provider rejected the credential (HTTP 401).
	ErrUnauthorized = errors.New("ai provider rejected api key")
	// ErrRateLimited indicates the provider returned a quota/limit error (HTTP 429).
	ErrRateLimited = errors.New("ai provider rate limit exceeded")
	// ErrForbidden indicates the key lacks permission (HTTP 403).
	ErrForbidden = errors.New("ai provider access forbidden")
	// ErrProvider covers every other provider or transport failure, including timeouts.
	ErrProvider = errors.New("ai provider error")
	// ErrMalformedResponse means the completion was not {"annotations": [string...]}.
	ErrMalformedResponse = errors.New("ai provider returned malformed response")
	// ErrEmptyResponse means the completion carried no content.
	ErrEmptyResponse = errors.New("ai provider returned empty response")
)

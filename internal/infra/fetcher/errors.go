package fetcher

import "errors"

// Sentinel errors for content fetching. Callers fall back to the feed
// content on any of these; they exist so logs and tests can tell the
// failure modes apart.
var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrPrivateIP        = errors.New("URL resolves to private IP")
	ErrTimeout          = errors.New("content fetch timed out")
	ErrBodyTooLarge     = errors.New("response body too large")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrExtractionFailed = errors.New("content extraction failed")
)

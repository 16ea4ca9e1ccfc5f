package review

import "errors"

// Per-request failures. The handler maps each to a status and a short message.
var (
	ErrNoFileProvided       = errors.New("no file provided")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUnreadableDocument   = errors.New("document has no readable text")
	ErrExtractionFailed     = errors.New("text extraction failed")
	ErrUpstreamFailure      = errors.New("analysis service failed")
)

const (
	ErrorCodeValidation = "validation_error"
	ErrorCodeTooLarge   = "payload_too_large"
	ErrorCodeExtraction = "extraction_error"
	ErrorCodeUpstream   = "upstream_error"
)

// IsClientError reports whether err is the caller's fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoFileProvided) ||
		errors.Is(err, ErrUnsupportedMediaType) ||
		errors.Is(err, ErrPayloadTooLarge) ||
		errors.Is(err, ErrUnreadableDocument)
}

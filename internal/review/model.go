package review

import (
	"mime"
	"strings"
	"time"
)

// Upload is the file received in a single request.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

// MediaType returns the declared type without parameters, lowercased.
func (u Upload) MediaType() string {
	raw := strings.TrimSpace(u.ContentType)
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
	}
	return mediaType
}

// Result is the outcome of a successful review.
type Result struct {
	Analysis    string
	ResumeChars int
	Truncated   bool
	Duration    time.Duration
}

// Limits bounds what a single review may consume.
type Limits struct {
	MaxUploadBytes  int64
	MaxResumeChars  int
	MinResumeChars  int
	AnalysisTimeout time.Duration
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxUploadBytes:  5 << 20,
		MaxResumeChars:  8000,
		MinResumeChars:  50,
		AnalysisTimeout: 90 * time.Second,
	}
}

// Truncate returns the first max characters of text.
func Truncate(text string, max int) (string, bool) {
	if max <= 0 {
		return text, false
	}
	count := 0
	for i := range text {
		if count == max {
			return text[:i], true
		}
		count++
	}
	return text, false
}

package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"resume-reviewer/internal/extract"
	"resume-reviewer/internal/llm"
	"resume-reviewer/internal/shared/metrics"
	"resume-reviewer/internal/shared/telemetry"
)

// Service runs one upload through extraction and analysis. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	Extractor extract.Extractor
	Analyzer  llm.Analyzer
	Limits    Limits
}

// NewService constructs a Service, filling unset limits with defaults.
func NewService(extractor extract.Extractor, analyzer llm.Analyzer, limits Limits) *Service {
	def := DefaultLimits()
	if limits.MaxUploadBytes <= 0 {
		limits.MaxUploadBytes = def.MaxUploadBytes
	}
	if limits.MaxResumeChars <= 0 {
		limits.MaxResumeChars = def.MaxResumeChars
	}
	if limits.MinResumeChars < 0 {
		limits.MinResumeChars = def.MinResumeChars
	}
	if limits.AnalysisTimeout <= 0 {
		limits.AnalysisTimeout = def.AnalysisTimeout
	}
	return &Service{Extractor: extractor, Analyzer: analyzer, Limits: limits}
}

// Review validates the upload, extracts its text, and returns the analysis.
func (s *Service) Review(ctx context.Context, up Upload) (res Result, err error) {
	start := time.Now()
	metrics.IncReviewStarted()
	defer func() {
		res.Duration = time.Since(start)
		metrics.ObserveReviewDurationMs(float64(res.Duration.Microseconds()) / 1000.0)
		switch {
		case err == nil:
			metrics.IncReviewCompleted()
		case IsClientError(err):
			metrics.IncReviewRejected()
		default:
			metrics.IncReviewFailed()
		}
	}()

	if err := s.Validate(up); err != nil {
		return Result{}, err
	}

	reqID := llm.RequestIDFromContext(ctx)
	if !extract.IsPDF(up.Data) {
		telemetry.Warn("review.content_mismatch", map[string]any{
			"request_id":   reqID,
			"file_name":    up.FileName,
			"content_type": up.ContentType,
		})
	}

	raw, err := s.extract(ctx, up.Data)
	if err != nil {
		telemetry.Error("review.extract_failed", map[string]any{
			"request_id": reqID,
			"file_name":  up.FileName,
			"size":       up.Size,
			"err":        err,
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrExtractionFailed, ctxErr)
		}
		return Result{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	text := strings.TrimSpace(raw)
	chars := utf8.RuneCountInString(text)
	if chars == 0 || chars < s.Limits.MinResumeChars {
		return Result{ResumeChars: chars}, fmt.Errorf("%w: %d characters", ErrUnreadableDocument, chars)
	}

	clipped, truncated := Truncate(text, s.Limits.MaxResumeChars)
	prompt := llm.BuildReviewPrompt(clipped)

	analysis, err := s.analyze(ctx, prompt)
	if err != nil {
		telemetry.Error("review.analysis_failed", map[string]any{
			"request_id": reqID,
			"err":        err,
		})
		return Result{ResumeChars: chars, Truncated: truncated}, fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}

	telemetry.Info("review.complete", map[string]any{
		"request_id":   reqID,
		"resume_chars": chars,
		"truncated":    truncated,
		"result_chars": utf8.RuneCountInString(analysis),
	})
	return Result{Analysis: analysis, ResumeChars: chars, Truncated: truncated}, nil
}

// Validate applies the presence, media-type and size checks.
func (s *Service) Validate(up Upload) error {
	if up.Data == nil && up.FileName == "" {
		return ErrNoFileProvided
	}
	if err := s.ValidateDeclared(up); err != nil {
		return err
	}
	if len(up.Data) == 0 {
		return fmt.Errorf("%w: empty file", ErrUnreadableDocument)
	}
	return nil
}

// ValidateDeclared checks what the client declared about the file before its
// body is read.
func (s *Service) ValidateDeclared(up Upload) error {
	if mt := up.MediaType(); mt != extract.MimePDF {
		return fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mt)
	}
	size := up.Size
	if n := int64(len(up.Data)); n > size {
		size = n
	}
	if size > s.Limits.MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, size, s.Limits.MaxUploadBytes)
	}
	return nil
}

type extractResult struct {
	text string
	err  error
}

// extract runs the extractor so that a cancelled request stops waiting on it.
func (s *Service) extract(ctx context.Context, data []byte) (string, error) {
	if s.Extractor == nil {
		return "", errors.New("text extractor not configured")
	}
	done := make(chan extractResult, 1)
	go func() {
		text, err := s.Extractor.Extract(ctx, data)
		done <- extractResult{text: text, err: err}
	}()
	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Service) analyze(ctx context.Context, prompt string) (string, error) {
	if s.Analyzer == nil {
		return "", errors.New("analysis service not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.Limits.AnalysisTimeout)
	defer cancel()

	out, err := s.Analyzer.Analyze(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", llm.ErrMalformedResponse
	}
	return out, nil
}

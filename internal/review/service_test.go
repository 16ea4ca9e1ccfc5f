package review

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resume-reviewer/internal/extract"
	"resume-reviewer/internal/llm"
)

type fakeExtractor struct {
	text  string
	err   error
	calls atomic.Int32
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	f.calls.Add(1)
	return f.text, f.err
}

type recordingAnalyzer struct {
	mu      sync.Mutex
	prompts []string
	out     string
	err     error
}

func (r *recordingAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	r.mu.Lock()
	r.prompts = append(r.prompts, prompt)
	r.mu.Unlock()
	return r.out, r.err
}

func (r *recordingAnalyzer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prompts)
}

func pdfUpload(data []byte) Upload {
	return Upload{FileName: "resume.pdf", ContentType: extract.MimePDF, Size: int64(len(data)), Data: data}
}

var sampleResume = "Jane Doe\nSenior Backend Engineer\nBuilt payment systems in Go serving 2M requests per day."

func TestReviewReturnsAnalysis(t *testing.T) {
	ex := &fakeExtractor{text: "  " + sampleResume + "\n\n"}
	an := &recordingAnalyzer{out: "1. Overall Resume Score: 7/10"}
	svc := NewService(ex, an, DefaultLimits())

	res, err := svc.Review(context.Background(), pdfUpload([]byte("%PDF-1.4 fake")))
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if res.Analysis != an.out {
		t.Fatalf("expected analysis passed through, got %q", res.Analysis)
	}
	if res.Truncated {
		t.Fatalf("did not expect truncation")
	}
	if res.ResumeChars != len(sampleResume) {
		t.Fatalf("expected %d chars, got %d", len(sampleResume), res.ResumeChars)
	}
	if !strings.Contains(an.prompts[0], "\"\"\"\n"+sampleResume+"\n\"\"\"") {
		t.Fatalf("expected trimmed text between delimiters, got %q", an.prompts[0])
	}
}

func TestReviewSendsOnlyFirstMaxChars(t *testing.T) {
	head := strings.Repeat("x", 8000)
	ex := &fakeExtractor{text: head + "TAIL-MARKER"}
	an := &recordingAnalyzer{out: "ok"}
	svc := NewService(ex, an, DefaultLimits())

	res, err := svc.Review(context.Background(), pdfUpload([]byte("%PDF-1.4")))
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !res.Truncated {
		t.Fatalf("expected truncated result")
	}
	prompt := an.prompts[0]
	if strings.Contains(prompt, "TAIL-MARKER") {
		t.Fatalf("text past the limit reached the prompt")
	}
	if !strings.Contains(prompt, "\"\"\"\n"+head+"\n\"\"\"") {
		t.Fatalf("expected exactly the first 8000 characters between delimiters")
	}
}

func TestReviewRejectsInsufficientText(t *testing.T) {
	for _, text := range []string{"", "   \n\t ", "too short"} {
		ex := &fakeExtractor{text: text}
		an := &recordingAnalyzer{out: "ok"}
		svc := NewService(ex, an, DefaultLimits())

		_, err := svc.Review(context.Background(), pdfUpload([]byte("%PDF-1.4")))
		if !errors.Is(err, ErrUnreadableDocument) {
			t.Fatalf("text %q: expected ErrUnreadableDocument, got %v", text, err)
		}
		if an.count() != 0 {
			t.Fatalf("text %q: analyzer should not be called", text)
		}
	}
}

func TestReviewValidationSkipsExtraction(t *testing.T) {
	cases := []struct {
		name string
		up   Upload
		want error
	}{
		{"missing", Upload{}, ErrNoFileProvided},
		{"not pdf", Upload{FileName: "cv.docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Size: 10, Data: []byte("PK..")}, ErrUnsupportedMediaType},
		{"no type", Upload{FileName: "cv.pdf", Size: 10, Data: []byte("%PDF-1.4")}, ErrUnsupportedMediaType},
		{"too large", Upload{FileName: "cv.pdf", ContentType: extract.MimePDF, Size: 6 << 20, Data: []byte("%PDF-1.4")}, ErrPayloadTooLarge},
		{"empty", Upload{FileName: "cv.pdf", ContentType: extract.MimePDF, Data: []byte{}}, ErrUnreadableDocument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ex := &fakeExtractor{text: sampleResume}
			an := &recordingAnalyzer{out: "ok"}
			svc := NewService(ex, an, DefaultLimits())

			_, err := svc.Review(context.Background(), tc.up)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if ex.calls.Load() != 0 {
				t.Fatalf("extractor should not run")
			}
			if an.count() != 0 {
				t.Fatalf("analyzer should not run")
			}
		})
	}
}

func TestReviewExtractionFailure(t *testing.T) {
	ex := &fakeExtractor{err: extract.ErrUnreadableDocument}
	an := &recordingAnalyzer{out: "ok"}
	svc := NewService(ex, an, DefaultLimits())

	_, err := svc.Review(context.Background(), pdfUpload([]byte("%PDF-1.4")))
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if IsClientError(err) {
		t.Fatalf("extraction failure should not be a client error")
	}
	if an.count() != 0 {
		t.Fatalf("analyzer should not run")
	}
}

func TestReviewUpstreamFailure(t *testing.T) {
	ex := &fakeExtractor{text: sampleResume}
	an := &recordingAnalyzer{err: llm.ErrQuotaExceeded}
	svc := NewService(ex, an, DefaultLimits())

	res, err := svc.Review(context.Background(), pdfUpload([]byte("%PDF-1.4")))
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
	if !errors.Is(err, llm.ErrQuotaExceeded) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
	if res.Analysis != "" {
		t.Fatalf("expected no analysis on failure")
	}
}

func TestReviewEmptyAnalysisIsFailure(t *testing.T) {
	ex := &fakeExtractor{text: sampleResume}
	an := &recordingAnalyzer{out: "  \n"}
	svc := NewService(ex, an, DefaultLimits())

	_, err := svc.Review(context.Background(), pdfUpload([]byte("%PDF-1.4")))
	if !errors.Is(err, llm.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestReviewAnalysisTimeout(t *testing.T) {
	ex := &fakeExtractor{text: sampleResume}
	blocking := llm.AnalyzerFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	limits := DefaultLimits()
	limits.AnalysisTimeout = 20 * time.Millisecond
	svc := NewService(ex, blocking, limits)

	start := time.Now()
	_, err := svc.Review(context.Background(), pdfUpload([]byte("%PDF-1.4")))
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not honoured, took %s", elapsed)
	}
}

func TestReviewStopsWaitingOnCancelledExtraction(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := extractorFunc(func(ctx context.Context, data []byte) (string, error) {
		<-release
		return sampleResume, nil
	})
	svc := NewService(slow, &recordingAnalyzer{out: "ok"}, DefaultLimits())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Review(ctx, pdfUpload([]byte("%PDF-1.4")))
	if !errors.Is(err, ErrExtractionFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cancelled extraction, got %v", err)
	}
}

type extractorFunc func(ctx context.Context, data []byte) (string, error)

func (f extractorFunc) Extract(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

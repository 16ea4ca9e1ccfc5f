package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"resume-reviewer/internal/extract/extracttest"
)

func TestDryRunPrintsPrompt(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "resume.pdf")
	pdf := extracttest.PDF("Jane Doe\nSenior Backend Engineer at Example Corp\nBuilt payment systems in Go")
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	viper.Set("resume", path)
	viper.Set("dry-run", true)
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	if err := runReview(context.Background(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Senior Backend Engineer") {
		t.Fatalf("expected resume text in prompt, got %q", out.String())
	}
	if !strings.Contains(out.String(), "ATS Compatibility Score") {
		t.Fatalf("expected review prompt sections, got %q", out.String())
	}
}

func TestRequiresResumeFlag(t *testing.T) {
	viper.Set("resume", "")
	t.Cleanup(viper.Reset)

	if err := runReview(context.Background(), &bytes.Buffer{}); err == nil {
		t.Fatal("expected error without --resume")
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := contentTypeFor("cv.PDF"); got != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", got)
	}
	if got := contentTypeFor("cv"); got != "application/octet-stream" {
		t.Fatalf("expected octet-stream fallback, got %q", got)
	}
}

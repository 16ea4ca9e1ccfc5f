package llm

import (
	"strings"
	"testing"
)

func TestBuildReviewPromptHasSixSections(t *testing.T) {
	prompt := BuildReviewPrompt("Jane Doe")

	sections := []string{
		"1. Overall Score (out of 10)",
		"2. Strengths",
		"3. Weaknesses",
		"4. Specific Improvements",
		"5. Missing Sections",
		"6. ATS Compatibility Score (out of 10)",
	}
	for _, s := range sections {
		if !strings.Contains(prompt, s) {
			t.Fatalf("prompt missing section %q", s)
		}
	}
}

func TestBuildReviewPromptInterpolatesVerbatim(t *testing.T) {
	text := "Go <dev> & \"ops\"\n{{RESUME_TEXT}} $HOME %s"
	prompt := BuildReviewPrompt(text)

	want := "Resume:\n\"\"\"\n" + text + "\n\"\"\""
	if !strings.Contains(prompt, want) {
		t.Fatalf("expected resume text between delimiters, got:\n%s", prompt)
	}
	if strings.Count(prompt, "{{RESUME_TEXT}}") != 1 {
		t.Fatalf("expected placeholder in resume text to be left alone")
	}
}

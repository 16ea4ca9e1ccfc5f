package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/review.txt
var reviewTemplate string

const resumePlaceholder = "{{RESUME_TEXT}}"

// BuildReviewPrompt places resumeText verbatim between the template's triple-quote delimiters.
func BuildReviewPrompt(resumeText string) string {
	replacer := strings.NewReplacer(resumePlaceholder, resumeText)
	return replacer.Replace(reviewTemplate)
}

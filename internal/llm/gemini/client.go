package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-reviewer/internal/llm"
	"resume-reviewer/internal/shared/telemetry"
)

const defaultModel = "gemini-2.5-flash"

// contentGenerator is the subset of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Analyzer on the Gemini API.
type Client struct {
	models contentGenerator
	model  string
}

// NewClient creates a client for the Gemini API backend.
// timeout bounds each HTTP exchange; zero leaves the SDK default.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if timeout > 0 {
		cfg.HTTPOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newClient(client.Models, model), nil
}

func newClient(models contentGenerator, model string) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{models: models, model: model}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Analyze sends the prompt and returns the concatenated text of the response.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.models == nil {
		return "", errors.New("gemini client is not initialized")
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classify(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked prompt (%s): %w", resp.PromptFeedback.BlockReason, llm.ErrMalformedResponse)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// Only the first candidate with content is used.
		if builder.Len() > 0 {
			break
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", fmt.Errorf("gemini returned empty response: %w", llm.ErrMalformedResponse)
	}

	logUsage(ctx, c.model, resp.UsageMetadata)
	return output, nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini api error %d %s: %s: %w", apiErr.Code, apiErr.Status, apiErr.Message, llm.ClassifyStatus(apiErr.Code))
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gemini request: %w", err)
	}
	if llm.IsTransient(err) {
		return fmt.Errorf("gemini request: %v: %w", err, llm.ErrServiceUnavailable)
	}
	return fmt.Errorf("gemini request: %w", err)
}

func logUsage(ctx context.Context, model string, usage *genai.GenerateContentResponseUsageMetadata) {
	fields := map[string]any{
		"model":      model,
		"request_id": llm.RequestIDFromContext(ctx),
	}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokenCount
		fields["completion_tokens"] = usage.CandidatesTokenCount
		fields["total_tokens"] = usage.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Analyzer = (*Client)(nil)

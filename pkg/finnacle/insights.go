package finnacle

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// generateInsightFn is a function variable so tests can stub the upstream
// model call.
var generateInsightFn = generateInsightImpl

// GenerateInsight answers a free-form prompt with the configured Gemini
// model. It carries no user data; the caller supplies the full prompt.
func (c *Core) GenerateInsight(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", NewError(ErrCodeInvalidInput, "prompt is required")
	}
	if c.ai.GeminiAPIKey == "" {
		return "", NewError(ErrCodeInternal, "insights model is not configured")
	}
	model := c.ai.GeminiModel
	if model == "" {
		model = defaultGeminiModel
	}

	answer, err := generateInsightFn(ctx, c.ai.GeminiAPIKey, model, prompt)
	if err != nil {
		return "", WrapError(ErrCodeInternal, "generate insight", err)
	}
	return answer, nil
}

func generateInsightImpl(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}

	response, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(response.Text())
	if content == "" {
		return "", errors.New("model returned empty response")
	}
	return content, nil
}

package finnacle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

const (
	chatRequestTimeout = 2 * time.Minute
	chatMaxTokens      = 1024

	chatSystemPrompt = "You are a personal finance assistant. " +
		"Answer the user's question using only the finance summary provided. " +
		"Keep answers short and crisp."
)

// ChatAnswer is the assistant's reply to a finance question.
type ChatAnswer struct {
	Response string `json:"response"`
}

// chatCompletionFn is a function variable so tests can stub the provider call.
var chatCompletionFn = chatCompletionImpl

// ChatWithFinances answers a question grounded in the owner's one-year
// finance summary. The summary is serialized into the prompt; the model
// never sees raw store records.
func (c *Core) ChatWithFinances(ctx context.Context, ownerID, question string) (ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return ChatAnswer{}, NewError(ErrCodeInvalidInput, "question is required")
	}

	summary, err := c.FinanceSummary(ownerID, time.Time{}, 0)
	if err != nil {
		return ChatAnswer{}, err
	}
	prompt, err := buildChatPrompt(summary, question)
	if err != nil {
		return ChatAnswer{}, WrapError(ErrCodeInternal, "build chat prompt", err)
	}

	ctx, cancel := context.WithTimeout(ctx, chatRequestTimeout)
	defer cancel()
	answer, err := chatCompletionFn(ctx, c.ai, chatSystemPrompt, prompt)
	if err != nil {
		return ChatAnswer{}, WrapError(ErrCodeInternal, "chat completion", err)
	}
	return ChatAnswer{Response: strings.TrimSpace(answer)}, nil
}

func buildChatPrompt(summary FinanceSummary, question string) (string, error) {
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("Here is the user's finance summary for the past year:\n")
	sb.Write(payload)
	sb.WriteString("\n\nUser's question:\n\"")
	sb.WriteString(question)
	sb.WriteString("\"")
	return sb.String(), nil
}

func chatCompletionImpl(ctx context.Context, opts AIOptions, system, prompt string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", "openai":
		return openAICompletion(ctx, opts, system, prompt)
	case "anthropic":
		return anthropicCompletion(ctx, opts, system, prompt)
	case "gemini":
		return geminiCompletion(ctx, opts, system, prompt)
	default:
		return "", fmt.Errorf("unknown ai provider: %s", opts.Provider)
	}
}

// openAICompletion also covers OpenAI-compatible servers (e.g. a local
// Ollama under /v1) via the configurable base URL.
func openAICompletion(ctx context.Context, opts AIOptions, system, prompt string) (string, error) {
	if opts.Model == "" {
		return "", errors.New("ai model is not configured")
	}
	clientOpts := []openaioption.RequestOption{}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, openaioption.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, openaioption.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("model returned empty response")
	}
	return content, nil
}

func anthropicCompletion(ctx context.Context, opts AIOptions, system, prompt string) (string, error) {
	if opts.APIKey == "" {
		return "", errors.New("anthropic api key is not configured")
	}
	if opts.Model == "" {
		return "", errors.New("ai model is not configured")
	}
	clientOpts := []anthropicoption.RequestOption{anthropicoption.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, anthropicoption.WithBaseURL(opts.BaseURL))
	}
	client := anthropic.NewClient(clientOpts...)

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(opts.Model),
		MaxTokens: chatMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range message.Content {
		sb.WriteString(block.Text)
	}
	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", errors.New("model returned empty response")
	}
	return content, nil
}

func geminiCompletion(ctx context.Context, opts AIOptions, system, prompt string) (string, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = opts.GeminiAPIKey
	}
	if apiKey == "" {
		return "", errors.New("gemini api key is not configured")
	}
	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}
	response, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	})
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(response.Text())
	if content == "" {
		return "", errors.New("model returned empty response")
	}
	return content, nil
}

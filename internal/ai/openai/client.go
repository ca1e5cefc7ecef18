package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/spigell/ats-matcher/internal/ai"
)

const (
	ProviderName = "openai"
	defaultModel = goopenai.GPT4oMini
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

// Generator sends prompts to the OpenAI chat completions endpoint.
type Generator struct {
	client      chatCompleter
	modelName   string
	temperature float32
}

func NewGenerator(cfg Config) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &ai.ConfigurationError{Provider: ProviderName, Reason: "api key is required"}
	}

	clientCfg := goopenai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return newGenerator(goopenai.NewClientWithConfig(clientCfg), cfg.Model, cfg.Temperature), nil
}

func newGenerator(client chatCompleter, model string, temperature float32) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if temperature <= 0 {
		temperature = ai.DefaultTemperature
	}
	return &Generator{client: client, modelName: model, temperature: temperature}
}

func (g *Generator) GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("openai generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if systemInstruction = strings.TrimSpace(systemInstruction); systemInstruction != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: systemInstruction})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: prompt})

	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       g.modelName,
		Messages:    messages,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

func (g *Generator) Provider() string {
	return ProviderName
}

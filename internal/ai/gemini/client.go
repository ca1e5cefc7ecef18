package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/ats-matcher/internal/ai"
	"google.golang.org/genai"
)

const (
	ProviderName = "gemini"
	defaultModel = "gemini-2.5-flash"
)

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models      contentModels
	modelName   string
	temperature float32
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &ai.ConfigurationError{Provider: ProviderName, Reason: "api key is required"}
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, cfg.Model, cfg.Temperature), nil
}

func newGenerator(models contentModels, model string, temperature float32) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if temperature <= 0 {
		temperature = ai.DefaultTemperature
	}
	return &Generator{models: models, modelName: model, temperature: temperature}
}

// GenerateContent sends the prompt to Gemini and returns the concatenated textual response.
func (g *Generator) GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if systemInstruction = strings.TrimSpace(systemInstruction); systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
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
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
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

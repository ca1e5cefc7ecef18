package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/ats-matcher/internal/ai"
	"google.golang.org/genai"
)

type fakeModels struct {
	model  string
	config *genai.GenerateContentConfig
	prompt string
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeneratorGenerateContent(t *testing.T) {
	t.Parallel()

	fake := &fakeModels{resp: textResponse(" {\"overallScore\": ", "", "87} ")}
	gen := newGenerator(fake, "", 0)

	out, err := gen.GenerateContent(context.Background(), ai.SystemInstruction, "score this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "{\"overallScore\":\n87}" {
		t.Fatalf("unexpected output %q", out)
	}
	if fake.model != defaultModel {
		t.Fatalf("expected default model, got %s", fake.model)
	}
	if fake.prompt != "score this" {
		t.Fatalf("unexpected prompt %q", fake.prompt)
	}
	if fake.config.Temperature == nil || *fake.config.Temperature != ai.DefaultTemperature {
		t.Fatalf("expected default temperature")
	}
	if fake.config.SystemInstruction == nil || fake.config.SystemInstruction.Parts[0].Text != ai.SystemInstruction {
		t.Fatalf("expected system instruction to be set")
	}
}

func TestGeneratorErrors(t *testing.T) {
	t.Parallel()

	apiErr := errors.New("quota exceeded")
	gen := newGenerator(&fakeModels{err: apiErr}, "gemini-pro", 0.5)
	if _, err := gen.GenerateContent(context.Background(), "", "prompt"); !errors.Is(err, apiErr) {
		t.Fatalf("expected wrapped api error, got %v", err)
	}

	empty := newGenerator(&fakeModels{resp: textResponse("  ")}, "", 0)
	if _, err := empty.GenerateContent(context.Background(), "", "prompt"); err == nil {
		t.Fatalf("expected error for empty response")
	}

	if _, err := empty.GenerateContent(context.Background(), "", "   "); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(context.Background(), Config{APIKey: "  "})
	var cfgErr *ai.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

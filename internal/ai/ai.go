package ai

import (
	"context"
)

const (
	// SystemInstruction frames every scoring request.
	SystemInstruction = "You are a skilled HR analyst evaluating job candidate matches."
	// DefaultTemperature keeps model output close to deterministic.
	DefaultTemperature float32 = 0.3
)

// Generator is a text-generation backend.
type Generator interface {
	GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error)
	Model() string
	Provider() string
}

package provider

import (
	"context"
	"fmt"
	"time"
)

// MockGenerator produces simulated responses for development and tests.
type MockGenerator struct {
	// Delay simulates backend latency. Zero means respond immediately.
	Delay time.Duration
}

// NewMockGenerator creates a new mock generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Name returns the generator identifier.
func (g *MockGenerator) Name() string { return "mock" }

// DisplayName returns the human-friendly name.
func (g *MockGenerator) DisplayName() string { return "Mock (Simulated)" }

// Available always returns true for the mock generator.
func (g *MockGenerator) Available() bool { return true }

// Generate returns a canned response echoing a prompt fragment.
func (g *MockGenerator) Generate(ctx context.Context, prompt string, maxSentences int) (string, error) {
	if g.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", &GenerationError{Provider: g.Name(), Message: "canceled", Err: ctx.Err()}
		case <-time.After(g.Delay):
		}
	}

	return fmt.Sprintf("Simulated response to: %s...", truncate(prompt, 50)), nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

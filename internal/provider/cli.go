package provider

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single generation call when the config does not
// set one.
const DefaultTimeout = 5 * time.Minute

// Config holds the settings for a CLI-backed generator.
type Config struct {
	Name        string
	DisplayName string
	Command     string
	Args        []string
	Model       string
	Timeout     time.Duration
}

// CLIGenerator shells out to an installed AI CLI (claude, gemini, codex,
// or any tool that accepts a prompt argument and prints the completion).
type CLIGenerator struct {
	name        string
	displayName string
	command     string
	args        []string
	model       string
	timeout     time.Duration
}

// NewCLIGenerator creates a CLI-backed generator from config.
func NewCLIGenerator(cfg Config) *CLIGenerator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	displayName := cfg.DisplayName
	if displayName == "" {
		displayName = cfg.Name
	}

	return &CLIGenerator{
		name:        cfg.Name,
		displayName: displayName,
		command:     cfg.Command,
		args:        cfg.Args,
		model:       cfg.Model,
		timeout:     timeout,
	}
}

// Name returns the generator identifier.
func (g *CLIGenerator) Name() string { return g.name }

// DisplayName returns the human-friendly name.
func (g *CLIGenerator) DisplayName() string { return g.displayName }

// Available checks if the CLI is installed.
func (g *CLIGenerator) Available() bool {
	_, err := exec.LookPath(g.command)
	return err == nil
}

// Generate runs the CLI with the prompt and returns trimmed stdout.
// Cancellation and timeout flow through the command context rather than
// process signals.
func (g *CLIGenerator) Generate(ctx context.Context, prompt string, maxSentences int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	args := append([]string{}, g.args...)
	if g.model != "" {
		args = append(args, "--model", g.model)
	}
	if maxSentences > 0 {
		prompt = fmt.Sprintf("%s\n\n(Answer in at most %d sentences.)", prompt, maxSentences)
	}
	args = append(args, prompt)

	cmd := exec.CommandContext(ctx, g.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &GenerationError{Provider: g.name, Message: "command timed out", Err: ctx.Err()}
		}
		if stderr.Len() > 0 {
			return "", &GenerationError{Provider: g.name, Message: strings.TrimSpace(stderr.String()), Err: err}
		}
		return "", &GenerationError{Provider: g.name, Message: "command failed", Err: err}
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", &GenerationError{Provider: g.name, Message: "empty output"}
	}
	return out, nil
}

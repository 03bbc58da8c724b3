// Package llm provides the text-generation collaborator used to produce
// review comments.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/graphshell/reviewbot/internal/config"
)

// systemInstruction is the fixed reviewer role sent with every generation
// request.
const systemInstruction = "You are an automated code reviewer for the Graphshell " +
	"open-source project. You have deep familiarity with the project's design " +
	"documents, implementation strategy, and canonical terminology. Your reviews " +
	"are concise, grounded in the documented acceptance criteria, and always cite " +
	"specific design docs by path and section. Never invent design requirements " +
	"not present in the docs."

// Generator produces review text from a single prompt. Implementations apply
// the fixed system instruction and the configured output-length bound.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type modelGenerator struct {
	model     llms.Model
	maxTokens int
	logger    *slog.Logger
}

// NewGenerator builds a Generator backed by the configured LLM provider.
func NewGenerator(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (Generator, error) {
	model, err := newModel(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &modelGenerator{model: model, maxTokens: cfg.MaxReviewTokens, logger: logger}, nil
}

// NewGeneratorFromModel wraps an existing model; used by tests.
func NewGeneratorFromModel(model llms.Model, maxTokens int, logger *slog.Logger) Generator {
	return &modelGenerator{model: model, maxTokens: maxTokens, logger: logger}
}

func (g *modelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	full := systemInstruction + "\n\n" + prompt

	response, err := llms.GenerateFromSinglePrompt(ctx, g.model, full, llms.WithMaxTokens(g.maxTokens))
	if err != nil {
		g.logger.Error("generation request failed", "error", err)
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	return response, nil
}

// newModel selects the LLM provider. Ollama gets a client with generous
// timeouts because local generation can take minutes.
func newModel(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (llms.Model, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set for the gemini provider")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.Model),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func newOllamaHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxConnsPerHost:     10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: 5 * time.Minute,
	}
}

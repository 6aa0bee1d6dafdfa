// Package llm wraps the locally hosted text-generation backend. The rest of
// the server treats it as an opaque capability: a prompt goes in, text comes
// out, or the call fails.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
)

const generateTimeout = 60 * time.Second

// Generator produces text for a prompt, or fails when the backend is
// unavailable.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OllamaClient talks to a local Ollama instance through its OpenAI-compatible
// /v1 endpoint.
type OllamaClient struct {
	client openaigo.Client
	model  string
	log    zerolog.Logger
}

// NewOllamaClient builds a client for the given Ollama host and model.
// The API key is a placeholder; Ollama accepts any value.
func NewOllamaClient(host, model string, log zerolog.Logger) *OllamaClient {
	base := strings.TrimRight(strings.TrimSpace(host), "/") + "/v1"

	client := openaigo.NewClient(
		option.WithBaseURL(base),
		option.WithAPIKey("ollama"),
		option.WithHTTPClient(&http.Client{Timeout: generateTimeout}),
		option.WithRequestTimeout(generateTimeout),
	)

	return &OllamaClient{
		client: client,
		model:  model,
		log:    log.With().Str("component", "llm").Logger(),
	}
}

// Generate sends the prompt as a single user turn and returns the completion
// text.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(c.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: generation request: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("llm: empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}

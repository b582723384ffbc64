package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// RequestTimeout caps the wall-clock time of a single completion request.
// A request that exceeds it is recorded as a failed outcome, never retried.
const RequestTimeout = 120 * time.Second

// NewClient builds a client for an OpenAI-compatible server at baseURL
// (including the /v1 suffix, e.g. http://host:8000/v1).
func NewClient(baseURL, apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	config.HTTPClient = &http.Client{Timeout: RequestTimeout}
	return openai.NewClientWithConfig(config)
}

// Completion sends a single non-streaming chat completion request with the
// prompt as the sole user message.
func Completion(client *openai.Client, model, prompt string, maxTokens int) (*openai.ChatCompletionResponse, error) {
	resp, err := client.CreateChatCompletion(
		context.Background(),
		openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			// Add the deprecated `MaxTokens` for backward compatibility with some older API servers.
			MaxTokens:           maxTokens,
			MaxCompletionTokens: maxTokens,
			Temperature:         1,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	return &resp, nil
}

// Ping probes the endpoint before a run starts and returns the round-trip
// latency in milliseconds. A run must not start if the probe fails.
func Ping(client *openai.Client, timeout time.Duration) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	if _, err := client.ListModels(ctx); err != nil {
		return 0, fmt.Errorf("endpoint unreachable: %w", err)
	}
	return float64(time.Since(start).Microseconds()) / 1000.0, nil
}

// FirstAvailableModel retrieves the first model advertised by the server.
func FirstAvailableModel(client *openai.Client) (string, error) {
	modelList, err := client.ListModels(context.Background())
	if err != nil {
		return "", fmt.Errorf("failed to list models: %w", err)
	}

	if len(modelList.Models) == 0 {
		return "", fmt.Errorf("no models available")
	}

	return modelList.Models[0].ID, nil
}

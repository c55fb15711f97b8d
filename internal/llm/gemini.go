package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// Sampling parameters applied to every request.
const (
	temperature     = float32(0.7)
	topP            = float32(0.95)
	topK            = float32(40)
	maxOutputTokens = int32(400)
)

var errEmptyReply = errors.New("gemini returned empty text")

// GeminiClient implements Generator on the Gemini API.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

// NewGeminiClient creates a client authenticated with apiKey. A zero timeout
// leaves the call bounded only by the caller's context.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
		timeout:   timeout,
	}, nil
}

// Generate sends prompt as a single user message and returns the reply text.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temp, p, k := temperature, topP, topK
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &p,
		TopK:            &k,
		MaxOutputTokens: maxOutputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", errEmptyReply
	}
	return text, nil
}

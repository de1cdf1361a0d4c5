// Package googleai wraps the Gemini API for embedding and text
// generation. The rest of the pipeline depends on small consumer-defined
// interfaces, so this package is the only one that imports the genai SDK.
package googleai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/finaipro/colombiagpt/internal/log"
)

const (
	// embedTimeout bounds a single embedding call.
	embedTimeout = 15 * time.Second

	// generateTimeout bounds a single generation call.
	generateTimeout = 60 * time.Second
)

// Config holds the model selection for a Client.
type Config struct {
	APIKey        string
	ModelName     string  // generation model, e.g. "gemini-2.5-flash"
	EmbedderModel string  // embedding model, e.g. "gemini-embedding-001"
	EmbedderDim   int     // output dimensionality, matches the vector column
	Temperature   float32 // generation temperature; 0 keeps answers grounded
}

// Client provides embeddings and completions backed by the Gemini API.
//
// Client is safe for concurrent use.
type Client struct {
	genai  *genai.Client
	cfg    Config
	logger log.Logger
}

// New creates a Client against the Gemini API backend.
func New(ctx context.Context, cfg Config, logger log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.ModelName == "" || cfg.EmbedderModel == "" {
		return nil, fmt.Errorf("model names are required")
	}
	if cfg.EmbedderDim <= 0 {
		return nil, fmt.Errorf("embedder dimension must be positive, got %d", cfg.EmbedderDim)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing genai client: %w", err)
	}

	return &Client{genai: client, cfg: cfg, logger: logger}, nil
}

// Embed generates a fixed-dimension embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text must not be empty")
	}

	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	dim := int32(c.cfg.EmbedderDim)
	result, err := c.genai.Models.EmbedContent(embedCtx, c.cfg.EmbedderModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &dim},
	)
	if err != nil {
		return nil, fmt.Errorf("embedding generation: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}

	vec := result.Embeddings[0].Values
	if len(vec) != c.cfg.EmbedderDim {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d",
			c.cfg.EmbedderDim, len(vec))
	}
	return vec, nil
}

// Complete sends a single prompt to the generation model and returns the
// trimmed response text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt must not be empty")
	}

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(genCtx, c.cfg.ModelName,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: genai.Ptr(c.cfg.Temperature)},
	)
	if err != nil {
		return "", fmt.Errorf("generation: %w", err)
	}

	var out strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					out.WriteString(part.Text)
				}
			}
			if out.Len() > 0 {
				break
			}
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", c.cfg.ModelName)
	}

	c.logger.Debug("generation completed",
		"model", c.cfg.ModelName,
		"prompt_len", len(prompt),
		"response_len", len(text),
		"duration", time.Since(start))
	return text, nil
}

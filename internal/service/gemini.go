package service

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// StructuredRequest is one schema-constrained generation call
type StructuredRequest struct {
	System string
	Prompt string
	Schema *genai.Schema
}

// StructuredGenerator returns the raw JSON text produced for a request
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, req StructuredRequest) (string, error)
}

// GeminiClient wraps the Gemini API for structured JSON output
type GeminiClient struct {
	client         *genai.Client
	model          string
	thinkingBudget int32
}

func NewGeminiClient(ctx context.Context, apiKey, model string, thinkingBudget int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:         client,
		model:          model,
		thinkingBudget: int32(thinkingBudget),
	}, nil
}

// Model returns the configured model name
func (g *GeminiClient) Model() string {
	return g.model
}

// GenerateJSON issues a single GenerateContent call. No retries.
func (g *GeminiClient) GenerateJSON(ctx context.Context, req StructuredRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if g.thinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(g.thinkingBudget)}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	return resp.Text(), nil
}

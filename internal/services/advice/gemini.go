package advice

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"Monexa/internal/domain/models"
	applogger "Monexa/pkg/logger"
)

const DefaultModel = "gemini-1.5-flash"

// Gemini generates advice with the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	log    *applogger.Logger
}

// GeminiOption configures the generator.
type GeminiOption func(*Gemini)

// WithModel sets the model to use.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) GeminiOption {
	return func(g *Gemini) { g.log = l }
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g := &Gemini{client: client, model: DefaultModel, log: applogger.NewNop()}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

// Generate implements service.AdviceGenerator.
func (g *Gemini) Generate(ctx context.Context, p models.Profile, financialCtx, newsCtx string) (string, error) {
	g.log.Debug("generating advice", applogger.String("model", g.model))
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(p, financialCtx, newsCtx)), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return extractText(result)
}

func extractText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("empty text in response")
	}
	return b.String(), nil
}

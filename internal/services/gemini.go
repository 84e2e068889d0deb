// Gemini [LanguageModel] implementation backed by google.golang.org/genai.
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/ytassist/internal/shared"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-1.5-pro-latest"

// GeminiOpts configures [NewGeminiService].
type GeminiOpts struct {
	APIKey     string
	Model      string       // defaults to gemini-1.5-pro-latest
	BaseURL    string       // overrides the API host, used by tests
	HTTPClient *http.Client // optional
}

// GeminiService implements [LanguageModel] with the Gemini API.
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates a Gemini client. The API key is required.
func NewGeminiService(ctx context.Context, opts GeminiOpts) (*GeminiService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api_key", shared.ErrMissingCredentials)
	}
	if opts.Model == "" {
		opts.Model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{client: client, model: opts.Model}, nil
}

// Name returns the service name.
func (g *GeminiService) Name() string {
	return "Gemini"
}

// Model returns the configured model identifier.
func (g *GeminiService) Model() string {
	return g.model
}

// Generate sends promptText as a single user turn and returns the concatenated text parts.
func (g *GeminiService) Generate(ctx context.Context, promptText string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(promptText), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	return resp.Text(), nil
}

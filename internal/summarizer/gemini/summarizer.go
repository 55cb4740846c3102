package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"talentmatch/internal/config"
	"talentmatch/internal/port"
	"talentmatch/internal/summarizer"
)

func init() {
	summarizer.RegisterProvider("gemini", func(cfg *config.SummarizerProviderConfig) (port.Summarizer, error) {
		return NewSummarizer(context.Background(), cfg)
	})
}

// Summarizer implements port.Summarizer using the Gemini API through the genai SDK.
type Summarizer struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewSummarizer creates a Gemini-backed summarizer from a provider config.
func NewSummarizer(ctx context.Context, cfg *config.SummarizerProviderConfig) (*Summarizer, error) {
	return newSummarizer(ctx, cfg, "")
}

// NewSummarizerWithEndpoint creates a summarizer pointing at a custom API base URL (for testing).
func NewSummarizerWithEndpoint(ctx context.Context, cfg *config.SummarizerProviderConfig, baseURL string) (*Summarizer, error) {
	return newSummarizer(ctx, cfg, baseURL)
}

func newSummarizer(ctx context.Context, cfg *config.SummarizerProviderConfig, baseURL string) (*Summarizer, error) {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Summarizer{
		client:      client,
		model:       model,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (s *Summarizer) Summarize(ctx context.Context, input port.SummaryInput) (*port.SummaryOutput, error) {
	prompt := summarizer.BuildPrompt(input.Text, input.Role, input.MaxChars)

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(summarizer.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(s.temperature),
	})
	if err != nil {
		var apiErr genai.APIError
		if !errors.As(err, &apiErr) {
			return nil, fmt.Errorf("gemini API error: %w", err)
		}
		providerErr := &summarizer.APIError{Provider: "gemini", Status: apiErr.Code, Body: apiErr.Message}
		if apiErr.Code == http.StatusTooManyRequests {
			return nil, summarizer.NewRateLimitError("gemini", providerErr, 0)
		}
		return nil, providerErr
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("empty response from API")
	}

	model := s.model
	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}
	return &port.SummaryOutput{
		Analysis:  text,
		ModelUsed: model,
	}, nil
}

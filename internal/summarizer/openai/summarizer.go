package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"talentmatch/internal/config"
	"talentmatch/internal/port"
	"talentmatch/internal/summarizer"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

func init() {
	summarizer.RegisterProvider("openai", func(cfg *config.SummarizerProviderConfig) (port.Summarizer, error) {
		return NewSummarizer(cfg), nil
	})
}

// Summarizer implements port.Summarizer using the OpenAI Chat Completions API.
type Summarizer struct {
	apiKey      string
	model       string
	temperature float64
	endpoint    string
	client      *http.Client
}

// NewSummarizer creates an OpenAI-backed summarizer from a provider config.
func NewSummarizer(cfg *config.SummarizerProviderConfig) *Summarizer {
	return newSummarizer(cfg, apiURL)
}

// NewSummarizerWithEndpoint creates a summarizer pointing at a custom API endpoint (for testing).
func NewSummarizerWithEndpoint(cfg *config.SummarizerProviderConfig, endpoint string) *Summarizer {
	return newSummarizer(cfg, endpoint)
}

func newSummarizer(cfg *config.SummarizerProviderConfig, endpoint string) *Summarizer {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Summarizer{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
	}
}

func (s *Summarizer) Summarize(ctx context.Context, input port.SummaryInput) (*port.SummaryOutput, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("openai: missing API key")
	}
	prompt := summarizer.BuildPrompt(input.Text, input.Role, input.MaxChars)

	reqBody := map[string]interface{}{
		"model":       s.model,
		"temperature": s.temperature,
		"messages": []map[string]interface{}{
			{"role": "system", "content": summarizer.SystemPrompt},
			{"role": "user", "content": prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if err := summarizer.CheckResponse("openai", resp, respBody); err != nil {
		return nil, err
	}

	return parseResponse(respBody, s.model)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.SummaryOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}
	if resp.Model != "" {
		model = resp.Model
	}

	return &port.SummaryOutput{
		Analysis:  resp.Choices[0].Message.Content,
		ModelUsed: model,
	}, nil
}

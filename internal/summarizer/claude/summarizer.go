package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talentmatch/internal/config"
	"talentmatch/internal/port"
	"talentmatch/internal/summarizer"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

func init() {
	summarizer.RegisterProvider("claude", func(cfg *config.SummarizerProviderConfig) (port.Summarizer, error) {
		return NewSummarizer(cfg), nil
	})
}

// Summarizer implements port.Summarizer using the Anthropic Messages API.
type Summarizer struct {
	apiKey      string
	model       string
	temperature float64
	endpoint    string
	client      *http.Client
}

// NewSummarizer creates a Claude-backed summarizer from a provider config.
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
		model = "claude-sonnet-4-20250514"
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
	prompt := summarizer.BuildPrompt(input.Text, input.Role, input.MaxChars)

	reqBody := map[string]interface{}{
		"model":       s.model,
		"max_tokens":  4096,
		"temperature": s.temperature,
		"system":      summarizer.SystemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
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
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if err := summarizer.CheckResponse("claude", resp, respBody); err != nil {
		return nil, err
	}

	return parseResponse(respBody, s.model)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.SummaryOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	var parts []string
	for _, c := range resp.Content {
		if c.Type == "text" && c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	return &port.SummaryOutput{
		Analysis:  strings.Join(parts, "\n"),
		ModelUsed: model,
	}, nil
}

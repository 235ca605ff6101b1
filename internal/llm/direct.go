package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	apperrors "github.com/mumernisar/outsmart/internal/errors"
)

// Provider API base URLs. Gemini and Grok expose OpenAI-compatible
// endpoints, so one wire format covers everything except Anthropic.
const (
	openaiBaseURL    = "https://api.openai.com/v1"
	groqBaseURL      = "https://api.groq.com/openai/v1"
	geminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta/openai"
	grokBaseURL      = "https://api.x.ai/v1"
	anthropicBaseURL = "https://api.anthropic.com/v1"

	anthropicVersion = "2023-06-01"
)

// directProvider calls a provider API with a locally configured key.
type directProvider struct {
	name      string
	baseURL   string
	keyEnvs   []string
	models    []string
	anthropic bool
	http      *http.Client
}

func builtinProviders(httpClient *http.Client) []*directProvider {
	return []*directProvider{
		{
			name:    "openai",
			baseURL: openaiBaseURL,
			keyEnvs: []string{"OPENAI_API_KEY"},
			models:  []string{"gpt-5-nano"},
			http:    httpClient,
		},
		{
			name:      "anthropic",
			baseURL:   anthropicBaseURL,
			keyEnvs:   []string{"ANTHROPIC_API_KEY"},
			models:    []string{"claude-haiku-4-5"},
			anthropic: true,
			http:      httpClient,
		},
		{
			name:    "groq",
			baseURL: groqBaseURL,
			keyEnvs: []string{"GROQ_API_KEY"},
			models:  []string{"openai/gpt-oss-120b"},
			http:    httpClient,
		},
		{
			name:    "gemini",
			baseURL: geminiBaseURL,
			keyEnvs: []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
			models:  []string{"gemini-2.5-flash-lite"},
			http:    httpClient,
		},
		{
			name:    "grok",
			baseURL: grokBaseURL,
			keyEnvs: []string{"XAI_API_KEY", "GROK_API_KEY"},
			models:  []string{"grok-4-fast"},
			http:    httpClient,
		},
	}
}

func (p *directProvider) Name() string {
	return p.name
}

func (p *directProvider) configured() bool {
	return p.apiKey() != ""
}

func (p *directProvider) apiKey() string {
	for _, env := range p.keyEnvs {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return ""
}

func (p *directProvider) Send(ctx context.Context, model string, req Request) (string, error) {
	if p.anthropic {
		return p.sendAnthropic(ctx, model, req)
	}
	return p.sendOpenAI(ctx, model, req)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *directProvider) sendOpenAI(ctx context.Context, model string, req Request) (string, error) {
	payload := openAIRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONResponse {
		payload.ResponseFormat = map[string]any{"type": "json_object"}
	}

	var resp openAIResponse
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey()}
	if err := p.post(ctx, "/chat/completions", headers, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.GatewayTransport(fmt.Errorf("%s returned no choices", p.name))
	}
	return resp.Choices[0].Message.Content, nil
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *directProvider) sendAnthropic(ctx context.Context, model string, req Request) (string, error) {
	payload := anthropicRequest{
		Model:     model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages:  []chatMessage{{Role: "user", Content: req.User}},
	}

	var resp anthropicResponse
	headers := map[string]string{
		"x-api-key":         p.apiKey(),
		"anthropic-version": anthropicVersion,
	}
	if err := p.post(ctx, "/messages", headers, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", apperrors.GatewayTransport(fmt.Errorf("%s returned no content", p.name))
	}
	return resp.Content[0].Text, nil
}

func (p *directProvider) post(ctx context.Context, path string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", p.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return apperrors.GatewayTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return apperrors.GatewayTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.GatewayTransport(fmt.Errorf("%s returned status %d", p.name, resp.StatusCode))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.GatewayTransport(fmt.Errorf("decode %s response: %w", p.name, err))
	}
	return nil
}

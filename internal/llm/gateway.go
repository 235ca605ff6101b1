package llm

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mumernisar/outsmart/internal/gateway"
)

// gatewayProvider routes sends through a signed gateway client. The
// client is captured at construction, before any fan-out to worker
// goroutines, so a disconnect mid-turn does not pull the session out
// from under in-flight requests.
type gatewayProvider struct {
	client   *gateway.Client
	provider string
}

func newGatewayProvider(client *gateway.Client, provider string) *gatewayProvider {
	return &gatewayProvider{client: client, provider: provider}
}

func (p *gatewayProvider) Name() string {
	return "gateway:" + p.provider
}

func (p *gatewayProvider) Send(ctx context.Context, model string, req Request) (string, error) {
	chatReq := gateway.ChatRequest{
		Provider: p.provider,
		Model:    model,
		Messages: []gateway.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONResponse {
		chatReq.ResponseFormat = "json_object"
	}

	resp, err := p.client.ChatCompletion(ctx, chatReq)
	if err != nil {
		log.Warn().
			Err(err).
			Str("provider", p.provider).
			Str("model", model).
			Msg("gateway chat completion failed")
		return "", err
	}
	return resp.Content, nil
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/mumernisar/outsmart/internal/errors"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the generic scoped chat-completion envelope routed
// through the gateway to the named provider.
type ChatRequest struct {
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	Messages       []Message `json:"messages"`
	Temperature    float64   `json:"temperature"`
	MaxTokens      int       `json:"max_tokens"`
	ResponseFormat string    `json:"response_format,omitempty"`
}

// ChatResponse carries the provider's reply content.
type ChatResponse struct {
	Content string `json:"content"`
}

// Client issues signed requests against one session. It holds no mutable
// state of its own, so a single Client may be shared by any number of
// concurrent workers.
type Client struct {
	session *Session
	http    *http.Client
}

// NewClient binds a transport to a session. The http.Client's timeout is
// the per-call timeout; callers wanting a shorter one pass a context
// deadline.
func NewClient(session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{session: session, http: httpClient}
}

// Session returns the session this client signs with.
func (c *Client) Session() *Session {
	return c.session
}

// ChatCompletion sends a signed chat-completion request through the
// gateway. Session validity is re-checked here, not cached: a caller may
// hold this client across the expiry boundary.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.signedPost(ctx, "/v1/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type resourcesResponse struct {
	Resources []ResourceGrant `json:"resources"`
}

// FetchResources retrieves the granted resource catalog. Order in the
// response is preserved; it decides model-to-provider tie-breaks.
func (c *Client) FetchResources(ctx context.Context) ([]ResourceGrant, error) {
	var resp resourcesResponse
	if err := c.signedPost(ctx, "/v1/resources", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Resources, nil
}

func (c *Client) signedPost(ctx context.Context, path string, payload, out any) error {
	if !c.session.Valid() {
		// Expired means unauthenticated at the transport: the gateway
		// would reject the signature anyway, so fail before sending.
		return apperrors.GatewayUnauthenticated("session is no longer valid; re-pair to continue")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.session.ProxyURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := SignRequest(req, c.session.Signer(), c.session.AppID, body); err != nil {
		return fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.GatewayTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return apperrors.GatewayTransport(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		log.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("gateway rejected request signature")
		return apperrors.GatewayUnauthenticated(fmt.Sprintf("gateway rejected signature (status %d)", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return apperrors.GatewayTransport(fmt.Errorf("gateway returned status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.GatewayTransport(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mumernisar/outsmart/internal/config"
	apperrors "github.com/mumernisar/outsmart/internal/errors"
)

// AppInfo identifies this application to the gateway owner on the
// approval page.
type AppInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ConnectResult is what the caller needs to drive the redirect: the URL
// the human must visit, and the request id the gateway echoes back for
// correlation.
type ConnectResult struct {
	ApprovalURL string `json:"approval_url"`
	RequestID   string `json:"request_id,omitempty"`
}

// Connector submits authorization requests to a gateway's pairing
// endpoint. It performs no redirect itself; that is the caller's job.
type Connector struct {
	client *http.Client
}

func NewConnector() *Connector {
	return &Connector{
		client: &http.Client{Timeout: config.PairRequestTimeout},
	}
}

type pairRequest struct {
	PairingToken string              `json:"pairing_token"`
	App          AppInfo             `json:"app"`
	PublicKey    string              `json:"public_key"`
	Permissions  []PermissionRequest `json:"permissions"`
	RedirectURI  string              `json:"redirect_uri"`
}

// Connect sends the authorization payload built from the descriptor, the
// app identity, the ordered permission list and the keypair's public
// half. The redirect URI must already carry whatever state parameter the
// pending carrier chose.
func (c *Connector) Connect(
	ctx context.Context,
	desc *PairingDescriptor,
	app AppInfo,
	permissions []PermissionRequest,
	redirectURI string,
	keypair *KeyPair,
) (*ConnectResult, error) {
	payload := pairRequest{
		PairingToken: desc.Token,
		App:          app,
		PublicKey:    keypair.PublicKeyString(),
		Permissions:  permissions,
		RedirectURI:  redirectURI,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal pair request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, desc.ProxyURL+"/v1/pair", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create pair request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Info().
		Str("proxy", desc.ProxyURL).
		Int("permissions", len(permissions)).
		Msg("submitting pairing request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.PairingFailed(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.PairingFailed(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.PairingFailed(fmt.Errorf("gateway returned status %d", resp.StatusCode))
	}

	var result ConnectResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, apperrors.PairingFailed(fmt.Errorf("decode pair response: %w", err))
	}
	if result.ApprovalURL == "" {
		return nil, apperrors.PairingFailed(fmt.Errorf("gateway returned no approval URL"))
	}

	return &result, nil
}

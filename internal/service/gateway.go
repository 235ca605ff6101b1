package service

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mumernisar/outsmart/internal/config"
	apperrors "github.com/mumernisar/outsmart/internal/errors"
	"github.com/mumernisar/outsmart/internal/gateway"
	"github.com/mumernisar/outsmart/internal/pending"
	"github.com/mumernisar/outsmart/internal/util"
)

// Callback outcomes. Everything the redirect can produce reduces to one
// of these; the handler has no synchronous caller to raise errors to.
const (
	OutcomeApproved = "approved"
	OutcomeDenied   = "denied"
	OutcomeStale    = "stale"
	OutcomeError    = "error"
)

// CallbackOutcome is the absorbed result of handling a redirect.
type CallbackOutcome struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// GatewayService drives the pairing flow end to end: parse, connect,
// survive the redirect, handle the callback, install the session.
type GatewayService struct {
	cfg       *config.Config
	connector *gateway.Connector
	carrier   pending.Carrier
	sessions  *SessionManager
	envSigner gateway.Signer
	http      *http.Client
}

func NewGatewayService(
	cfg *config.Config,
	carrier pending.Carrier,
	sessions *SessionManager,
) (*GatewayService, error) {
	s := &GatewayService{
		cfg:       cfg,
		connector: gateway.NewConnector(),
		carrier:   carrier,
		sessions:  sessions,
		http:      &http.Client{Timeout: cfg.ChatTimeout()},
	}

	if cfg.KeyMode == config.KeyModeEnvironment {
		signer, err := gateway.NewEnvironmentSigner(cfg.GatewayPrivateKey)
		if err != nil {
			return nil, err
		}
		s.envSigner = signer
	}

	return s, nil
}

// Connect parses the pairing string, prepares pending state behind the
// configured carrier, and submits the authorization request. The caller
// redirects the user to the returned approval URL.
func (s *GatewayService) Connect(ctx context.Context, pairingString string) (*gateway.ConnectResult, error) {
	desc, err := gateway.ParsePairingString(pairingString)
	if err != nil {
		return nil, err
	}

	var keypair *gateway.KeyPair
	if s.envSigner != nil {
		// Environment key mode: the public half identifies us, the
		// private half never leaves the process.
		keypair, err = gateway.KeyPairFromSeed(s.cfg.GatewayPrivateKey)
		if err != nil {
			return nil, err
		}
	} else {
		keypair, err = gateway.GenerateKeyPair()
		if err != nil {
			return nil, apperrors.Internal("failed to generate keypair").WithCause(err)
		}
	}

	var carried *gateway.KeyPair
	if s.envSigner == nil {
		carried = keypair
	}
	state := pending.NewState(desc.ProxyURL, carried)

	param, err := s.carrier.Prepare(ctx, state)
	if err != nil {
		return nil, err
	}

	redirectURI := s.cfg.CallbackURL() + "?" + gateway.ParamState + "=" + url.QueryEscape(param)

	result, err := s.connector.Connect(ctx, desc, gateway.AppInfo{
		Name:        s.cfg.AppName,
		Description: s.cfg.AppDescription,
	}, gateway.DefaultLLMPermissions(), redirectURI, keypair)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("proxy", desc.ProxyURL).
		Str("token", util.MaskToken(desc.Token)).
		Str("requestId", result.RequestID).
		Msg("pairing initiated, awaiting approval")

	return result, nil
}

// HandleCallback processes the redirect back from the gateway. It is
// idempotent: replaying already-consumed parameters lands on the stale
// branch and does nothing.
func (s *GatewayService) HandleCallback(ctx context.Context, params url.Values) CallbackOutcome {
	result, ok := gateway.ParseCallback(params)
	if !ok {
		// Stale or foreign callback. Not an error the user should see.
		log.Debug().Msg("ignoring callback without a valid status")
		return CallbackOutcome{Status: OutcomeStale}
	}

	stateParam := params.Get(gateway.ParamState)

	if !result.Approved {
		// Denied consumes the pending entry; a later approval replaying
		// the same token must find nothing.
		if _, err := s.carrier.Take(ctx, stateParam); err != nil && !apperrors.HasCode(err, apperrors.ErrCodePendingStateLost) {
			log.Warn().Err(err).Msg("failed to clear pending state on denial")
		}
		log.Info().Msg("pairing denied by gateway owner")
		return CallbackOutcome{Status: OutcomeDenied, Message: "Connection was denied by the gateway owner."}
	}

	if s.envSigner != nil && result.AppID != s.cfg.GatewayAppID {
		// Environment key mode pairs under one pre-provisioned identity;
		// a callback for any other app id is foreign. Leave the pending
		// entry alone so the real callback can still land.
		log.Warn().Str("appId", result.AppID).Msg("callback app id does not match the configured gateway app id")
		return CallbackOutcome{Status: OutcomeStale}
	}

	state, err := s.carrier.Take(ctx, stateParam)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodePendingStateLost) {
			log.Debug().Msg("approved callback with no recoverable pending state")
			return CallbackOutcome{Status: OutcomeStale}
		}
		log.Error().Err(err).Msg("pending state lookup failed")
		return CallbackOutcome{Status: OutcomeError, Message: "Connection failed: could not recover pairing state."}
	}

	signer := s.envSigner
	if signer == nil {
		keypair, err := state.KeyPair()
		if err != nil || keypair == nil {
			log.Error().Err(err).Msg("pending state has no usable keypair")
			return CallbackOutcome{Status: OutcomeError, Message: "Connection failed: pairing state is unusable."}
		}
		signer = gateway.NewSigner(keypair)
	}

	sess, err := s.buildSession(ctx, state.ProxyURL, result, signer)
	if err != nil {
		log.Error().Err(err).Msg("failed to build gateway session")
		return CallbackOutcome{Status: OutcomeError, Message: "Connection failed: could not fetch granted resources."}
	}

	s.sessions.Install(sess)
	return CallbackOutcome{Status: OutcomeApproved}
}

// buildSession fetches the resource catalog with the reconstructed
// signer, then publishes the complete read-only session.
func (s *GatewayService) buildSession(
	ctx context.Context,
	proxyURL string,
	result gateway.CallbackResult,
	signer gateway.Signer,
) (*gateway.Session, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, config.ResourceFetchTimeout)
	defer cancel()

	probe := gateway.NewSession(result.AppID, proxyURL, result.ExpiresAt, signer, nil)
	resources, err := gateway.NewClient(probe, s.http).FetchResources(fetchCtx)
	if err != nil {
		return nil, err
	}

	return gateway.NewSession(result.AppID, proxyURL, result.ExpiresAt, signer, resources), nil
}

// Disconnect drops the active session. Safe to call when disconnected.
func (s *GatewayService) Disconnect() {
	s.sessions.Invalidate()
}

// Client returns a signed transport bound to the current session, or an
// error when there is none.
func (s *GatewayService) Client() (*gateway.Client, error) {
	sess := s.sessions.Current()
	if sess == nil {
		return nil, apperrors.NotConnected()
	}
	return gateway.NewClient(sess, s.http), nil
}

// ExpiresIn is a convenience for logging and tests.
func (s *GatewayService) ExpiresIn() time.Duration {
	sess := s.sessions.Current()
	if sess == nil {
		return 0
	}
	return sess.TimeRemaining()
}

package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mumernisar/outsmart/internal/llm"
)

const defaultMaxTokens = 1024

// PlayerPrompt is one player's request for a turn.
type PlayerPrompt struct {
	Player    string  `json:"player"`
	Model     string  `json:"model"`
	System    string  `json:"system"`
	User      string  `json:"user"`
	MaxTokens int     `json:"max_tokens,omitempty"`
	Temp      float64 `json:"temperature,omitempty"`
}

// PlayerReply is the per-player result. Err is a code string rather than
// an error value so a turn's replies serialize cleanly; one player
// failing does not void the others.
type PlayerReply struct {
	Player  string `json:"player"`
	Model   string `json:"model"`
	Content string `json:"content,omitempty"`
	Err     string `json:"error,omitempty"`
}

// ArenaService runs game turns: every player's chat-completion request
// dispatched concurrently, each signed call independent of the rest.
type ArenaService struct {
	registry    *llm.Registry
	callTimeout time.Duration
}

func NewArenaService(registry *llm.Registry, callTimeout time.Duration) *ArenaService {
	return &ArenaService{
		registry:    registry,
		callTimeout: callTimeout,
	}
}

// PlayTurn fans out all prompts and waits for every reply. Providers are
// resolved before the fan-out so that all of a turn's requests route
// through the same session snapshot.
func (a *ArenaService) PlayTurn(ctx context.Context, prompts []PlayerPrompt) []PlayerReply {
	type resolved struct {
		provider llm.Provider
		err      error
	}

	providers := make([]resolved, len(prompts))
	for i, p := range prompts {
		provider, err := a.registry.ForModel(p.Model)
		providers[i] = resolved{provider: provider, err: err}
	}

	replies := make([]PlayerReply, len(prompts))
	g, ctx := errgroup.WithContext(ctx)

	for i, p := range prompts {
		g.Go(func() error {
			replies[i] = a.playOne(ctx, p, providers[i].provider, providers[i].err)
			return nil
		})
	}

	// Workers never return errors; failures land in their reply slot.
	_ = g.Wait()

	return replies
}

func (a *ArenaService) playOne(ctx context.Context, p PlayerPrompt, provider llm.Provider, resolveErr error) PlayerReply {
	reply := PlayerReply{Player: p.Player, Model: p.Model}

	if resolveErr != nil {
		reply.Err = resolveErr.Error()
		return reply
	}

	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	start := time.Now()
	content, err := provider.Send(callCtx, p.Model, llm.Request{
		System:       p.System,
		User:         p.User,
		MaxTokens:    maxTokens,
		Temperature:  p.Temp,
		JSONResponse: true,
	})
	elapsed := time.Since(start)

	if err != nil {
		log.Warn().
			Err(err).
			Str("player", p.Player).
			Str("model", p.Model).
			Dur("elapsed", elapsed).
			Msg("player turn failed")
		reply.Err = err.Error()
		return reply
	}

	log.Debug().
		Str("player", p.Player).
		Str("model", p.Model).
		Str("via", provider.Name()).
		Dur("elapsed", elapsed).
		Msg("player turn completed")

	reply.Content = content
	return reply
}

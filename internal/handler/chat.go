package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/mumernisar/outsmart/internal/errors"
	"github.com/mumernisar/outsmart/internal/httputil"
	"github.com/mumernisar/outsmart/internal/llm"
	"github.com/mumernisar/outsmart/internal/service"
)

type ChatHandler struct {
	registry *llm.Registry
	arena    *service.ArenaService
}

func NewChatHandler(registry *llm.Registry, arena *service.ArenaService) *ChatHandler {
	return &ChatHandler{
		registry: registry,
		arena:    arena,
	}
}

func (h *ChatHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/models", h.Models)
	r.Post("/chat", h.Chat)
	r.Post("/arena/turn", h.ArenaTurn)

	return r
}

// GET /v1/models
func (h *ChatHandler) Models(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"models": h.registry.ModelNames(),
	})
}

type chatRequest struct {
	Model       string  `json:"model"`
	System      string  `json:"system"`
	User        string  `json:"user"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// POST /v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("body", "expected JSON"))
		return
	}
	if req.Model == "" {
		httputil.WriteError(w, apperrors.MissingRequired("model"))
		return
	}
	if req.User == "" {
		httputil.WriteError(w, apperrors.MissingRequired("user"))
		return
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = 1024
	}

	provider, err := h.registry.ForModel(req.Model)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	content, err := provider.Send(r.Context(), req.Model, llm.Request{
		System:       req.System,
		User:         req.User,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
		JSONResponse: true,
	})
	if err != nil {
		log.Warn().Err(err).Str("model", req.Model).Msg("chat request failed")
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"content": content})
}

type arenaTurnRequest struct {
	Players []service.PlayerPrompt `json:"players"`
}

// POST /v1/arena/turn
func (h *ChatHandler) ArenaTurn(w http.ResponseWriter, r *http.Request) {
	var req arenaTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("body", "expected JSON"))
		return
	}
	if len(req.Players) == 0 {
		httputil.WriteError(w, apperrors.MissingRequired("players"))
		return
	}
	for _, p := range req.Players {
		if p.Model == "" {
			httputil.WriteError(w, apperrors.MissingRequired("players[].model"))
			return
		}
	}

	replies := h.arena.PlayTurn(r.Context(), req.Players)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"replies": replies})
}

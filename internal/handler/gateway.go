package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/mumernisar/outsmart/internal/errors"
	"github.com/mumernisar/outsmart/internal/httputil"
	"github.com/mumernisar/outsmart/internal/service"
)

type GatewayHandler struct {
	gatewayService *service.GatewayService
	sessions       *service.SessionManager
}

func NewGatewayHandler(gatewayService *service.GatewayService, sessions *service.SessionManager) *GatewayHandler {
	return &GatewayHandler{
		gatewayService: gatewayService,
		sessions:       sessions,
	}
}

func (h *GatewayHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/connect", h.Connect)
	r.Get("/callback", h.Callback)
	r.Get("/status", h.Status)
	r.Get("/resources", h.Resources)
	r.Post("/disconnect", h.Disconnect)

	return r
}

type connectRequest struct {
	PairingString string `json:"pairing_string"`
}

// POST /gateway/connect
func (h *GatewayHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("body", "expected JSON"))
		return
	}
	if strings.TrimSpace(req.PairingString) == "" {
		httputil.WriteError(w, apperrors.MissingRequired("pairing_string"))
		return
	}

	result, err := h.gatewayService.Connect(r.Context(), strings.TrimSpace(req.PairingString))
	if err != nil {
		log.Warn().Err(err).Msg("gateway connect failed")
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GET /gateway/callback
//
// The redirect target. Every branch ends in a redirect to the app root
// so the pairing parameters never linger in the address bar; the
// outcome travels as a short status flag instead.
func (h *GatewayHandler) Callback(w http.ResponseWriter, r *http.Request) {
	outcome := h.gatewayService.HandleCallback(r.Context(), r.URL.Query())

	target := "/?gateway=" + outcome.Status
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// GET /gateway/status
func (h *GatewayHandler) Status(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.sessions.Status())
}

// GET /gateway/resources?type=llm
func (h *GatewayHandler) Resources(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current()
	if sess == nil {
		httputil.WriteError(w, apperrors.NotConnected())
		return
	}

	resourceType := r.URL.Query().Get("type")
	if resourceType == "" {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"resources": sess.Resources})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"resources": sess.ResourcesByType(resourceType),
	})
}

// POST /gateway/disconnect
func (h *GatewayHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.gatewayService.Disconnect()
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

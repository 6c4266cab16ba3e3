package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/broffee-bot/internal/bot"
	"github.com/Lixing-Zhang/broffee-bot/internal/models"
	"github.com/Lixing-Zhang/broffee-bot/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxSessionIDLength = 128

// CommandRequest is the body of POST /api/sessions/{sessionId}/commands.
// Either Text ("/order espresso 2") or Command plus Args is set.
type CommandRequest struct {
	Text    string   `json:"text,omitempty"`
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
}

// SessionResponse is returned when a session is created
type SessionResponse struct {
	SessionID string `json:"sessionId"`
}

// SessionHandler lets HTTP clients chat with the bot, one cart per session
type SessionHandler struct {
	dispatcher *bot.Dispatcher
	orders     *service.OrderService
	log        *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(dispatcher *bot.Dispatcher, orders *service.OrderService, log *slog.Logger) *SessionHandler {
	return &SessionHandler{
		dispatcher: dispatcher,
		orders:     orders,
		log:        log,
	}
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	h.log.Info("session created", "session_id", id)
	WriteJSON(w, http.StatusCreated, SessionResponse{SessionID: id}, h.log)
}

// PostCommand handles POST /api/sessions/{sessionId}/commands
// User mistakes (unknown item, bad quantity) are normal replies with a code;
// only store failures answer 500.
func (h *SessionHandler) PostCommand(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req CommandRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log.Warn("failed to decode command request", "session_id", sessionID, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	var cmd models.Command
	switch {
	case req.Command != "":
		cmd = models.Command{
			SessionID: sessionID,
			Name:      strings.ToLower(strings.TrimPrefix(strings.TrimSpace(req.Command), "/")),
			Args:      req.Args,
			Text:      req.Text,
		}
	case strings.TrimSpace(req.Text) != "":
		cmd = bot.ParseText(sessionID, req.Text)
	default:
		WriteError(w, http.StatusBadRequest, "Either text or command is required", h.log)
		return
	}

	reply := h.dispatcher.Handle(r.Context(), cmd)

	status := http.StatusOK
	if reply.Code == models.CodeInternal {
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, reply, h.log)
}

// GetCart handles GET /api/sessions/{sessionId}/cart
func (h *SessionHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	summary, err := h.orders.Cart(r.Context(), sessionID)
	if err != nil {
		h.log.Error("failed to read cart", "session_id", sessionID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, summary, h.log)
}

// ClearCart handles DELETE /api/sessions/{sessionId}/cart, same as the end command
func (h *SessionHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	text, err := h.orders.EndSession(r.Context(), sessionID)
	if err != nil {
		h.log.Error("failed to clear cart", "session_id", sessionID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, models.Reply{Text: text}, h.log)
}

func (h *SessionHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	if id == "" || len(id) > maxSessionIDLength {
		h.log.Warn("invalid session id", "session_id", id)
		WriteError(w, http.StatusBadRequest, "Invalid session ID", h.log)
		return "", false
	}
	return id, true
}

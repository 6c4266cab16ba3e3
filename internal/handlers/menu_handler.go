package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/broffee-bot/internal/repository"
	"github.com/Lixing-Zhang/broffee-bot/internal/service"
	"github.com/go-chi/chi/v5"
)

// MenuHandler handles menu HTTP requests
type MenuHandler struct {
	service *service.MenuService
	logger  *slog.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(service *service.MenuService, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger,
	}
}

// ListItems handles GET /api/menu
// Returns the menu in display order
func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		h.logger.Error("failed to list menu", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, items, h.logger)
}

// GetItem handles GET /api/menu/{item}
// - 200: item found
// - 404: not on the menu
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "item")

	item, err := h.service.GetItem(r.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			h.logger.Info("menu item not found", "item", name)
			WriteError(w, http.StatusNotFound, "Item not found", h.logger)
			return
		}

		h.logger.Error("failed to get menu item", "item", name, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, item, h.logger)
}

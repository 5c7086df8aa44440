package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rjohnstone/chorewheel/internal/store"
)

type SettingsHandler struct {
	store  *store.SettingsStore
	logger *slog.Logger
}

func NewSettingsHandler(s *store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{store: s, logger: logger}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetAll()
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	// Private key material never leaves the server.
	delete(settings, store.SettingVAPIDPrivateKey)
	writeJSON(w, http.StatusOK, settings)
}

// Update handles PUT /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NotifyHour *int `json:"notify_hour"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.NotifyHour != nil {
		if *req.NotifyHour < 0 || *req.NotifyHour > 23 {
			writeError(w, http.StatusBadRequest, "notify_hour must be 0-23")
			return
		}
		if err := h.store.Set(store.SettingNotifyHour, strconv.Itoa(*req.NotifyHour)); err != nil {
			h.logger.Error("set notify hour", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update settings")
			return
		}
	}

	h.Get(w, r)
}

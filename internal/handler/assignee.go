package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rjohnstone/chorewheel/internal/model"
	"github.com/rjohnstone/chorewheel/internal/store"
	"github.com/rjohnstone/chorewheel/internal/websocket"
)

var hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type AssigneeHandler struct {
	store  *store.AssigneeStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAssigneeHandler(s *store.AssigneeStore, hub *websocket.Hub, logger *slog.Logger) *AssigneeHandler {
	return &AssigneeHandler{store: s, hub: hub, logger: logger}
}

func (h *AssigneeHandler) List(w http.ResponseWriter, r *http.Request) {
	assignees, err := h.store.List()
	if err != nil {
		h.logger.Error("list assignees", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list assignees")
		return
	}
	if assignees == nil {
		assignees = []model.Assignee{}
	}
	writeJSON(w, http.StatusOK, assignees)
}

func (h *AssigneeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if strings.EqualFold(req.Name, model.AssigneeAnyone) {
		writeError(w, http.StatusBadRequest, `"anyone" is reserved`)
		return
	}

	if req.Color == "" {
		req.Color = "#3B82F6"
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeError(w, http.StatusBadRequest, "color must be a hex color (e.g. #FF0000)")
		return
	}

	exists, err := h.store.NameExists(req.Name, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check name")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "an assignee with that name already exists")
		return
	}

	assignee, err := h.store.Create(uuid.NewString(), req.Name, req.Color)
	if err != nil {
		h.logger.Error("create assignee", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create assignee")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("assignee", "created", assignee.ID, nil))
	writeJSON(w, http.StatusCreated, assignee)
}

func (h *AssigneeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get assignee")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "assignee not found")
		return
	}

	var req struct {
		Name   string `json:"name"`
		Color  string `json:"color"`
		Active *bool  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = existing.Name
	}
	if req.Color == "" {
		req.Color = existing.Color
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeError(w, http.StatusBadRequest, "color must be a hex color (e.g. #FF0000)")
		return
	}
	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}

	exists, err := h.store.NameExists(req.Name, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check name")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "an assignee with that name already exists")
		return
	}

	assignee, err := h.store.Update(id, req.Name, req.Color, active)
	if err != nil {
		h.logger.Error("update assignee", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update assignee")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("assignee", "updated", id, nil))
	writeJSON(w, http.StatusOK, assignee)
}

func (h *AssigneeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get assignee")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "assignee not found")
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.logger.Error("delete assignee", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete assignee")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("assignee", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssigneeHandler) UpdateSortOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	if err := h.store.UpdateSortOrder(req.IDs); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update sort order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AssigneeHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get assignee")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "assignee not found")
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if len(req.PIN) != 4 || !isDigits(req.PIN) {
		writeError(w, http.StatusBadRequest, "PIN must be exactly 4 digits")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash PIN")
		return
	}

	if err := h.store.SetPIN(id, string(hash)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "pin set"})
}

func (h *AssigneeHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.ClearPIN(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear PIN")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "pin cleared"})
}

func (h *AssigneeHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	hash, err := h.store.GetPINHash(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get PIN")
		return
	}
	if hash == "" {
		writeError(w, http.StatusBadRequest, "no PIN set for this assignee")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

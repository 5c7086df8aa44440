package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rjohnstone/chorewheel/internal/chore"
	"github.com/rjohnstone/chorewheel/internal/store"
)

type StatsHandler struct {
	chores    *store.ChoreStore
	assignees *store.AssigneeStore
	logger    *slog.Logger
	now       func() time.Time
}

func NewStatsHandler(cs *store.ChoreStore, as *store.AssigneeStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{chores: cs, assignees: as, logger: logger, now: time.Now}
}

// Daily handles GET /api/stats/daily/{assignee}. An optional date=YYYY-MM-DD
// query evaluates a past day instead of today.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	assigneeID, asOf, ok := h.statsParams(w, r)
	if !ok {
		return
	}

	logs, err := h.chores.LoadAll()
	if err != nil {
		h.logger.Error("load chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load chores")
		return
	}

	writeJSON(w, http.StatusOK, chore.DailyStats(assigneeID, logs, asOf))
}

// Monthly handles GET /api/stats/monthly/{assignee}.
func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	assigneeID, asOf, ok := h.statsParams(w, r)
	if !ok {
		return
	}

	logs, err := h.chores.LoadAll()
	if err != nil {
		h.logger.Error("load chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load chores")
		return
	}

	writeJSON(w, http.StatusOK, chore.MonthlyStats(assigneeID, logs, asOf))
}

func (h *StatsHandler) statsParams(w http.ResponseWriter, r *http.Request) (string, time.Time, bool) {
	assigneeID := r.PathValue("assignee")

	a, err := h.assignees.GetByID(assigneeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get assignee")
		return "", time.Time{}, false
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "assignee not found")
		return "", time.Time{}, false
	}

	asOf := h.now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, asOf.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return "", time.Time{}, false
		}
		asOf = parsed
	}
	return assigneeID, asOf, true
}

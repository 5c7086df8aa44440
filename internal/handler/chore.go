package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rjohnstone/chorewheel/internal/chore"
	"github.com/rjohnstone/chorewheel/internal/model"
	"github.com/rjohnstone/chorewheel/internal/schedule"
	"github.com/rjohnstone/chorewheel/internal/store"
	"github.com/rjohnstone/chorewheel/internal/websocket"
)

type ChoreHandler struct {
	chores    *store.ChoreStore
	assignees *store.AssigneeStore
	hub       *websocket.Hub
	logger    *slog.Logger
	now       func() time.Time
}

func NewChoreHandler(cs *store.ChoreStore, as *store.AssigneeStore, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{
		chores:    cs,
		assignees: as,
		hub:       hub,
		logger:    logger,
		now:       time.Now,
	}
}

// choreResponse is a chore plus its computed due state.
type choreResponse struct {
	model.Chore
	Subtasks   []model.Subtask  `json:"subtasks"`
	RuleText   string           `json:"rule_text"`
	Evaluation chore.Evaluation `json:"evaluation"`
}

func (h *ChoreHandler) respond(cl chore.ChoreLog) (choreResponse, error) {
	ev, err := chore.Evaluate(cl, h.now())
	if err != nil {
		return choreResponse{}, err
	}
	ruleText := ""
	if rule, err := schedule.Parse(cl.Chore.RecurrenceRule); err == nil {
		ruleText = rule.Describe()
	}
	subtasks := cl.Subtasks
	if subtasks == nil {
		subtasks = []model.Subtask{}
	}
	return choreResponse{Chore: cl.Chore, Subtasks: subtasks, RuleText: ruleText, Evaluation: ev}, nil
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.chores.LoadAll()
	if err != nil {
		h.logger.Error("load chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}

	responses := make([]choreResponse, 0, len(logs))
	for _, cl := range logs {
		resp, err := h.respond(cl)
		if err != nil {
			// A stored rule that no longer parses shouldn't hide the rest
			// of the board.
			h.logger.Warn("evaluate chore", "chore", cl.Chore.ID, "error", err)
			continue
		}
		responses = append(responses, resp)
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	cl, err := h.chores.Load(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if cl == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	resp, err := h.respond(*cl)
	if err != nil {
		h.logger.Error("evaluate chore", "chore", cl.Chore.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to evaluate chore")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type choreRequest struct {
	Name            string   `json:"name"`
	Icon            string   `json:"icon"`
	Priority        string   `json:"priority"`
	DurationMinutes int      `json:"duration_minutes"`
	Description     string   `json:"description"`
	RecurrenceRule  string   `json:"recurrence_rule"`
	AssignedTo      string   `json:"assigned_to"`
	AlternateWith   *string  `json:"alternate_with"`
	NotifyWhenDue   bool     `json:"notify_when_due"`
	Subtasks        []string `json:"subtasks"`
	CompletionType  string   `json:"subtasks_completion_type"`
	StreakType      string   `json:"subtasks_streak_type"`
	Period          string   `json:"subtasks_period"`
}

// buildChore validates the request and maps it onto a model.Chore.
func (h *ChoreHandler) buildChore(req choreRequest) (model.Chore, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return model.Chore{}, "name is required", nil
	}

	if _, err := schedule.Parse(req.RecurrenceRule); err != nil {
		if errors.Is(err, schedule.ErrInvalidRule) {
			return model.Chore{}, err.Error(), nil
		}
		return model.Chore{}, "", err
	}

	priority := model.PriorityMedium
	switch req.Priority {
	case "", string(model.PriorityMedium):
	case string(model.PriorityLow):
		priority = model.PriorityLow
	case string(model.PriorityHigh):
		priority = model.PriorityHigh
	default:
		return model.Chore{}, "priority must be low, medium, or high", nil
	}

	if req.AssignedTo == "" {
		req.AssignedTo = model.AssigneeAnyone
	}
	if req.AssignedTo != model.AssigneeAnyone {
		a, err := h.assignees.GetByID(req.AssignedTo)
		if err != nil {
			return model.Chore{}, "", err
		}
		if a == nil {
			return model.Chore{}, "assigned_to must be an existing assignee", nil
		}
	}
	if req.AlternateWith != nil {
		if *req.AlternateWith == model.AssigneeAnyone {
			return model.Chore{}, `alternate_with cannot be "anyone"`, nil
		}
		a, err := h.assignees.GetByID(*req.AlternateWith)
		if err != nil {
			return model.Chore{}, "", err
		}
		if a == nil {
			return model.Chore{}, "alternate_with must be an existing assignee", nil
		}
	}

	var policy *model.SubtaskPolicy
	if len(req.Subtasks) > 0 || req.CompletionType != "" || req.StreakType != "" || req.Period != "" {
		p := model.SubtaskPolicy{
			CompletionType: model.CompletionAll,
			StreakType:     model.StreakPeriod,
			Period:         model.PeriodWeek,
		}
		switch req.CompletionType {
		case "", string(model.CompletionAll):
		case string(model.CompletionAny):
			p.CompletionType = model.CompletionAny
		default:
			return model.Chore{}, "subtasks_completion_type must be all or any", nil
		}
		switch req.StreakType {
		case "", string(model.StreakPeriod):
		case string(model.StreakDaily):
			p.StreakType = model.StreakDaily
		default:
			return model.Chore{}, "subtasks_streak_type must be period or daily", nil
		}
		switch req.Period {
		case "", string(model.PeriodWeek):
		case string(model.PeriodDay):
			p.Period = model.PeriodDay
		case string(model.PeriodMonth):
			p.Period = model.PeriodMonth
		default:
			return model.Chore{}, "subtasks_period must be day, week, or month", nil
		}
		policy = &p
	}

	return model.Chore{
		Name:            req.Name,
		Icon:            req.Icon,
		Priority:        priority,
		DurationMinutes: req.DurationMinutes,
		Description:     req.Description,
		RecurrenceRule:  req.RecurrenceRule,
		AssignedTo:      req.AssignedTo,
		AlternateWith:   req.AlternateWith,
		NotifyWhenDue:   req.NotifyWhenDue,
		SubtaskPolicy:   policy,
	}, "", nil
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	c, badReq, err := h.buildChore(req)
	if err != nil {
		h.logger.Error("validate chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create chore")
		return
	}
	if badReq != "" {
		writeError(w, http.StatusBadRequest, badReq)
		return
	}

	c.ID = uuid.NewString()
	created, err := h.chores.Create(c)
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create chore")
		return
	}

	if len(req.Subtasks) > 0 {
		if _, err := h.chores.ReplaceSubtasks(created.ID, req.Subtasks); err != nil {
			h.logger.Error("create subtasks", "chore", created.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create subtasks")
			return
		}
	}

	cl, err := h.chores.Load(created.ID)
	if err != nil || cl == nil {
		writeError(w, http.StatusInternalServerError, "failed to load chore")
		return
	}
	resp, err := h.respond(*cl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to evaluate chore")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("chore", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, resp)
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	c, badReq, err := h.buildChore(req)
	if err != nil {
		h.logger.Error("validate chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update chore")
		return
	}
	if badReq != "" {
		writeError(w, http.StatusBadRequest, badReq)
		return
	}

	c.ID = id
	if _, err := h.chores.Update(c); err != nil {
		h.logger.Error("update chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update chore")
		return
	}

	if _, err := h.chores.ReplaceSubtasks(id, req.Subtasks); err != nil {
		h.logger.Error("update subtasks", "chore", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update subtasks")
		return
	}

	cl, err := h.chores.Load(id)
	if err != nil || cl == nil {
		writeError(w, http.StatusInternalServerError, "failed to load chore")
		return
	}
	resp, err := h.respond(*cl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to evaluate chore")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("chore", "updated", id, nil))
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	if err := h.chores.Delete(id); err != nil {
		h.logger.Error("delete chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete chore")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("chore", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// checkCompleter validates the done_by field shared by the completion
// endpoints. "anyone" is a valid assignment target but never a completer:
// completion records feed rotation and stats, which need a real person.
func (h *ChoreHandler) checkCompleter(doneBy string) (string, error) {
	if doneBy == "" {
		return "done_by is required", nil
	}
	if doneBy == model.AssigneeAnyone {
		return `done_by cannot be "anyone"`, nil
	}
	a, err := h.assignees.GetByID(doneBy)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "done_by must be an existing assignee", nil
	}
	return "", nil
}

func (h *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	var req struct {
		DoneBy string `json:"done_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	badReq, err := h.checkCompleter(req.DoneBy)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check completer")
		return
	}
	if badReq != "" {
		writeError(w, http.StatusBadRequest, badReq)
		return
	}

	if _, err := h.chores.CreateCompletion(id, nil, req.DoneBy, h.now()); err != nil {
		h.logger.Error("create completion", "chore", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record completion")
		return
	}

	cl, err := h.chores.Load(id)
	if err != nil || cl == nil {
		writeError(w, http.StatusInternalServerError, "failed to load chore")
		return
	}
	resp, err := h.respond(*cl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to evaluate chore")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("chore", "completed", id, map[string]any{"done_by": req.DoneBy}))
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChoreHandler) CompleteSubtask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	subtaskID, err := strconv.ParseInt(r.PathValue("subtaskID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subtask id")
		return
	}

	subtask, err := h.chores.GetSubtask(subtaskID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get subtask")
		return
	}
	if subtask == nil || subtask.ChoreID != id {
		writeError(w, http.StatusNotFound, "subtask not found")
		return
	}

	var req struct {
		DoneBy string `json:"done_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	badReq, err := h.checkCompleter(req.DoneBy)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check completer")
		return
	}
	if badReq != "" {
		writeError(w, http.StatusBadRequest, badReq)
		return
	}

	if _, err := h.chores.CreateCompletion(id, &subtaskID, req.DoneBy, h.now()); err != nil {
		h.logger.Error("create subtask completion", "chore", id, "subtask", subtaskID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record completion")
		return
	}

	cl, err := h.chores.Load(id)
	if err != nil || cl == nil {
		writeError(w, http.StatusInternalServerError, "failed to load chore")
		return
	}
	resp, err := h.respond(*cl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to evaluate chore")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("subtask", "completed", id, map[string]any{
		"subtask_id": subtaskID,
		"done_by":    req.DoneBy,
	}))
	writeJSON(w, http.StatusOK, resp)
}

// UndoComplete removes the chore's most recent whole-chore completion.
func (h *ChoreHandler) UndoComplete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	removed, err := h.chores.DeleteLastCompletion(id)
	if err != nil {
		h.logger.Error("undo completion", "chore", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to undo completion")
		return
	}
	if !removed {
		writeError(w, http.StatusConflict, "no completion to undo")
		return
	}

	cl, err := h.chores.Load(id)
	if err != nil || cl == nil {
		writeError(w, http.StatusInternalServerError, "failed to load chore")
		return
	}
	resp, err := h.respond(*cl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to evaluate chore")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("chore", "uncompleted", id, nil))
	writeJSON(w, http.StatusOK, resp)
}

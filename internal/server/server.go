package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rjohnstone/chorewheel/internal/handler"
	"github.com/rjohnstone/chorewheel/internal/middleware"
	"github.com/rjohnstone/chorewheel/internal/push"
	"github.com/rjohnstone/chorewheel/internal/store"
	ws "github.com/rjohnstone/chorewheel/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	assigneeH     *handler.AssigneeHandler
	choreH        *handler.ChoreHandler
	statsH        *handler.StatsHandler
	settingsH     *handler.SettingsHandler
	pushH         *handler.PushHandler
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	pushService   *push.Service
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, pushSvc *push.Service, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	assigneeStore := store.NewAssigneeStore(db)
	choreStore := store.NewChoreStore(db)
	settingsStore := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)

	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if pushSvc != nil {
		pushLogger := logger.With("component", "push")
		pushSched = push.NewScheduler(pushSvc, pushStore, choreStore, settingsStore, pushLogger)
		pushH = handler.NewPushHandler(pushStore, assigneeStore, pushSvc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:            db,
		hub:           hub,
		assigneeH:     handler.NewAssigneeHandler(assigneeStore, hub, logger.With("component", "assignee")),
		choreH:        handler.NewChoreHandler(choreStore, assigneeStore, hub, logger.With("component", "chore")),
		statsH:        handler.NewStatsHandler(choreStore, assigneeStore, logger.With("component", "stats")),
		settingsH:     handler.NewSettingsHandler(settingsStore, logger.With("component", "settings")),
		pushH:         pushH,
		pushStore:     pushStore,
		rateLimiter:   middleware.NewRateLimiter(),
		pushService:   pushSvc,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// PushScheduler returns the notification scheduler, or nil when push is
// not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Assignee API routes
	mux.HandleFunc("GET /api/assignees", s.assigneeH.List)
	mux.HandleFunc("POST /api/assignees", s.assigneeH.Create)
	mux.HandleFunc("PUT /api/assignees/{id}", s.assigneeH.Update)
	mux.HandleFunc("DELETE /api/assignees/{id}", s.assigneeH.Delete)
	mux.HandleFunc("PUT /api/assignees/sort", s.assigneeH.UpdateSortOrder)

	// PIN routes. Verification is rate limited to slow down guessing.
	mux.HandleFunc("POST /api/assignees/{id}/pin", s.assigneeH.SetPIN)
	mux.HandleFunc("DELETE /api/assignees/{id}/pin", s.assigneeH.ClearPIN)
	mux.HandleFunc("POST /api/assignees/{id}/pin/verify", s.rateLimitedHandler(s.assigneeH.VerifyPIN))

	// Chore API routes
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("GET /api/chores/{id}", s.choreH.Get)
	mux.HandleFunc("PUT /api/chores/{id}", s.choreH.Update)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)
	mux.HandleFunc("POST /api/chores/{id}/complete", s.choreH.Complete)
	mux.HandleFunc("POST /api/chores/{id}/subtasks/{subtaskID}/complete", s.choreH.CompleteSubtask)
	mux.HandleFunc("POST /api/chores/{id}/undo", s.choreH.UndoComplete)

	// Stats API routes
	mux.HandleFunc("GET /api/stats/daily/{assignee}", s.statsH.Daily)
	mux.HandleFunc("GET /api/stats/monthly/{assignee}", s.statsH.Monthly)

	// Settings API routes
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions/{assignee}", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// WebSocket
	mux.HandleFunc("GET /api/ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

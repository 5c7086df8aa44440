package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/rjohnstone/chorewheel/internal/chore"
	"github.com/rjohnstone/chorewheel/internal/model"
	"github.com/rjohnstone/chorewheel/internal/store"
)

// DefaultNotifyHour is the local hour the daily due summary goes out when no
// notify_hour setting is stored.
const DefaultNotifyHour = 8

// Scheduler sends each assignee one push summary per day listing their due
// and overdue chores. A notification_log row per assignee per day keeps
// restarts and overlapping ticks from double-sending.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	chores   *store.ChoreStore
	settings *store.SettingsStore
	log      *slog.Logger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(svc *Service, pushStore *store.PushStore, choreStore *store.ChoreStore, settingsStore *store.SettingsStore, log *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		push:     pushStore,
		chores:   choreStore,
		settings: settingsStore,
		log:      log,
		interval: 60 * time.Second,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	if now.Hour() < s.notifyHour() {
		return
	}
	s.sendDueSummaries(now)
}

func (s *Scheduler) notifyHour() int {
	v, err := s.settings.Get(store.SettingNotifyHour)
	if err != nil || v == "" {
		return DefaultNotifyHour
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 23 {
		return DefaultNotifyHour
	}
	return h
}

// sendDueSummaries evaluates every chore once and fans the results out to the
// assignees that have subscriptions. Chores assigned to no one in particular
// land in everyone's summary.
func (s *Scheduler) sendDueSummaries(now time.Time) {
	subs, err := s.push.ListAll()
	if err != nil {
		s.log.Error("list subscriptions", "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	logs, err := s.chores.LoadAll()
	if err != nil {
		s.log.Error("load chores", "error", err)
		return
	}

	dueByAssignee := make(map[string][]string)
	var dueForAnyone []string
	for _, cl := range logs {
		if !cl.Chore.NotifyWhenDue {
			continue
		}
		ev, err := chore.Evaluate(cl, now)
		if err != nil {
			s.log.Warn("evaluate chore", "chore", cl.Chore.ID, "error", err)
			continue
		}
		if ev.Status != chore.StatusDueToday && ev.Status != chore.StatusOverdue {
			continue
		}
		if ev.CurrentAssignee == model.AssigneeAnyone {
			dueForAnyone = append(dueForAnyone, cl.Chore.Name)
		} else {
			dueByAssignee[ev.CurrentAssignee] = append(dueByAssignee[ev.CurrentAssignee], cl.Chore.Name)
		}
	}

	subsByAssignee := make(map[string][]model.PushSubscription)
	for _, sub := range subs {
		subsByAssignee[sub.AssigneeID] = append(subsByAssignee[sub.AssigneeID], sub)
	}

	day := now.Format("2006-01-02")
	for assigneeID, assigneeSubs := range subsByAssignee {
		names := append(dueByAssignee[assigneeID], dueForAnyone...)
		if len(names) == 0 {
			continue
		}

		first, err := s.push.RecordNotified(assigneeID, day)
		if err != nil {
			s.log.Error("record notification", "assignee", assigneeID, "error", err)
			continue
		}
		if !first {
			continue
		}

		body := fmt.Sprintf("You have %d chores due today", len(names))
		if len(names) == 1 {
			body = fmt.Sprintf("Chore due today: %s", names[0])
		}
		payload := Payload{
			Title: "Chores Due",
			Body:  body,
			URL:   "/",
			Tag:   "due-" + day,
		}

		for i := range assigneeSubs {
			sub := &assigneeSubs[i]
			if err := s.service.Send(sub, payload); err != nil {
				if errors.Is(err, ErrExpired) {
					s.push.DeleteByEndpoint(sub.Endpoint)
				} else {
					s.log.Error("send due summary", "assignee", assigneeID, "error", err)
				}
			}
		}
	}

	// Dedupe rows older than a week are dead weight.
	cutoff := now.AddDate(0, 0, -7).Format("2006-01-02")
	if err := s.push.CleanupNotificationLog(cutoff); err != nil {
		s.log.Warn("cleanup notification log", "error", err)
	}
}

package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fernwood/nestling/internal/model"
	"github.com/fernwood/nestling/internal/store"
)

const sentRetention = 30 * 24 * time.Hour

// Scheduler periodically checks each family for reminder conditions and
// sends push notifications for them.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	families *store.FamilyStore
	babies   *store.BabyStore
	sleeps   *store.SleepStore
	feeds    *store.FeedStore
	settings *store.SettingsStore
	logger   *slog.Logger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, familyStore *store.FamilyStore, babyStore *store.BabyStore, sleepStore *store.SleepStore, feedStore *store.FeedStore, settingsStore *store.SettingsStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		push:     pushStore,
		families: familyStore,
		babies:   babyStore,
		sleeps:   sleepStore,
		feeds:    feedStore,
		settings: settingsStore,
		logger:   logger,
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
				s.tick()
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

func (s *Scheduler) tick() {
	familyIDs, err := s.families.ListIDs()
	if err != nil {
		s.logger.Error("list families", "error", err)
		return
	}

	for _, fid := range familyIDs {
		s.checkFamily(fid)
	}

	// Hourly bookkeeping: drop dedupe records past retention.
	if time.Now().UTC().Minute() == 0 {
		if _, err := s.push.PruneSent(time.Now().UTC().Add(-sentRetention)); err != nil {
			s.logger.Error("prune sent notifications", "error", err)
		}
	}
}

func (s *Scheduler) checkFamily(familyID string) {
	settings, err := s.settings.GetByFamily(familyID)
	if err != nil {
		s.logger.Error("load settings", "familyId", familyID, "error", err)
		return
	}

	babies, err := s.babies.List(familyID)
	if err != nil {
		s.logger.Error("list babies", "familyId", familyID, "error", err)
		return
	}

	for i := range babies {
		s.checkOpenSleep(familyID, &babies[i], settings)
		s.checkFeedGap(familyID, &babies[i], settings)
	}
}

// checkOpenSleep alerts when a sleep session has been open longer than the
// configured threshold, typically a forgotten stop. One alert per session.
func (s *Scheduler) checkOpenSleep(familyID string, baby *model.Baby, settings *model.Settings) {
	if settings.OpenSleepAlertHours <= 0 {
		return
	}

	session, err := s.sleeps.OpenSession(baby.ID)
	if err != nil {
		s.logger.Error("open sleep session", "babyId", baby.ID, "error", err)
		return
	}
	if session == nil {
		return
	}

	age := time.Since(session.StartTime)
	threshold := time.Duration(settings.OpenSleepAlertHours) * time.Hour
	if age < threshold {
		return
	}

	refID := fmt.Sprintf("sleep-%s", session.ID)
	sent, err := s.push.WasSent(familyID, model.NotifTypeOpenSleep, refID)
	if err != nil {
		s.logger.Error("check sent", "refId", refID, "error", err)
		return
	}
	if sent {
		return
	}

	s.broadcast(familyID, Payload{
		Title: "Sleep still running",
		Body:  fmt.Sprintf("%s's sleep session has been open for %d hours", baby.FirstName, int(age.Hours())),
		URL:   "/sleep",
		Tag:   refID,
	})
}

// checkFeedGap alerts when too long has passed since the baby's last feed.
// The dedupe key includes the last feed time so a new feed re-arms the alert.
func (s *Scheduler) checkFeedGap(familyID string, baby *model.Baby, settings *model.Settings) {
	if settings.FeedGapMinutes <= 0 {
		return
	}

	last, err := s.feeds.LastFeedTime(baby.ID)
	if err != nil {
		s.logger.Error("last feed time", "babyId", baby.ID, "error", err)
		return
	}
	if last.IsZero() {
		return
	}

	gap := time.Since(last)
	threshold := time.Duration(settings.FeedGapMinutes) * time.Minute
	if gap < threshold {
		return
	}

	refID := fmt.Sprintf("feed-%s-%d", baby.ID, last.Unix())
	sent, err := s.push.WasSent(familyID, model.NotifTypeFeedGap, refID)
	if err != nil {
		s.logger.Error("check sent", "refId", refID, "error", err)
		return
	}
	if sent {
		return
	}

	s.broadcast(familyID, Payload{
		Title: "Feeding reminder",
		Body:  fmt.Sprintf("%s hasn't been fed in %d minutes", baby.FirstName, int(gap.Minutes())),
		URL:   "/feed",
		Tag:   refID,
	})
}

// broadcast sends the payload to every subscription in the family, dropping
// subscriptions the push service reports as gone.
func (s *Scheduler) broadcast(familyID string, payload Payload) {
	subs, err := s.push.ListByFamily(familyID)
	if err != nil {
		s.logger.Error("list subscriptions", "familyId", familyID, "error", err)
		return
	}

	for i := range subs {
		if err := s.service.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := s.push.Delete(subs[i].ID); err != nil {
					s.logger.Error("delete expired subscription", "id", subs[i].ID, "error", err)
				}
			} else {
				s.logger.Error("send push", "endpoint", subs[i].Endpoint, "error", err)
			}
		}
	}
}

package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/backup"
	"github.com/fernwood/nestling/internal/handler"
	"github.com/fernwood/nestling/internal/middleware"
	"github.com/fernwood/nestling/internal/push"
	"github.com/fernwood/nestling/internal/store"
	ws "github.com/fernwood/nestling/internal/websocket"
)

// Config carries the wiring knobs main reads from the environment.
type Config struct {
	JWTSecret       []byte
	TokenTTL        time.Duration
	Backup          backup.Config
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	babyH         *handler.BabyHandler
	sleepH        *handler.SleepHandler
	feedH         *handler.FeedHandler
	diaperH       *handler.DiaperHandler
	noteH         *handler.NoteHandler
	bathH         *handler.BathHandler
	milestoneH    *handler.MilestoneHandler
	timelineH     *handler.TimelineHandler
	statsH        *handler.StatsHandler
	settingsH     *handler.SettingsHandler
	caretakerH    *handler.CaretakerHandler
	authH         *handler.AuthHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	issuer        *auth.TokenIssuer
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	babyStore := store.NewBabyStore(db)
	sleepStore := store.NewSleepStore(db)
	feedStore := store.NewFeedStore(db)
	diaperStore := store.NewDiaperStore(db)
	noteStore := store.NewNoteStore(db)
	bathStore := store.NewBathStore(db)
	milestoneStore := store.NewMilestoneStore(db)
	settingsStore := store.NewSettingsStore(db)
	familyStore := store.NewFamilyStore(db)
	caretakerStore := store.NewCaretakerStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	source := &handler.ActivitySource{
		Sleep:     sleepStore,
		Feed:      feedStore,
		Diaper:    diaperStore,
		Note:      noteStore,
		Bath:      bathStore,
		Milestone: milestoneStore,
	}

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, func(s backup.Status) {
		hub.Broadcast("", ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
		})
	}, logger.With("component", "backup"))

	// Reminders only run when VAPID keys are configured.
	var pushSched *push.Scheduler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, familyStore, babyStore, sleepStore, feedStore, settingsStore, logger.With("component", "push"))
	}

	return &Server{
		db:            db,
		hub:           hub,
		babyH:         handler.NewBabyHandler(babyStore, settingsStore, hub, logger.With("component", "baby")),
		sleepH:        handler.NewSleepHandler(sleepStore, babyStore, settingsStore, hub, logger.With("component", "sleep")),
		feedH:         handler.NewFeedHandler(feedStore, babyStore, settingsStore, hub, logger.With("component", "feed")),
		diaperH:       handler.NewDiaperHandler(diaperStore, babyStore, settingsStore, hub, logger.With("component", "diaper")),
		noteH:         handler.NewNoteHandler(noteStore, babyStore, settingsStore, hub, logger.With("component", "note")),
		bathH:         handler.NewBathHandler(bathStore, babyStore, settingsStore, hub, logger.With("component", "bath")),
		milestoneH:    handler.NewMilestoneHandler(milestoneStore, babyStore, settingsStore, hub, logger.With("component", "milestone")),
		timelineH:     handler.NewTimelineHandler(source, babyStore, settingsStore, logger.With("component", "timeline")),
		statsH:        handler.NewStatsHandler(source, babyStore, settingsStore, logger.With("component", "stats")),
		settingsH:     handler.NewSettingsHandler(settingsStore, hub, logger.With("component", "settings")),
		caretakerH:    handler.NewCaretakerHandler(caretakerStore, logger.With("component", "caretaker")),
		authH:         handler.NewAuthHandler(caretakerStore, issuer, logger.With("component", "auth")),
		pushH:         handler.NewPushHandler(pushStore, cfg.VAPIDPublicKey, logger.With("component", "push_handler")),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		issuer:        issuer,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// BackupManager returns the backup manager for lifecycle control.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the reminder scheduler, nil when VAPID keys are absent.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.issuer)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
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

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Log resources share a query-param shape: ?id= for a single record,
	// ?babyId=&startDate=&endDate= for ranges.
	mux.HandleFunc("GET /api/baby", s.babyH.Get)
	mux.HandleFunc("POST /api/baby", s.babyH.Create)
	mux.HandleFunc("PUT /api/baby", s.babyH.Update)
	mux.HandleFunc("DELETE /api/baby", s.babyH.Delete)

	mux.HandleFunc("GET /api/sleep-log", s.sleepH.Get)
	mux.HandleFunc("GET /api/sleep-log/open", s.sleepH.Open)
	mux.HandleFunc("POST /api/sleep-log", s.sleepH.Create)
	mux.HandleFunc("PUT /api/sleep-log", s.sleepH.Update)
	mux.HandleFunc("DELETE /api/sleep-log", s.sleepH.Delete)

	mux.HandleFunc("GET /api/feed-log", s.feedH.Get)
	mux.HandleFunc("POST /api/feed-log", s.feedH.Create)
	mux.HandleFunc("PUT /api/feed-log", s.feedH.Update)
	mux.HandleFunc("DELETE /api/feed-log", s.feedH.Delete)

	mux.HandleFunc("GET /api/diaper-log", s.diaperH.Get)
	mux.HandleFunc("POST /api/diaper-log", s.diaperH.Create)
	mux.HandleFunc("PUT /api/diaper-log", s.diaperH.Update)
	mux.HandleFunc("DELETE /api/diaper-log", s.diaperH.Delete)

	mux.HandleFunc("GET /api/note", s.noteH.Get)
	mux.HandleFunc("POST /api/note", s.noteH.Create)
	mux.HandleFunc("PUT /api/note", s.noteH.Update)
	mux.HandleFunc("DELETE /api/note", s.noteH.Delete)

	mux.HandleFunc("GET /api/bath-log", s.bathH.Get)
	mux.HandleFunc("POST /api/bath-log", s.bathH.Create)
	mux.HandleFunc("PUT /api/bath-log", s.bathH.Update)
	mux.HandleFunc("DELETE /api/bath-log", s.bathH.Delete)

	mux.HandleFunc("GET /api/milestone", s.milestoneH.Get)
	mux.HandleFunc("POST /api/milestone", s.milestoneH.Create)
	mux.HandleFunc("PUT /api/milestone", s.milestoneH.Update)
	mux.HandleFunc("DELETE /api/milestone", s.milestoneH.Delete)

	// Aggregates
	mux.HandleFunc("GET /api/timeline", s.timelineH.Get)
	mux.HandleFunc("GET /api/daily-stats", s.statsH.Get)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	// Caretakers; destructive operations are parent-only
	mux.HandleFunc("GET /api/caretakers", s.caretakerH.List)
	mux.Handle("POST /api/caretakers", middleware.RequireParent(http.HandlerFunc(s.caretakerH.Create)))
	mux.HandleFunc("PUT /api/caretakers/pin", s.caretakerH.SetPIN)
	mux.Handle("DELETE /api/caretakers", middleware.RequireParent(http.HandlerFunc(s.caretakerH.Delete)))

	// Push subscriptions
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.PublicKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.List)
	mux.HandleFunc("DELETE /api/push/subscriptions", s.pushH.Unsubscribe)

	// Backups
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.Handle("POST /api/backups", middleware.RequireParent(http.HandlerFunc(s.backupH.Run)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}

package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fernwood/nestling/internal/backup"
	"github.com/fernwood/nestling/internal/database"
	"github.com/fernwood/nestling/internal/logging"
	"github.com/fernwood/nestling/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("NESTLING_LOG_LEVEL"), os.Getenv("NESTLING_LOG_FORMAT"))

	if tz := os.Getenv("NESTLING_TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("invalid NESTLING_TZ: %v", err)
		}
		time.Local = loc
	}

	port := os.Getenv("NESTLING_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("NESTLING_DB_PATH")
	if dbPath == "" {
		dbPath = "nestling.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	secret := []byte(os.Getenv("NESTLING_JWT_SECRET"))
	if len(secret) == 0 {
		// Random per-process secret: logins survive until the next restart.
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("failed to generate JWT secret: %v", err)
		}
		logger.Warn("NESTLING_JWT_SECRET not set, using an ephemeral secret; sessions will not survive restarts")
	}

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("NESTLING_S3_ENDPOINT"),
			Bucket:    os.Getenv("NESTLING_S3_BUCKET"),
			Region:    os.Getenv("NESTLING_S3_REGION"),
			AccessKey: os.Getenv("NESTLING_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("NESTLING_S3_SECRET_KEY"),
		},
		DBPath:     dbPath,
		Passphrase: os.Getenv("NESTLING_BACKUP_PASSPHRASE"),
		Interval:   24 * time.Hour,
	}
	if v := os.Getenv("NESTLING_BACKUP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid NESTLING_BACKUP_INTERVAL: %v", err)
		}
		backupCfg.Interval = d
	}

	srv := server.New(db, server.Config{
		JWTSecret:       secret,
		Backup:          backupCfg,
		VAPIDPublicKey:  os.Getenv("NESTLING_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("NESTLING_VAPID_PRIVATE_KEY"),
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if srv.BackupManager().Enabled() {
		srv.BackupManager().Start(ctx)
		defer srv.BackupManager().Stop()
	}

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	}

	// Periodically drop stale rate-limit entries.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Nestling running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

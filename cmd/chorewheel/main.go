package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rjohnstone/chorewheel/internal/database"
	"github.com/rjohnstone/chorewheel/internal/logging"
	"github.com/rjohnstone/chorewheel/internal/push"
	"github.com/rjohnstone/chorewheel/internal/server"
	"github.com/rjohnstone/chorewheel/internal/store"
)

func main() {
	port := os.Getenv("CHOREWHEEL_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CHOREWHEEL_DB_PATH")
	if dbPath == "" {
		dbPath = "chorewheel.db"
	}

	logger := logging.Setup(os.Getenv("CHOREWHEEL_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	pushSvc, err := setupPush(db)
	if err != nil {
		log.Fatalf("failed to set up push notifications: %v", err)
	}

	srv := server.New(db, pushSvc, logger)

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(context.Background())
		defer sched.Stop()
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Chorewheel running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// setupPush loads the VAPID key pair from settings, generating and
// persisting a fresh pair on first run. Key rotation would invalidate
// every existing subscription, so once stored the pair is reused.
func setupPush(db *sql.DB) (*push.Service, error) {
	settings := store.NewSettingsStore(db)

	pub, err := settings.Get(store.SettingVAPIDPublicKey)
	if err != nil {
		return nil, err
	}
	priv, err := settings.Get(store.SettingVAPIDPrivateKey)
	if err != nil {
		return nil, err
	}

	if pub == "" || priv == "" {
		pub, priv, err = push.GenerateVAPIDKeys()
		if err != nil {
			return nil, err
		}
		if err := settings.Set(store.SettingVAPIDPublicKey, pub); err != nil {
			return nil, err
		}
		if err := settings.Set(store.SettingVAPIDPrivateKey, priv); err != nil {
			return nil, err
		}
	}

	return push.NewService(pub, priv), nil
}

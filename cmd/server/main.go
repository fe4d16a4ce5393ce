package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/cardduel/draft-backend/internal/config"
	"github.com/cardduel/draft-backend/internal/httpapi"
	"github.com/cardduel/draft-backend/internal/hub"
	"github.com/cardduel/draft-backend/internal/session"
	"github.com/cardduel/draft-backend/internal/store"
)

func main() {
	cfg := config.Load()

	log := newLogger(cfg.Env)
	defer log.Sync()

	st, err := newStore(cfg, log)
	if err != nil {
		log.Fatal("store init failed", zap.Error(err))
	}

	h := hub.New(log)
	svc := session.NewService(st, h, clockwork.NewRealClock(), log, cfg.PickTimerSec)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.SetupRoutes(svc, h, log),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	svc.Timers().Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	if env == "production" {
		log, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return log
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return log
}

func newStore(cfg config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory store")
		return store.NewMemory(), nil
	}
	log.Info("using postgres store")
	return store.NewPostgres(cfg.DatabaseURL)
}

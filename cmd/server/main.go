package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/SkillGG/bossDungeon/internal/config"
	"github.com/SkillGG/bossDungeon/internal/httpapi"
	"github.com/SkillGG/bossDungeon/internal/journal"
	"github.com/SkillGG/bossDungeon/internal/logging"
	"github.com/SkillGG/bossDungeon/internal/room"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		rec    journal.Recorder = journal.Nop{}
		reader httpapi.JournalReader
	)
	if cfg.Journal.DSN != "" {
		store, err := journal.Open(cfg.Journal.DSN)
		if err != nil {
			logger.Fatal("failed to open journal", zap.Error(err))
		}
		defer store.Close()
		rec, reader = store, store
		logger.Info("phase journal enabled")
	}
	jr := journal.NewAsync(rec, cfg.Journal.QueueSize, logger.Named("journal"))

	// One room per process; transports get it injected.
	rm := room.New(ctx, cfg.Room, room.WithLogger(logger), room.WithJournal(jr))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpapi.SetupRoutes(rm, reader, cfg.Transport, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		// streams end when the process is told to stop
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("listening", zap.String("addr", server.Addr), zap.Int("room_size", cfg.Room.Size))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Room first so open streams see their countdowns terminate.
	rm.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced shutdown", zap.Error(err))
	}
	if err := jr.Close(shutdownCtx); err != nil {
		logger.Warn("journal drain", zap.Error(err))
	}
	logger.Info("stopped")
}

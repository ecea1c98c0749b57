// Package sse streams room events to a browser over server-sent events.
package sse

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SkillGG/bossDungeon/internal/conn"
	"github.com/SkillGG/bossDungeon/internal/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Room is the part of the room a push stream needs.
type Room interface {
	Join(ctx context.Context, playerID string, c *conn.Connection) error
	Disconnect(ctx context.Context, playerID string, c *conn.Connection) error
}

type Options struct {
	OutboxSize int
	KeepAlive  time.Duration
	// Retry is the reconnect delay suggested to the browser.
	Retry  time.Duration
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.OutboxSize <= 0 {
		o.OutboxSize = 64
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = 15 * time.Second
	}
	if o.Retry <= 0 {
		o.Retry = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Handler serves GET /enter/{playerID}.
func Handler(rm Room, o Options) http.HandlerFunc {
	o = o.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")
		if err := types.ValidatePlayerID(playerID); err != nil {
			http.Error(w, types.PublicMessage(err), http.StatusBadRequest)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		log := o.Logger.With(zap.String("player", playerID), zap.String("transport", "sse"))

		c := conn.New(playerID)
		out := conn.Attach(c, o.OutboxSize, log)
		if err := rm.Join(r.Context(), playerID, c); err != nil {
			out.Close()
			log.Info("join rejected", zap.Error(err))
			http.Error(w, types.PublicMessage(err), types.HTTPStatus(err))
			return
		}
		defer func() {
			c.Close()
			out.Close()
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
			defer cancel()
			if err := rm.Disconnect(ctx, playerID, c); err != nil {
				log.Warn("disconnect", zap.Error(err))
			}
			log.Info("stream closed")
		}()

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "retry: %d\n\n", o.Retry.Milliseconds())
		flusher.Flush()

		keepAlive := time.NewTicker(o.KeepAlive)
		defer keepAlive.Stop()
		for {
			select {
			case f, ok := <-out.Frames():
				if !ok {
					// dropped for falling behind
					return
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Event, f.Data); err != nil {
					return
				}
				flusher.Flush()
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	}
}

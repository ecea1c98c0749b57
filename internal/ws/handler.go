package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SkillGG/bossDungeon/internal/conn"
	"github.com/SkillGG/bossDungeon/internal/types"
	"github.com/coder/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Room is what a websocket client can do to the room.
type Room interface {
	Join(ctx context.Context, playerID string, c *conn.Connection) error
	Disconnect(ctx context.Context, playerID string, c *conn.Connection) error
	MarkReady(ctx context.Context, playerID string) error
	MarkUnready(ctx context.Context, playerID string) error
}

type Options struct {
	OutboxSize     int
	OriginPatterns []string
	KeepAlive      time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// CommandRate and CommandBurst bound in-band commands per connection.
	CommandRate  rate.Limit
	CommandBurst int
	Logger       *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.OutboxSize <= 0 {
		o.OutboxSize = 64
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = 15 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 60 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 3 * time.Second
	}
	if o.CommandRate <= 0 {
		o.CommandRate = 2
	}
	if o.CommandBurst <= 0 {
		o.CommandBurst = 5
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Handler serves GET /ws?player=ID.
func Handler(rm Room, o Options) http.HandlerFunc {
	o = o.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player")
		if err := types.ValidatePlayerID(playerID); err != nil {
			http.Error(w, types.PublicMessage(err), http.StatusBadRequest)
			return
		}
		log := o.Logger.With(zap.String("player", playerID), zap.String("transport", "ws"))

		// Upgrade before touching the room: a failed handshake never joins.
		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: o.OriginPatterns,
		})
		if err != nil {
			log.Info("websocket accept", zap.Error(err))
			return
		}
		defer ws.Close(websocket.StatusNormalClosure, "bye")

		c := conn.New(playerID)
		out := conn.Attach(c, o.OutboxSize, log)
		if err := rm.Join(r.Context(), playerID, c); err != nil {
			out.Close()
			log.Info("join rejected", zap.Error(err))
			ws.Close(closeStatus(err), types.PublicMessage(err))
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
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go writeLoop(writeCtx, ws, out, o, log)

		// Reader loop
		limiter := rate.NewLimiter(o.CommandRate, o.CommandBurst)
		for {
			ctx, cancel := context.WithTimeout(r.Context(), o.ReadTimeout)
			_, data, err := ws.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read", zap.Error(err))
				}
				return
			}

			if !limiter.Allow() {
				writeError(r.Context(), ws, o.WriteTimeout, "rate limited")
				continue
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), ws, o.WriteTimeout, "bad json")
				continue
			}

			switch cm.Type {
			case types.CmdReady:
				err = rm.MarkReady(r.Context(), playerID)
			case types.CmdUnready:
				err = rm.MarkUnready(r.Context(), playerID)
			default:
				writeError(r.Context(), ws, o.WriteTimeout, "unknown type")
				continue
			}
			if err != nil {
				writeError(r.Context(), ws, o.WriteTimeout, types.PublicMessage(err))
			}
		}
	}
}

func writeLoop(ctx context.Context, ws *websocket.Conn, out *conn.Outbox, o Options, log *zap.Logger) {
	ping := time.NewTicker(o.KeepAlive)
	defer ping.Stop()
	for {
		select {
		case f, ok := <-out.Frames():
			if !ok {
				// outbox overflowed; the reader returns once the close lands
				ws.Close(websocket.StatusPolicyViolation, "client too slow")
				return
			}
			payload, err := json.Marshal(types.ServerMessage{Event: string(f.Event), Data: f.Data})
			if err != nil {
				log.Error("encode frame", zap.Error(err))
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, o.WriteTimeout)
			err = ws.Write(wctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, o.WriteTimeout)
			err := ws.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeError(ctx context.Context, ws *websocket.Conn, timeout time.Duration, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Error: msg})
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_ = ws.Write(ctx, websocket.MessageText, payload)
}

// closeStatus picks the close code for a rejected join.
func closeStatus(err error) websocket.StatusCode {
	switch types.HTTPStatus(err) {
	case http.StatusConflict:
		return websocket.StatusPolicyViolation
	case http.StatusServiceUnavailable:
		return websocket.StatusTryAgainLater
	default:
		return websocket.StatusInternalError
	}
}

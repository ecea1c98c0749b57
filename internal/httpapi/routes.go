package httpapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/SkillGG/bossDungeon/internal/config"
	"github.com/SkillGG/bossDungeon/internal/sse"
	"github.com/SkillGG/bossDungeon/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// SetupRoutes builds the router. jr may be nil when no journal database is
// configured; /lobby/journal is then not served.
func SetupRoutes(l Lobby, jr JournalReader, tc config.TransportConfig, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: tc.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "X-Requested-With"},
		MaxAge:         86400,
	}))

	r.Get("/healthz", Healthz)

	r.Route("/lobby", func(r chi.Router) {
		r.Get("/", GetLobby(l))
		r.Get("/view", GetView(l))
		r.Post("/ready/{playerID}", SetReady(l, true, log))
		r.Post("/unready/{playerID}", SetReady(l, false, log))
		if jr != nil {
			r.Get("/journal", GetJournal(jr, log))
		}
	})

	// Push transports
	r.Get("/enter/{playerID}", sse.Handler(l, sse.Options{
		OutboxSize: tc.OutboxSize,
		KeepAlive:  tc.KeepAlive,
		Retry:      10 * time.Second,
		Logger:     log,
	}))
	r.Get("/ws", ws.Handler(l, ws.Options{
		OutboxSize:     tc.OutboxSize,
		OriginPatterns: originHosts(tc.AllowedOrigins),
		KeepAlive:      tc.KeepAlive,
		ReadTimeout:    tc.ReadTimeout,
		WriteTimeout:   tc.WriteTimeout,
		Logger:         log,
	}))
	return r
}

// originHosts turns configured origins into the host patterns the websocket
// handshake matches against.
func originHosts(origins []string) []string {
	var out []string
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		out = append(out, o)
	}
	return out
}

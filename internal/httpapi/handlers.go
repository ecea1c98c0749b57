package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/SkillGG/bossDungeon/internal/conn"
	"github.com/SkillGG/bossDungeon/internal/journal"
	"github.com/SkillGG/bossDungeon/internal/room"
	"github.com/SkillGG/bossDungeon/internal/types"
	ptypes "github.com/SkillGG/bossDungeon/pkg/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Lobby is the room as the HTTP surface sees it.
type Lobby interface {
	Join(ctx context.Context, playerID string, c *conn.Connection) error
	Disconnect(ctx context.Context, playerID string, c *conn.Connection) error
	MarkReady(ctx context.Context, playerID string) error
	MarkUnready(ctx context.Context, playerID string) error
	LobbyData(ctx context.Context) (ptypes.RoomData, error)
	View(ctx context.Context) (room.View, error)
}

// JournalReader lists recorded phase outcomes.
type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]journal.PhaseRecord, error)
}

const (
	defaultJournalLimit = 20
	maxJournalLimit     = 100
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func GetLobby(l Lobby) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd, err := l.LobbyData(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rd)
	}
}

func GetView(l Lobby) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := l.View(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// GetJournal serves GET /lobby/journal?limit=N, newest first.
func GetJournal(jr JournalReader, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultJournalLimit
		if q := r.URL.Query().Get("limit"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, struct {
					Error string `json:"error"`
				}{Error: "invalid limit"})
				return
			}
			limit = min(n, maxJournalLimit)
		}
		recs, err := jr.Recent(r.Context(), limit)
		if err != nil {
			log.Error("journal read", zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// SetReady serves POST /lobby/ready/{playerID} and its unready twin.
func SetReady(l Lobby, ready bool, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")
		if err := types.ValidatePlayerID(playerID); err != nil {
			writeError(w, err)
			return
		}

		var err error
		if ready {
			err = l.MarkReady(r.Context(), playerID)
		} else {
			err = l.MarkUnready(r.Context(), playerID)
		}
		if err != nil {
			log.Debug("readiness change rejected", zap.String("player", playerID), zap.Bool("ready", ready), zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			OK bool `json:"ok"`
		}{OK: true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, types.HTTPStatus(err), struct {
		Error string `json:"error"`
	}{Error: types.PublicMessage(err)})
}

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SkillGG/bossDungeon/internal/config"
	"github.com/SkillGG/bossDungeon/internal/conn"
	"github.com/SkillGG/bossDungeon/internal/room"
	"github.com/SkillGG/bossDungeon/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T, origins ...string) (*httptest.Server, *room.Room) {
	t.Helper()
	rm := room.New(context.Background(), room.Config{Size: 2, TickInterval: 5 * time.Millisecond, GameLaunchSeconds: 50})
	t.Cleanup(rm.Close)
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	srv := httptest.NewServer(SetupRoutes(rm, nil, config.TransportConfig{AllowedOrigins: origins}, zaptest.NewLogger(t)))
	t.Cleanup(srv.Close)
	return srv, rm
}

func post(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestHealthz(t *testing.T) {
	srv, _ := setup(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyUnready(t *testing.T) {
	srv, rm := setup(t)
	ctx := context.Background()
	require.NoError(t, rm.Join(ctx, "alice", conn.New("alice")))

	resp, body := post(t, srv.URL+"/lobby/ready/alice")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	resp, err := http.Get(srv.URL + "/lobby")
	require.NoError(t, err)
	defer resp.Body.Close()
	var rd types.RoomData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rd))
	assert.Equal(t, map[string]types.PlayerLobbyData{"alice": {Ready: true}}, rd.PlayersIn)

	resp, _ = post(t, srv.URL+"/lobby/unready/alice")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	v, err := rm.View(ctx)
	require.NoError(t, err)
	assert.Empty(t, v.Ready)
}

func TestReady_Errors(t *testing.T) {
	srv, _ := setup(t)

	resp, body := post(t, srv.URL+"/lobby/ready/ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "player not in room", body["error"])

	resp, _ = post(t, srv.URL+"/lobby/unready/a%2Cb")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestView(t *testing.T) {
	srv, rm := setup(t)
	require.NoError(t, rm.Join(context.Background(), "alice", conn.New("alice")))

	resp, err := http.Get(srv.URL + "/lobby/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	var v room.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, room.PhaseLobby, v.Phase)
	assert.Equal(t, []string{"alice"}, v.Players)
}

func TestClosedRoomIsUnavailable(t *testing.T) {
	srv, rm := setup(t)
	rm.Close()

	resp, err := http.Get(srv.URL + "/lobby")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	srv, _ := setup(t, "http://localhost:3000")

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/lobby", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestOriginHosts(t *testing.T) {
	assert.Equal(t,
		[]string{"*", "localhost:3000", "example.com"},
		originHosts([]string{"*", "http://localhost:3000", "https://example.com"}))
}

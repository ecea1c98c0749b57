package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SkillGG/bossDungeon/internal/room"
	"github.com/SkillGG/bossDungeon/internal/types"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newServer(t *testing.T) (string, *room.Room) {
	t.Helper()
	rm := room.New(context.Background(), room.Config{Size: 2, TickInterval: 5 * time.Millisecond, GameLaunchSeconds: 50})
	t.Cleanup(rm.Close)
	srv := httptest.NewServer(Handler(rm, Options{Logger: zaptest.NewLogger(t)}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), rm
}

func dial(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return c
}

func read(t *testing.T, ctx context.Context, c *websocket.Conn) types.ServerMessage {
	t.Helper()
	var m types.ServerMessage
	require.NoError(t, wsjson.Read(ctx, c, &m))
	return m
}

// readEvent skips frames until ev arrives.
func readEvent(t *testing.T, ctx context.Context, c *websocket.Conn, ev string) types.ServerMessage {
	t.Helper()
	for {
		m := read(t, ctx, c)
		if m.Event == ev {
			return m
		}
	}
}

func TestHandler_JoinReadyAndLaunch(t *testing.T) {
	url, _ := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	alice := dial(t, ctx, url+"?player=alice")
	assert.Equal(t, "roomData", read(t, ctx, alice).Event)
	j := read(t, ctx, alice)
	assert.Equal(t, "join", j.Event)
	assert.JSONEq(t, `{"playerid":"alice"}`, string(j.Data))

	require.NoError(t, wsjson.Write(ctx, alice, types.ClientMessage{Type: types.CmdReady}))
	r := readEvent(t, ctx, alice, "ready")
	assert.JSONEq(t, `{"playerid":"alice"}`, string(r.Data))

	bob := dial(t, ctx, url+"?player=bob")
	readEvent(t, ctx, bob, "join")
	require.NoError(t, wsjson.Write(ctx, bob, types.ClientMessage{Type: types.CmdReady}))

	start := readEvent(t, ctx, alice, "initCountdown")
	assert.JSONEq(t, `{"type":"gameLaunch","time":50,"ms":5}`, string(start.Data))

	require.NoError(t, wsjson.Write(ctx, bob, types.ClientMessage{Type: types.CmdUnready}))
	term := readEvent(t, ctx, alice, "terminateCountdown")
	assert.Contains(t, string(term.Data), `"type":"gameLaunch"`)
}

func TestHandler_BadCommands(t *testing.T) {
	url, _ := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := dial(t, ctx, url+"?player=alice")
	readEvent(t, ctx, c, "join")

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte("{nope")))
	assert.Equal(t, "bad json", read(t, ctx, c).Error)

	require.NoError(t, wsjson.Write(ctx, c, types.ClientMessage{Type: "dance"}))
	assert.Equal(t, "unknown type", read(t, ctx, c).Error)
}

func TestHandler_RejectsInvalidIDBeforeUpgrade(t *testing.T) {
	url, _ := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, url+"?player=", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_DuplicateJoinClosesSocket(t *testing.T) {
	url, rm := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	first := dial(t, ctx, url+"?player=alice")
	readEvent(t, ctx, first, "join")

	dup := dial(t, ctx, url+"?player=alice")
	_, _, err := dup.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
	assert.Contains(t, err.Error(), "player already joined")

	v, err := rm.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, v.Players)
}

func TestHandler_FailedUpgradeLeavesLaunchRunning(t *testing.T) {
	rm := room.New(context.Background(), room.Config{Size: 2, TickInterval: 5 * time.Millisecond, GameLaunchSeconds: 1000})
	t.Cleanup(rm.Close)
	srv := httptest.NewServer(Handler(rm, Options{Logger: zaptest.NewLogger(t)}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	alice := dial(t, ctx, url+"?player=alice")
	bob := dial(t, ctx, url+"?player=bob")
	readEvent(t, ctx, bob, "join")
	require.NoError(t, wsjson.Write(ctx, alice, types.ClientMessage{Type: types.CmdReady}))
	require.NoError(t, wsjson.Write(ctx, bob, types.ClientMessage{Type: types.CmdReady}))
	readEvent(t, ctx, alice, "initCountdown")

	resp, err := http.Get(srv.URL + "?player=eve")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)

	v, err := rm.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, room.PhaseGameLaunch, v.Phase)
	require.NotNil(t, v.Countdown)
	assert.Equal(t, []string{"alice", "bob"}, v.Players)
}

func TestHandler_CloseLeavesRoom(t *testing.T) {
	url, rm := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	alice := dial(t, ctx, url+"?player=alice")
	readEvent(t, ctx, alice, "join")
	bob := dial(t, ctx, url+"?player=bob")
	readEvent(t, ctx, bob, "join")

	require.NoError(t, alice.Close(websocket.StatusNormalClosure, ""))
	left := readEvent(t, ctx, bob, "leave")
	assert.JSONEq(t, `{"playerid":"alice"}`, string(left.Data))

	v, err := rm.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, v.Players)
}

func TestHandler_RateLimitsCommands(t *testing.T) {
	rm := room.New(context.Background(), room.Config{Size: 5})
	t.Cleanup(rm.Close)
	srv := httptest.NewServer(Handler(rm, Options{CommandRate: 0.001, CommandBurst: 1}))
	t.Cleanup(srv.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := dial(t, ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"?player=alice")
	readEvent(t, ctx, c, "join")

	require.NoError(t, wsjson.Write(ctx, c, types.ClientMessage{Type: types.CmdReady}))
	readEvent(t, ctx, c, "ready")
	require.NoError(t, wsjson.Write(ctx, c, types.ClientMessage{Type: types.CmdUnready}))
	assert.Equal(t, "rate limited", read(t, ctx, c).Error)
}

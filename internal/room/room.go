// Package room is the single game room every player joins. All room state is
// owned by one goroutine that drains an inbox of messages; joins, leaves,
// readiness changes and countdown ticks are therefore strictly serialized.
package room

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/SkillGG/bossDungeon/internal/board"
	"github.com/SkillGG/bossDungeon/internal/conn"
	"github.com/SkillGG/bossDungeon/internal/countdown"
	"github.com/SkillGG/bossDungeon/internal/journal"
	"github.com/SkillGG/bossDungeon/pkg/types"
	"go.uber.org/zap"
)

var (
	ErrAlreadyJoined = errors.New("player already joined")
	ErrNotMember     = errors.New("player is not in the room")
	ErrRoomClosed    = errors.New("room closed")
)

type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseGameLaunch    Phase = "gameLaunch"
	PhasePickBoss      Phase = "pickBoss"
	PhaseDeckSelection Phase = "deckSelection"
	PhasePlaying       Phase = "playing"
)

type Config struct {
	// Size is how many open, ready players start the game.
	Size                 int
	TickInterval         time.Duration
	GameLaunchSeconds    int
	PickBossSeconds      int
	DeckSelectionSeconds int
	InboxSize            int
}

func DefaultConfig() Config {
	return Config{
		Size:                 2,
		TickInterval:         time.Second,
		GameLaunchSeconds:    2,
		PickBossSeconds:      3,
		DeckSelectionSeconds: 30,
		InboxSize:            64,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Size <= 0 {
		c.Size = d.Size
	}
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.InboxSize <= 0 {
		c.InboxSize = d.InboxSize
	}
	c.GameLaunchSeconds = max(c.GameLaunchSeconds, 0)
	c.PickBossSeconds = max(c.PickBossSeconds, 0)
	c.DeckSelectionSeconds = max(c.DeckSelectionSeconds, 0)
	return c
}

type Option func(*Room)

func WithLogger(l *zap.Logger) Option {
	return func(r *Room) { r.log = l }
}

func WithJournal(j journal.Recorder) Option {
	return func(r *Room) { r.journal = j }
}

func WithBoard(b *board.Board) Option {
	return func(r *Room) { r.board = b }
}

type Room struct {
	cfg     Config
	inbox   chan Msg
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	log     *zap.Logger
	journal journal.Recorder
	sched   countdown.Scheduler

	// owned by the loop goroutine
	players        map[string]*conn.Connection
	ready          map[string]struct{}
	board          *board.Board
	phase          Phase
	gameInProgress bool
	countdown      *countdown.Countdown
	deckTimers     map[string]*countdown.Countdown
}

func New(parent context.Context, cfg Config, opts ...Option) *Room {
	ctx, cancel := context.WithCancel(parent)
	cfg = cfg.withDefaults()

	r := &Room{
		cfg:        cfg,
		inbox:      make(chan Msg, cfg.InboxSize),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        zap.NewNop(),
		journal:    journal.Nop{},
		players:    make(map[string]*conn.Connection),
		ready:      make(map[string]struct{}),
		phase:      PhaseLobby,
		deckTimers: make(map[string]*countdown.Countdown),
	}
	for _, o := range opts {
		o(r)
	}
	if r.board == nil {
		r.board = board.New()
	}
	r.log = r.log.Named("room")
	r.sched = inboxScheduler{r: r}

	go r.loop()
	return r
}

func (r *Room) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				reply(msg.Reply, r.join(msg.PlayerID, msg.Conn))

			case Leave:
				r.leave(msg.PlayerID)
				reply(msg.Reply, nil)

			case Disconnect:
				if cur, ok := r.players[msg.PlayerID]; ok && cur == msg.Conn {
					r.leave(msg.PlayerID)
				}
				reply(msg.Reply, nil)

			case Ready:
				reply(msg.Reply, r.markReady(msg.PlayerID))

			case Unready:
				reply(msg.Reply, r.markUnready(msg.PlayerID))

			case GetLobby:
				msg.Reply <- r.lobbyData()

			case GetView:
				msg.Reply <- r.view()

			case tick:
				msg.fn()

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	if r.countdown != nil {
		r.countdown.Abort(types.Noop())
	}
	r.abortDeckSelection("", types.Noop())
	r.cancel()
	r.log.Info("room stopped", zap.Int("players", len(r.players)))
}

// Inbox exposes the loop's inbox for transports that fire and forget.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the loop has stopped.
func (r *Room) Done() <-chan struct{} { return r.done }

// Close stops the loop, aborting running countdowns, and waits for it.
func (r *Room) Close() {
	r.cancel()
	<-r.done
}

func (r *Room) send(ctx context.Context, m Msg) error {
	select {
	case r.inbox <- m:
		return nil
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func await[T any](ctx context.Context, r *Room, ch chan T) (T, error) {
	var zero T
	select {
	case v := <-ch:
		return v, nil
	case <-r.done:
		select {
		case v := <-ch:
			return v, nil
		default:
			return zero, ErrRoomClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (r *Room) call(ctx context.Context, build func(chan error) Msg) error {
	ch := make(chan error, 1)
	if err := r.send(ctx, build(ch)); err != nil {
		return err
	}
	res, err := await(ctx, r, ch)
	if err != nil {
		return err
	}
	return res
}

// Join registers c as playerID's connection, sends it the lobby and
// announces the player to everyone.
func (r *Room) Join(ctx context.Context, playerID string, c *conn.Connection) error {
	return r.call(ctx, func(ch chan error) Msg { return Join{PlayerID: playerID, Conn: c, Reply: ch} })
}

// Leave removes the player. Leaving twice is a no-op.
func (r *Room) Leave(ctx context.Context, playerID string) error {
	return r.call(ctx, func(ch chan error) Msg { return Leave{PlayerID: playerID, Reply: ch} })
}

func (r *Room) Disconnect(ctx context.Context, playerID string, c *conn.Connection) error {
	return r.call(ctx, func(ch chan error) Msg { return Disconnect{PlayerID: playerID, Conn: c, Reply: ch} })
}

func (r *Room) MarkReady(ctx context.Context, playerID string) error {
	return r.call(ctx, func(ch chan error) Msg { return Ready{PlayerID: playerID, Reply: ch} })
}

func (r *Room) MarkUnready(ctx context.Context, playerID string) error {
	return r.call(ctx, func(ch chan error) Msg { return Unready{PlayerID: playerID, Reply: ch} })
}

func (r *Room) LobbyData(ctx context.Context) (types.RoomData, error) {
	ch := make(chan types.RoomData, 1)
	if err := r.send(ctx, GetLobby{Reply: ch}); err != nil {
		return types.RoomData{}, err
	}
	return await(ctx, r, ch)
}

func (r *Room) View(ctx context.Context) (View, error) {
	ch := make(chan View, 1)
	if err := r.send(ctx, GetView{Reply: ch}); err != nil {
		return View{}, err
	}
	return await(ctx, r, ch)
}

// ---- loop-only helpers below ----

func (r *Room) join(id string, c *conn.Connection) error {
	if c == nil {
		return fmt.Errorf("join %s: nil connection", id)
	}
	if prev, ok := r.players[id]; ok && !prev.Closed() {
		return fmt.Errorf("%w: %s", ErrAlreadyJoined, id)
	}

	r.players[id] = c
	r.board.InitPlayerDeck(id)
	c.Emit(types.EventRoomData, r.lobbyData())
	r.broadcast(types.EventJoin, types.PlayerID{PlayerID: id})
	r.log.Info("player joined", zap.String("player", id), zap.Int("players", len(r.players)))
	return nil
}

func (r *Room) leave(id string) {
	if _, ok := r.players[id]; !ok {
		return
	}
	delete(r.players, id)
	delete(r.ready, id)
	r.board.RemovePlayerDeck(id)
	r.broadcast(types.EventLeave, types.PlayerID{PlayerID: id})
	r.log.Info("player left", zap.String("player", id), zap.Int("players", len(r.players)))

	reason := types.Disconnected(id)
	if r.countdown != nil {
		r.countdown.Abort(reason)
	}
	r.abortDeckSelection(id, reason)
	// a running game has no countdown left to abort
	if r.phase == PhasePlaying {
		r.resetToLobby(PhasePlaying, reason)
	}
}

func (r *Room) markReady(id string) error {
	if _, ok := r.players[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotMember, id)
	}
	r.ready[id] = struct{}{}
	r.broadcast(types.EventReady, types.PlayerID{PlayerID: id})

	if r.canLaunch() {
		r.startGameLaunch()
	}
	return nil
}

func (r *Room) markUnready(id string) error {
	if _, ok := r.players[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotMember, id)
	}
	delete(r.ready, id)
	r.broadcast(types.EventUnready, types.PlayerID{PlayerID: id})

	if r.countdown != nil {
		r.countdown.Abort(nil)
	}
	return nil
}

func (r *Room) canLaunch() bool {
	if r.phase != PhaseLobby || r.countdown != nil {
		return false
	}
	open := r.openConns()
	return len(open) == r.cfg.Size && r.allReady(open)
}

// allReady is vacuously true for no players.
func (r *Room) allReady(conns []*conn.Connection) bool {
	for _, c := range conns {
		if _, ok := r.ready[c.PlayerID()]; !ok {
			return false
		}
	}
	return true
}

func (r *Room) lobbyData() types.RoomData {
	in := make(map[string]types.PlayerLobbyData, len(r.players))
	for id := range r.players {
		_, ready := r.ready[id]
		in[id] = types.PlayerLobbyData{Ready: ready}
	}
	return types.RoomData{PlayersIn: in}
}

func (r *Room) playerIDs() []string {
	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// openConns returns the open connections ordered by player id.
func (r *Room) openConns() []*conn.Connection {
	var out []*conn.Connection
	for _, id := range r.playerIDs() {
		if c := r.players[id]; conn.Open(c) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Room) broadcast(ev types.Event, payload any) {
	conn.EmitToAll(r.openConns(), nil)(ev, payload)
}

func (r *Room) record(phase Phase, outcome journal.Outcome, detail string) {
	err := r.journal.Record(context.WithoutCancel(r.ctx), journal.Entry{
		Phase:   string(phase),
		Outcome: outcome,
		Players: r.playerIDs(),
		Detail:  detail,
		At:      time.Now(),
	})
	if err != nil {
		r.log.Warn("journal record failed", zap.String("phase", string(phase)), zap.Error(err))
	}
}

type CountdownView struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining"`
}

// View is a point-in-time copy of the room for inspection.
type View struct {
	Phase          Phase                    `json:"phase"`
	GameInProgress bool                     `json:"gameInProgress"`
	Players        []string                 `json:"players"`
	Open           []string                 `json:"open"`
	Ready          []string                 `json:"ready"`
	Boss           string                   `json:"boss,omitempty"`
	Countdown      *CountdownView           `json:"countdown,omitempty"`
	DeckSelection  map[string]CountdownView `json:"deckSelection,omitempty"`
}

func (r *Room) view() View {
	v := View{
		Phase:          r.phase,
		GameInProgress: r.gameInProgress,
		Players:        r.playerIDs(),
		Open:           []string{},
		Ready:          []string{},
	}
	for _, c := range r.openConns() {
		v.Open = append(v.Open, c.PlayerID())
	}
	for id := range r.ready {
		v.Ready = append(v.Ready, id)
	}
	slices.Sort(v.Ready)
	if boss, err := r.board.Boss(); err == nil {
		v.Boss = boss.String()
	}
	if r.countdown != nil {
		v.Countdown = &CountdownView{Type: r.countdown.Type().String(), Remaining: r.countdown.Remaining()}
	}
	if len(r.deckTimers) > 0 {
		v.DeckSelection = make(map[string]CountdownView, len(r.deckTimers))
		for id, cd := range r.deckTimers {
			v.DeckSelection[id] = CountdownView{Type: cd.Type().String(), Remaining: cd.Remaining()}
		}
	}
	return v
}

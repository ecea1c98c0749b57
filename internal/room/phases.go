package room

import (
	"sort"

	"github.com/SkillGG/bossDungeon/internal/conn"
	"github.com/SkillGG/bossDungeon/internal/countdown"
	"github.com/SkillGG/bossDungeon/internal/journal"
	"github.com/SkillGG/bossDungeon/pkg/cards"
	"github.com/SkillGG/bossDungeon/pkg/types"
	"go.uber.org/zap"
)

// Phase flow: lobby -> gameLaunch -> pickBoss -> deckSelection -> playing.
// Any abort on the way drops the room back to lobby.

func (r *Room) startGameLaunch() {
	r.phase = PhaseGameLaunch
	r.log.Info("game launch", zap.Strings("players", r.playerIDs()))
	r.startRoomCountdown(types.TimerGameLaunch, r.cfg.GameLaunchSeconds, countdown.Hooks{
		AfterFinish: func() {
			r.countdown = nil
			r.gameInProgress = true
			r.record(PhaseGameLaunch, journal.OutcomeCompleted, "")
			r.startPickBoss()
		},
	}, nil)
}

func (r *Room) startPickBoss() {
	r.phase = PhasePickBoss
	var boss cards.Card
	r.startRoomCountdown(types.TimerPickBoss, r.cfg.PickBossSeconds, countdown.Hooks{
		BeforeFinish: func() error {
			var err error
			boss, err = r.board.DrawBoss()
			return err
		},
		AfterFinish: func() {
			r.countdown = nil
			r.record(PhasePickBoss, journal.OutcomeCompleted, boss.DBID)
			r.startDeckSelection()
		},
	}, func() (types.TimerData, error) {
		return types.TimerData{
			Type: types.TimerPickBoss,
			Boss: &types.CardSnapshot{CardStr: boss.String()},
		}, nil
	})
}

// startRoomCountdown runs the single room-level countdown. The handle is
// stored before Start so a zero-second countdown can hand over to the next
// phase from inside Start.
func (r *Room) startRoomCountdown(kind types.TimerKind, seconds int, hooks countdown.Hooks, data func() (types.TimerData, error)) {
	phase := r.phase
	hooks.OnAbort = func(reason *types.TerminationReason) {
		r.countdown = nil
		r.resetToLobby(phase, reason)
	}
	cd := countdown.New(countdown.Options{
		Type:      types.Timer(kind),
		Targets:   r.openConns(),
		Seconds:   seconds,
		Interval:  r.cfg.TickInterval,
		Scheduler: r.sched,
		Hooks:     hooks,
		Data:      data,
		Logger:    r.log,
	})
	r.countdown = cd
	if err := cd.Start(); err != nil {
		r.log.Error("start countdown", zap.String("timer", string(kind)), zap.Error(err))
	}
}

func (r *Room) startDeckSelection() {
	r.phase = PhaseDeckSelection
	if err := r.board.RandomizePlayerDecks(); err != nil {
		r.log.Error("randomize decks", zap.Error(err))
		r.resetToLobby(PhaseDeckSelection, types.Noop())
		return
	}

	var timers []*countdown.Countdown
	for _, c := range r.openConns() {
		id := c.PlayerID()
		deck, err := r.board.PlayerDeck(id)
		if err != nil {
			r.log.Error("deck selection", zap.String("player", id), zap.Error(err))
			continue
		}
		cd := countdown.New(countdown.Options{
			Type:      types.DeckSelectionTimer(deck.String()),
			Targets:   []*conn.Connection{c},
			Seconds:   r.cfg.DeckSelectionSeconds,
			Interval:  r.cfg.TickInterval,
			Scheduler: r.sched,
			Hooks: countdown.Hooks{
				AfterFinish: func() { r.finishDeckSelection(id) },
				OnAbort:     func(reason *types.TerminationReason) { r.abortDeckSelection(id, reason) },
			},
			Logger: r.log.With(zap.String("player", id)),
		})
		r.deckTimers[id] = cd
		timers = append(timers, cd)
	}
	if len(timers) == 0 {
		r.resetToLobby(PhaseDeckSelection, types.Noop())
		return
	}

	for _, cd := range timers {
		if r.phase != PhaseDeckSelection {
			// an earlier timer failed and tore the phase down
			return
		}
		if err := cd.Start(); err != nil {
			r.log.Error("start deck selection", zap.Error(err))
		}
	}
}

func (r *Room) finishDeckSelection(id string) {
	if _, ok := r.deckTimers[id]; !ok {
		return
	}
	delete(r.deckTimers, id)
	if len(r.deckTimers) > 0 {
		return
	}
	r.phase = PhasePlaying
	r.record(PhaseDeckSelection, journal.OutcomeCompleted, "")
	r.log.Info("all decks selected, game on", zap.Strings("players", r.playerIDs()))
}

// abortDeckSelection terminates every deckSelection countdown, first's own
// before the rest. The timer map is swapped out up front so the OnAbort
// hooks fired below find nothing left to abort.
func (r *Room) abortDeckSelection(first string, reason *types.TerminationReason) {
	timers := r.deckTimers
	if len(timers) == 0 {
		return
	}
	r.deckTimers = make(map[string]*countdown.Countdown)
	r.resetToLobby(PhaseDeckSelection, reason)

	if cd, ok := timers[first]; ok {
		cd.Abort(reason)
	}
	ids := make([]string, 0, len(timers))
	for id := range timers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		timers[id].Abort(reason)
	}
}

func (r *Room) resetToLobby(from Phase, reason *types.TerminationReason) {
	r.phase = PhaseLobby
	r.gameInProgress = false
	r.board.ResetBoss()

	detail := ""
	if reason != nil {
		detail = string(reason.Type)
		if reason.PlayerID != "" {
			detail += ":" + reason.PlayerID
		}
	}
	r.record(from, journal.OutcomeAborted, detail)
	r.log.Info("phase aborted", zap.String("phase", string(from)), zap.String("reason", detail))
}

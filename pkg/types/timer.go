package types

import (
	"encoding/json"
	"fmt"
)

type TimerKind string

const (
	TimerGameLaunch    TimerKind = "gameLaunch"
	TimerPickBoss      TimerKind = "pickBoss"
	TimerDeckSelection TimerKind = "deckSelection"
)

type DeckSnapshot struct {
	DeckStr string `json:"deckStr"`
}

type CardSnapshot struct {
	CardStr string `json:"cardStr"`
}

// TimerType identifies the phase a countdown belongs to. It encodes as a bare
// string unless it carries a deck snapshot.
type TimerType struct {
	Kind TimerKind
	Deck *DeckSnapshot
}

func Timer(kind TimerKind) TimerType { return TimerType{Kind: kind} }

func DeckSelectionTimer(deckStr string) TimerType {
	return TimerType{Kind: TimerDeckSelection, Deck: &DeckSnapshot{DeckStr: deckStr}}
}

type taggedTimer struct {
	Type TimerKind     `json:"type"`
	Deck *DeckSnapshot `json:"deck,omitempty"`
}

func (t TimerType) MarshalJSON() ([]byte, error) {
	if t.Deck == nil {
		return json.Marshal(string(t.Kind))
	}
	return json.Marshal(taggedTimer{Type: t.Kind, Deck: t.Deck})
}

func (t *TimerType) UnmarshalJSON(b []byte) error {
	var bare string
	if err := json.Unmarshal(b, &bare); err == nil {
		*t = TimerType{Kind: TimerKind(bare)}
		return nil
	}
	var tagged taggedTimer
	if err := json.Unmarshal(b, &tagged); err != nil {
		return fmt.Errorf("timer type: %w", err)
	}
	*t = TimerType{Kind: tagged.Type, Deck: tagged.Deck}
	return nil
}

func (t TimerType) String() string { return string(t.Kind) }

// TimerData is the completion payload of a countdown.
type TimerData struct {
	Type TimerKind     `json:"type"`
	Boss *CardSnapshot `json:"boss,omitempty"`
}

type TerminationKind string

const (
	TerminationDisconnect TerminationKind = "disconnect"
	TerminationNoop       TerminationKind = "noop"
)

type TerminationReason struct {
	Type     TerminationKind `json:"type"`
	PlayerID string          `json:"playerid,omitempty"`
}

func Disconnected(playerID string) *TerminationReason {
	return &TerminationReason{Type: TerminationDisconnect, PlayerID: playerID}
}

func Noop() *TerminationReason {
	return &TerminationReason{Type: TerminationNoop}
}

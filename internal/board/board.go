package board

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/SkillGG/bossDungeon/pkg/cards"
)

var (
	ErrBossNotSet   = errors.New("boss not set yet")
	ErrDeckNotFound = errors.New("deck not found")
	ErrEmptyCatalog = errors.New("cannot pick from empty catalog")
)

const (
	DungeonCardsPerDeck = 5
	SpellCardsPerDeck   = 2
)

// Picker returns a uniform integer in [0, n).
type Picker func(n int) (int, error)

func CryptoPicker(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// Board holds the drawn boss and each player's deck. It is not safe for
// concurrent use; the room owns it.
type Board struct {
	boss  *cards.Card
	decks map[string]*cards.Deck
	pick  Picker
}

type Option func(*Board)

func WithPicker(p Picker) Option {
	return func(b *Board) { b.pick = p }
}

func New(opts ...Option) *Board {
	b := &Board{
		decks: make(map[string]*cards.Deck),
		pick:  CryptoPicker,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Board) Boss() (cards.Card, error) {
	if b.boss == nil {
		return cards.Card{}, ErrBossNotSet
	}
	return *b.boss, nil
}

// DrawBoss replaces the current boss with a random one from the catalog.
func (b *Board) DrawBoss() (cards.Card, error) {
	c, err := b.randomCard(cards.Bosses())
	if err != nil {
		return cards.Card{}, fmt.Errorf("draw boss: %w", err)
	}
	b.boss = &c
	return c, nil
}

// ResetBoss forgets the drawn boss.
func (b *Board) ResetBoss() { b.boss = nil }

func (b *Board) InitPlayerDeck(playerID string) {
	b.decks[playerID] = cards.NewDeck()
}

func (b *Board) RemovePlayerDeck(playerID string) {
	delete(b.decks, playerID)
}

func (b *Board) PlayerDeck(playerID string) (*cards.Deck, error) {
	d, ok := b.decks[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, playerID)
	}
	return d, nil
}

// Players lists the players with a deck, sorted.
func (b *Board) Players() []string {
	out := make([]string, 0, len(b.decks))
	for id := range b.decks {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RandomizePlayerDecks refills every tracked deck with random dungeon and
// spell cards. Instance ids are <dbid>_<player>_<n>, n counting the copies of
// that dbid already dealt to the player.
func (b *Board) RandomizePlayerDecks() error {
	dungeons, spells := cards.Dungeons(), cards.Spells()
	for _, player := range b.Players() {
		deck := b.decks[player]
		deck.Clear()
		if err := b.deal(deck, player, dungeons, DungeonCardsPerDeck); err != nil {
			return err
		}
		if err := b.deal(deck, player, spells, SpellCardsPerDeck); err != nil {
			return err
		}
	}
	return nil
}

func (b *Board) deal(deck *cards.Deck, player string, from []cards.Card, n int) error {
	for range n {
		c, err := b.randomCard(from)
		if err != nil {
			return fmt.Errorf("deal %s: %w", player, err)
		}
		deck.Add(c.Copy(fmt.Sprintf("%s_%s_%d", c.DBID, player, deck.CountDBID(c.DBID))))
	}
	return nil
}

func (b *Board) randomCard(from []cards.Card) (cards.Card, error) {
	if len(from) == 0 {
		return cards.Card{}, ErrEmptyCatalog
	}
	i, err := b.pick(len(from))
	if err != nil {
		return cards.Card{}, err
	}
	if i < 0 || i >= len(from) {
		return cards.Card{}, fmt.Errorf("picker returned %d for %d candidates", i, len(from))
	}
	return from[i], nil
}

package cards

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Deck is an ordered, mutable sequence of cards. It is not safe for
// concurrent use.
type Deck struct {
	cards []Card
}

func NewDeck() *Deck { return &Deck{} }

func (d *Deck) Add(c Card) { d.cards = append(d.cards, c) }

// Discard removes every card with the given instance id.
func (d *Deck) Discard(id string) {
	d.cards = slices.DeleteFunc(d.cards, func(c Card) bool { return c.ID == id })
}

func (d *Deck) Clear() { d.cards = nil }

func (d *Deck) Len() int { return len(d.cards) }

func (d *Deck) Cards() []Card { return slices.Clone(d.cards) }

// CountDBID reports how many instances of a catalog card the deck holds.
func (d *Deck) CountDBID(dbid string) int {
	n := 0
	for _, c := range d.cards {
		if c.DBID == dbid {
			n++
		}
	}
	return n
}

// String encodes the deck as a JSON array of card strings.
func (d *Deck) String() string {
	strs := make([]string, len(d.cards))
	for i, c := range d.cards {
		strs[i] = c.String()
	}
	b, _ := json.Marshal(strs)
	return string(b)
}

func ParseDeck(s string) (*Deck, error) {
	var strs []string
	if err := json.Unmarshal([]byte(s), &strs); err != nil {
		return nil, fmt.Errorf("%w: deck: %v", ErrMalformedCard, err)
	}
	d := NewDeck()
	for _, cs := range strs {
		c, err := ParseCard(cs)
		if err != nil {
			return nil, err
		}
		d.Add(c)
	}
	return d, nil
}

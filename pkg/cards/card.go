// Package cards holds the card and deck value types shared with clients,
// and their string form: kind{dbid:id,{unique data as JSON}}.
package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedCard = errors.New("malformed card string")
	ErrUnknownCard   = errors.New("unknown card")
	ErrKindMismatch  = errors.New("card kind mismatch")
)

type Kind string

const (
	KindBoss    Kind = "boss"
	KindDungeon Kind = "dungeon"
	KindSpell   Kind = "spell"
	KindHero    Kind = "hero"
)

func (k Kind) valid() bool {
	switch k {
	case KindBoss, KindDungeon, KindSpell, KindHero:
		return true
	}
	return false
}

type Treasure string

const (
	TreasureFight Treasure = "fight"
	TreasureHoly  Treasure = "holy"
	TreasureGold  Treasure = "gold"
)

type BossData struct {
	Life int `json:"life"`
}

type HeroData struct {
	Life int `json:"life"`
}

type DungeonData struct {
	Treasure Treasure `json:"treasure"`
	Special  bool     `json:"special"`
	Damage   int      `json:"damage"`
}

type SpellData struct {
	Special bool `json:"special"`
}

// Card is a tagged union: exactly the data pointer matching Kind is set.
// DBID names the catalog entry, ID the instance.
type Card struct {
	Kind Kind
	DBID string
	ID   string
	Name string

	Boss    *BossData
	Dungeon *DungeonData
	Spell   *SpellData
	Hero    *HeroData
}

func NewBoss(dbid, name string, life int) Card {
	return Card{Kind: KindBoss, DBID: dbid, ID: dbid, Name: name, Boss: &BossData{Life: life}}
}

func NewHero(dbid, name string, life int) Card {
	return Card{Kind: KindHero, DBID: dbid, ID: dbid, Name: name, Hero: &HeroData{Life: life}}
}

func NewDungeon(dbid, name string, treasure Treasure, damage int, special bool) Card {
	return Card{
		Kind: KindDungeon, DBID: dbid, ID: dbid, Name: name,
		Dungeon: &DungeonData{Treasure: treasure, Damage: damage, Special: special},
	}
}

func NewSpell(dbid, name string, special bool) Card {
	return Card{Kind: KindSpell, DBID: dbid, ID: dbid, Name: name, Spell: &SpellData{Special: special}}
}

// Copy returns an independent instance of the card under a new id.
func (c Card) Copy(id string) Card {
	out := Card{Kind: c.Kind, DBID: c.DBID, ID: id, Name: c.Name}
	if c.Boss != nil {
		b := *c.Boss
		out.Boss = &b
	}
	if c.Dungeon != nil {
		d := *c.Dungeon
		out.Dungeon = &d
	}
	if c.Spell != nil {
		s := *c.Spell
		out.Spell = &s
	}
	if c.Hero != nil {
		h := *c.Hero
		out.Hero = &h
	}
	return out
}

func (c Card) uniqueData() any {
	switch c.Kind {
	case KindBoss:
		if c.Boss != nil {
			return c.Boss
		}
	case KindDungeon:
		if c.Dungeon != nil {
			return c.Dungeon
		}
	case KindSpell:
		if c.Spell != nil {
			return c.Spell
		}
	case KindHero:
		if c.Hero != nil {
			return c.Hero
		}
	}
	return struct{}{}
}

func (c Card) String() string {
	data, _ := json.Marshal(c.uniqueData())
	return fmt.Sprintf("%s{%s:%s,%s}", c.Kind, c.DBID, c.ID, data)
}

// ParseCard reads a card produced by Card.String. The dbid must exist in the
// catalog; unique data fields absent from the string keep their catalog value.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '{')
	if open < 0 || !strings.HasSuffix(s, "}") {
		return Card{}, fmt.Errorf("%w: %q", ErrMalformedCard, s)
	}
	kind := Kind(strings.ToLower(strings.TrimSpace(s[:open])))
	if !kind.valid() {
		return Card{}, fmt.Errorf("%w: kind %q", ErrMalformedCard, kind)
	}

	inner := s[open+1 : len(s)-1]
	colon := strings.IndexByte(inner, ':')
	if colon <= 0 {
		return Card{}, fmt.Errorf("%w: missing dbid in %q", ErrMalformedCard, s)
	}
	dbid := strings.TrimSpace(inner[:colon])
	rest := inner[colon+1:]

	brace := strings.IndexByte(rest, '{')
	if brace < 0 {
		return Card{}, fmt.Errorf("%w: missing data in %q", ErrMalformedCard, s)
	}
	head := strings.TrimSpace(rest[:brace])
	if !strings.HasSuffix(head, ",") {
		return Card{}, fmt.Errorf("%w: missing separator in %q", ErrMalformedCard, s)
	}
	id := strings.TrimSpace(strings.TrimSuffix(head, ","))
	if id == "" {
		return Card{}, fmt.Errorf("%w: missing id in %q", ErrMalformedCard, s)
	}

	base, err := Lookup(dbid)
	if err != nil {
		return Card{}, err
	}
	if base.Kind != kind {
		return Card{}, fmt.Errorf("%w: %s is %s, not %s", ErrKindMismatch, dbid, base.Kind, kind)
	}

	card := base.Copy(id)
	if err := json.Unmarshal([]byte(rest[brace:]), card.uniqueData()); err != nil {
		return Card{}, fmt.Errorf("%w: data of %q: %v", ErrMalformedCard, s, err)
	}
	return card, nil
}

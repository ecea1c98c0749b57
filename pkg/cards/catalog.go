package cards

import (
	"fmt"
	"slices"
)

var bosses = []Card{
	NewBoss("boss1", "abc", 5),
	NewBoss("boss2", "Boss 2", 5),
	NewBoss("boss3", "Boss 3", 5),
	NewBoss("boss4", "Boss 4", 8),
}

var spells = []Card{
	NewSpell("spell1", "Spell 1", false),
	NewSpell("spell2", "Spell 2", false),
	NewSpell("spell3", "Spell 3", false),
	NewSpell("spell4", "Spell 4", false),
	NewSpell("spell5", "Spell 5", false),
	NewSpell("spell6", "Spell 6", false),
}

var dungeons = []Card{
	NewDungeon("dung1", "Dung 1", TreasureFight, 1, false),
	NewDungeon("dung2", "Dung 2", TreasureHoly, 1, false),
	NewDungeon("dung3", "Dung 3", TreasureGold, 1, false),
	NewDungeon("dung4", "Dung 4", TreasureGold, 1, false),
	NewDungeon("dung5", "Dung 5", TreasureFight, 1, false),
	NewDungeon("dung6", "Dung 6", TreasureHoly, 1, false),
}

var heroes = []Card{}

func Bosses() []Card   { return copyAll(bosses) }
func Spells() []Card   { return copyAll(spells) }
func Dungeons() []Card { return copyAll(dungeons) }
func Heroes() []Card   { return copyAll(heroes) }

func copyAll(src []Card) []Card {
	out := make([]Card, len(src))
	for i, c := range src {
		out[i] = c.Copy(c.ID)
	}
	return out
}

// Lookup returns a copy of the catalog card with the given dbid.
func Lookup(dbid string) (Card, error) {
	for _, set := range [][]Card{bosses, spells, dungeons, heroes} {
		if i := slices.IndexFunc(set, func(c Card) bool { return c.DBID == dbid }); i >= 0 {
			return set[i].Copy(set[i].ID), nil
		}
	}
	return Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, dbid)
}

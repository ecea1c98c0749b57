package cards

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardString_Format(t *testing.T) {
	boss, err := Lookup("boss4")
	require.NoError(t, err)
	assert.Equal(t, `boss{boss4:boss4,{"life":8}}`, boss.String())

	d := NewDungeon("dung2", "Dung 2", TreasureHoly, 1, false).Copy("dung2_alice_0")
	assert.Equal(t, `dungeon{dung2:dung2_alice_0,{"treasure":"holy","special":false,"damage":1}}`, d.String())
}

func TestParseCard_RoundTripAllCatalogs(t *testing.T) {
	all := append(append(append(Bosses(), Dungeons()...), Spells()...), Heroes()...)
	for _, c := range all {
		inst := c.Copy(c.DBID + "_p_1")
		got, err := ParseCard(inst.String())
		require.NoError(t, err, inst.String())
		assert.Equal(t, inst, got)
	}
}

func TestParseCard_UniqueDataOverridesCatalog(t *testing.T) {
	c, err := ParseCard(` boss { boss1:b7 , {"life":12} } `)
	require.NoError(t, err)
	assert.Equal(t, "b7", c.ID)
	assert.Equal(t, "abc", c.Name)
	assert.Equal(t, 12, c.Boss.Life)
}

func TestParseCard_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"no braces", "boss1", ErrMalformedCard},
		{"bad kind", `villain{boss1:x,{}}`, ErrMalformedCard},
		{"no id", `boss{boss1:,{"life":1}}`, ErrMalformedCard},
		{"no comma", `boss{boss1:x{"life":1}}`, ErrMalformedCard},
		{"bad json", `boss{boss1:x,{"life":}}`, ErrMalformedCard},
		{"unknown dbid", `boss{boss99:x,{"life":1}}`, ErrUnknownCard},
		{"kind mismatch", `spell{boss1:x,{"special":true}}`, ErrKindMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCard(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCopy_IsIndependent(t *testing.T) {
	orig, err := Lookup("dung1")
	require.NoError(t, err)
	cp := orig.Copy("other")
	cp.Dungeon.Damage = 99

	again, err := Lookup("dung1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Dungeon.Damage)
	assert.Equal(t, 1, orig.Dungeon.Damage)
}

func TestDeck_AddDiscardClear(t *testing.T) {
	d := NewDeck()
	d.Add(NewSpell("spell1", "Spell 1", false).Copy("a"))
	d.Add(NewSpell("spell1", "Spell 1", false).Copy("b"))
	d.Add(NewSpell("spell2", "Spell 2", true).Copy("c"))
	assert.Equal(t, 2, d.CountDBID("spell1"))

	d.Discard("b")
	require.Equal(t, 2, d.Len())
	assert.Equal(t, "a", d.Cards()[0].ID)
	assert.Equal(t, "c", d.Cards()[1].ID)

	d.Clear()
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, "[]", d.String())
}

func TestDeck_StringRoundTrip(t *testing.T) {
	d := NewDeck()
	for i, c := range Dungeons() {
		d.Add(c.Copy(c.DBID + "_bob_" + string(rune('0'+i))))
	}
	for _, c := range Spells()[:2] {
		d.Add(c.Copy(c.DBID + "_bob_0"))
	}

	back, err := ParseDeck(d.String())
	require.NoError(t, err)
	require.Equal(t, d.Len(), back.Len())
	for i, c := range d.Cards() {
		assert.Equal(t, c.String(), back.Cards()[i].String())
	}
}

func TestParseDeck_RejectsBadInput(t *testing.T) {
	_, err := ParseDeck("not json")
	assert.ErrorIs(t, err, ErrMalformedCard)

	_, err = ParseDeck(`["boss{nope:x,{}}"]`)
	assert.ErrorIs(t, err, ErrUnknownCard)
}

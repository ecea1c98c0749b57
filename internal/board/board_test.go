package board

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/SkillGG/bossDungeon/pkg/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoss_NotSetBeforeDraw(t *testing.T) {
	b := New()
	_, err := b.Boss()
	if !errors.Is(err, ErrBossNotSet) {
		t.Fatalf("want ErrBossNotSet, got %v", err)
	}
}

func TestDrawBoss_ComesFromCatalog(t *testing.T) {
	b := New()
	drawn, err := b.DrawBoss()
	require.NoError(t, err)

	boss, err := b.Boss()
	require.NoError(t, err)
	assert.Equal(t, drawn, boss)
	assert.Equal(t, cards.KindBoss, boss.Kind)
	assert.True(t, slices.ContainsFunc(cards.Bosses(), func(c cards.Card) bool { return c.DBID == boss.DBID }))

	b.ResetBoss()
	_, err = b.Boss()
	assert.ErrorIs(t, err, ErrBossNotSet)
}

func TestDrawBoss_OverwritesPrevious(t *testing.T) {
	i := 0
	b := New(WithPicker(func(n int) (int, error) { i++; return (i - 1) % n, nil }))
	first, err := b.DrawBoss()
	require.NoError(t, err)
	second, err := b.DrawBoss()
	require.NoError(t, err)
	assert.NotEqual(t, first.DBID, second.DBID)

	boss, _ := b.Boss()
	assert.Equal(t, second.DBID, boss.DBID)
}

func TestPlayerDeck_NotFoundDoesNotMutate(t *testing.T) {
	b := New()
	b.InitPlayerDeck("alice")

	_, err := b.PlayerDeck("charlie")
	assert.ErrorIs(t, err, ErrDeckNotFound)
	assert.Equal(t, []string{"alice"}, b.Players())
}

func TestRandomizePlayerDecks_CountsAndUniqueIDs(t *testing.T) {
	// Always pick the first catalog card so duplicates are guaranteed.
	b := New(WithPicker(func(int) (int, error) { return 0, nil }))
	b.InitPlayerDeck("alice")
	b.InitPlayerDeck("bob")
	require.NoError(t, b.RandomizePlayerDecks())

	for _, p := range []string{"alice", "bob"} {
		d, err := b.PlayerDeck(p)
		require.NoError(t, err)
		require.Equal(t, DungeonCardsPerDeck+SpellCardsPerDeck, d.Len())

		var ids []string
		dungeons, spells := 0, 0
		for _, c := range d.Cards() {
			ids = append(ids, c.ID)
			assert.True(t, strings.Contains(c.ID, "_"+p+"_"), c.ID)
			switch c.Kind {
			case cards.KindDungeon:
				dungeons++
			case cards.KindSpell:
				spells++
			}
		}
		assert.Equal(t, DungeonCardsPerDeck, dungeons)
		assert.Equal(t, SpellCardsPerDeck, spells)
		assert.Equal(t, []string{
			"dung1_" + p + "_0", "dung1_" + p + "_1", "dung1_" + p + "_2", "dung1_" + p + "_3", "dung1_" + p + "_4",
			"spell1_" + p + "_0", "spell1_" + p + "_1",
		}, ids)
	}
}

func TestRandomizePlayerDecks_ClearsPreviousCards(t *testing.T) {
	b := New()
	b.InitPlayerDeck("alice")
	require.NoError(t, b.RandomizePlayerDecks())
	require.NoError(t, b.RandomizePlayerDecks())

	d, _ := b.PlayerDeck("alice")
	assert.Equal(t, DungeonCardsPerDeck+SpellCardsPerDeck, d.Len())

	back, err := cards.ParseDeck(d.String())
	require.NoError(t, err)
	assert.Equal(t, d.String(), back.String())
}

func TestRandomCard_Errors(t *testing.T) {
	b := New()
	_, err := b.randomCard(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	bad := New(WithPicker(func(n int) (int, error) { return n, nil }))
	_, err = bad.DrawBoss()
	assert.Error(t, err)
	_, err = bad.Boss()
	assert.ErrorIs(t, err, ErrBossNotSet)
}

func TestCryptoPicker_InRange(t *testing.T) {
	for range 200 {
		i, err := CryptoPicker(4)
		require.NoError(t, err)
		require.GreaterOrEqual(t, i, 0)
		require.Less(t, i, 4)
	}
}

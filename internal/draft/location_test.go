package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationEquality(t *testing.T) {
	assert.Equal(t, DeckLoc(1, 3), DeckLoc(1, 3))
	assert.NotEqual(t, DeckLoc(1, 3), SideboardLoc(1, 3), "same coordinates in different areas must differ")
	assert.NotEqual(t, DeckLoc(1, 3), DeckLoc(1, 4))
}

func TestAddRemoveRoundTrip(t *testing.T) {
	board := NewMainboard()
	loc := DeckLoc(0, 2)

	added, err := AddCard(board, loc, 7)
	require.NoError(t, err, "AddCard error")

	card, removed, err := RemoveCard(added, loc)
	require.NoError(t, err, "RemoveCard error")
	assert.Equal(t, 7, card, "removed card mismatch")
	assert.Equal(t, board, removed, "remove after add should restore the board")

	restored, err := AddCard(removed, loc, 7)
	require.NoError(t, err, "re-add error")
	assert.Equal(t, added, restored, "add after remove should restore the board")
}

func TestRemoveTakesFirstCard(t *testing.T) {
	board := NewMainboard()
	loc := DeckLoc(0, 0)
	for _, idx := range []int{3, 5, 9} {
		var err error
		board, err = AddCard(board, loc, idx)
		require.NoError(t, err, "AddCard error")
	}

	card, board, err := RemoveCard(board, loc)
	require.NoError(t, err, "RemoveCard error")
	assert.Equal(t, 3, card, "RemoveCard must take the first card in the cell")

	cell, err := board.CardsAt(loc)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 9}, cell)
}

func TestMoveCardIdentity(t *testing.T) {
	board := NewMainboard()
	loc := DeckLoc(1, 4)
	board, err := AddCard(board, loc, 11)
	require.NoError(t, err)

	moved, err := MoveCard(board, loc, loc)
	require.NoError(t, err, "move onto same cell should be a no-op")
	assert.Equal(t, board, moved)
}

func TestMoveCardBetweenCells(t *testing.T) {
	board := NewMainboard()
	src, dst := DeckLoc(0, 1), DeckLoc(1, 6)
	board, err := AddCard(board, src, 4)
	require.NoError(t, err)

	moved, err := MoveCard(board, src, dst)
	require.NoError(t, err, "MoveCard error")

	srcCell, err := moved.CardsAt(src)
	require.NoError(t, err)
	assert.Empty(t, srcCell)
	dstCell, err := moved.CardsAt(dst)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, dstCell)
}

func TestAddressingFailuresLeaveBoardUnchanged(t *testing.T) {
	board := NewMainboard()
	board, err := AddCard(board, DeckLoc(0, 0), 1)
	require.NoError(t, err)
	snapshot := board

	_, err = AddCard(board, DeckLoc(5, 0), 2)
	assert.ErrorIs(t, err, ErrOutOfBounds, "row beyond category count must be rejected")
	_, err = AddCard(board, DeckLoc(0, boardColumns), 2)
	assert.ErrorIs(t, err, ErrOutOfBounds, "column beyond bucket count must be rejected")
	_, err = AddCard(board, SideboardLoc(0, 0), 2)
	assert.ErrorIs(t, err, ErrOutOfBounds, "wrong area must be rejected")

	_, _, err = RemoveCard(board, DeckLoc(1, 1))
	assert.ErrorIs(t, err, ErrEmptyCell)
	_, _, err = RemoveCard(board, DeckLoc(9, 9))
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = MoveCard(board, DeckLoc(1, 1), DeckLoc(0, 0))
	assert.ErrorIs(t, err, ErrEmptyCell)

	assert.Equal(t, snapshot, board, "rejected mutations must leave the board unchanged")
}

func TestSideboardAutoExtendsRows(t *testing.T) {
	sideboard := NewSideboard()
	require.Equal(t, 1, sideboard.rowCount())

	extended, err := AddCard(sideboard, SideboardLoc(1, 0), 3)
	require.NoError(t, err, "sideboard should grow a second row on demand")
	assert.Equal(t, 2, extended.rowCount())

	_, err = AddCard(extended, SideboardLoc(2, 0), 4)
	assert.ErrorIs(t, err, ErrOutOfBounds, "rows never grow past the category count")
}

func TestPackBoardsNeverExtend(t *testing.T) {
	pack := NewBoard(AreaPack, 1, 3)
	_, err := AddCard(pack, PackLoc(1, 0), 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDefaultPosition(t *testing.T) {
	board := NewMainboard()

	creature := Card{Name: "Bear", TypeLine: "Creature — Bear", ManaValue: 2}
	spell := Card{Name: "Bolt", TypeLine: "Instant", ManaValue: 1}
	huge := Card{Name: "Emrakul", TypeLine: "Legendary Creature — Eldrazi", ManaValue: 15}

	assert.Equal(t, DeckLoc(0, 2), DefaultPosition(creature, board))
	assert.Equal(t, DeckLoc(1, 1), DefaultPosition(spell, board))
	assert.Equal(t, DeckLoc(0, 7), DefaultPosition(huge, board), "mana value clips to the last column")

	// Determinism: repeated calls with identical inputs agree.
	for i := 0; i < 5; i++ {
		assert.Equal(t, DefaultPosition(creature, board), DefaultPosition(creature, board))
	}
}

package draft

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(n int) []Card {
	pool := make([]Card, n)
	for i := range pool {
		typeLine := "Creature — Tester"
		if i%3 == 0 {
			typeLine = "Instant"
		}
		pool[i] = Card{
			Name:      fmt.Sprintf("C%03d", i),
			TypeLine:  typeLine,
			ManaValue: i % 11,
			Rating:    float64(i%10) / 2,
		}
	}
	return pool
}

func testBasics() []Card {
	names := []string{"Plains", "Island", "Swamp", "Mountain", "Forest"}
	basics := make([]Card, len(names))
	for i, name := range names {
		basics[i] = Card{Name: name, TypeLine: "Basic Land — " + name}
	}
	return basics
}

func makeStandardDraft(t *testing.T, seats, packs, cardsPerPack int) *Draft {
	t.Helper()
	cfg := Config{
		Type:         Standard,
		SeatCount:    seats,
		PackCount:    packs,
		CardsPerPack: cardsPerPack,
		Seed:         42,
	}
	d, err := NewStandardDraft(cfg, testPool(seats*packs*cardsPerPack), testBasics())
	require.NoError(t, err, "NewStandardDraft error")
	return d
}

func makeGridDraft(t *testing.T, draftType Type, packs int) *Draft {
	t.Helper()
	cfg := Config{Type: draftType, PackCount: packs, Seed: 42}
	d, err := NewGridDraft(cfg, testPool(packs*gridSize), testBasics())
	require.NoError(t, err, "NewGridDraft error")
	return d
}

// snapshot serializes the externally observable draft state so tests can
// assert deep equality before and after rejected commands.
func snapshot(t *testing.T, d *Draft) string {
	t.Helper()
	raw, err := json.Marshal(d)
	require.NoError(t, err, "marshal draft")
	return string(raw)
}

func TestNewStandardDraftValidation(t *testing.T) {
	pool := testPool(8 * 3 * 15)

	_, err := NewStandardDraft(Config{Type: Standard, SeatCount: 1, PackCount: 3, CardsPerPack: 15}, pool, nil)
	require.Error(t, err, "single seat must be rejected")

	_, err = NewStandardDraft(Config{Type: Standard, SeatCount: 8, PackCount: 3, CardsPerPack: 15}, pool[:100], nil)
	require.Error(t, err, "short pool must be rejected")

	_, err = NewGridDraft(Config{Type: Standard, PackCount: 3}, pool[:27], nil)
	require.Error(t, err, "NewGridDraft must reject non-grid types")
}

func TestNewDraftDealsEveryCardOnce(t *testing.T) {
	d := makeStandardDraft(t, 8, 3, 15)
	require.NoError(t, d.CheckConservation())
	assert.Len(t, d.Cards, 8*3*15+5)
	assert.Len(t, d.Basics, 5)

	g := makeGridDraft(t, GridBot, 18)
	require.NoError(t, g.CheckConservation())
	assert.Len(t, g.UnopenedPacks[0], 18)
	assert.True(t, g.Seats[1].Bot, "seat 1 of a grid-bot draft is the bot")
}

func TestDraftSeedReproducibility(t *testing.T) {
	a := makeStandardDraft(t, 4, 2, 5)
	b := makeStandardDraft(t, 4, 2, 5)
	assert.Equal(t, a.UnopenedPacks, b.UnopenedPacks, "equal seeds must deal equal packs")

	cfg := Config{Type: Standard, SeatCount: 4, PackCount: 2, CardsPerPack: 5, Seed: 43}
	c, err := NewStandardDraft(cfg, testPool(4*2*5), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.UnopenedPacks, c.UnopenedPacks, "different seeds should deal different packs")
}

func TestStandardDraftFullScenario(t *testing.T) {
	d := makeStandardDraft(t, 8, 3, 15)

	for {
		seat, ok := d.ResolveActingSeat()
		if !ok {
			break
		}
		pack, err := d.PackForSeat(seat)
		require.NoErrorf(t, err, "PackForSeat seat %d", seat)
		require.NotEmptyf(t, pack, "seat %d has an empty pack in front of it", seat)
		require.NoError(t, d.ApplyPick(seat, PackPick{Indices: []int{pack[0]}}))
		require.NoError(t, d.CheckConservation(), "conservation broken mid-draft")
	}

	assert.True(t, d.Completed, "draft should be terminal")
	for i, seat := range d.Seats {
		assert.Lenf(t, seat.PickOrder, 45, "seat %d pick order length", i)
		assert.Equalf(t, 45, seat.Mainboard.Count(), "seat %d mainboard count", i)
	}
	for _, perSeat := range d.UnopenedPacks {
		for _, pack := range perSeat {
			assert.Empty(t, pack, "every pack must be exhausted")
		}
	}
	_, ok := d.ResolveActingSeat()
	assert.False(t, ok, "no acting seat after completion")

	err := d.ApplyPick(0, PackPick{Indices: []int{0}})
	assert.ErrorIs(t, err, ErrDraftComplete)
}

func TestStandardDraftTurnGating(t *testing.T) {
	d := makeStandardDraft(t, 4, 1, 3)

	acting, ok := d.ResolveActingSeat()
	require.True(t, ok)
	require.Equal(t, 0, acting, "seat 0 acts first")

	before := snapshot(t, d)
	pack, err := d.PackForSeat(2)
	require.NoError(t, err)
	err = d.ApplyPick(2, PackPick{Indices: []int{pack[0]}})
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, before, snapshot(t, d), "rejected pick must not mutate state")
}

func TestStandardDraftPassDirection(t *testing.T) {
	d := makeStandardDraft(t, 4, 2, 2)

	// First pack passes left: after everyone picks once, seat 0 sees the
	// remainder of the pack dealt to seat 3.
	dealtToSeat3 := append(Pack(nil), d.UnopenedPacks[3][0]...)
	for seat := 0; seat < 4; seat++ {
		pack, err := d.PackForSeat(seat)
		require.NoError(t, err)
		require.NoError(t, d.ApplyPick(seat, PackPick{Indices: []int{pack[0]}}))
	}
	pack, err := d.PackForSeat(0)
	require.NoError(t, err)
	assert.Equal(t, []int(dealtToSeat3[1:]), []int(pack), "second pick of pack one comes from the right-hand neighbor")

	// Finish pack one, then check pack two passes the other way.
	for seat := 0; seat < 4; seat++ {
		pack, err := d.PackForSeat(seat)
		require.NoError(t, err)
		require.NoError(t, d.ApplyPick(seat, PackPick{Indices: []int{pack[0]}}))
	}
	dealtToSeat1 := append(Pack(nil), d.UnopenedPacks[1][1]...)
	for seat := 0; seat < 4; seat++ {
		pack, err := d.PackForSeat(seat)
		require.NoError(t, err)
		require.NoError(t, d.ApplyPick(seat, PackPick{Indices: []int{pack[0]}}))
	}
	pack, err = d.PackForSeat(0)
	require.NoError(t, err)
	assert.Equal(t, []int(dealtToSeat1[1:]), []int(pack), "second pack passes right")
}

func TestStandardDraftRejectsBadSelections(t *testing.T) {
	d := makeStandardDraft(t, 2, 1, 3)
	before := snapshot(t, d)

	err := d.ApplyPick(0, PackPick{Indices: []int{}})
	assert.ErrorIs(t, err, ErrInvalidSelection, "empty pick")

	err = d.ApplyPick(0, PackPick{Indices: []int{999999}})
	assert.ErrorIs(t, err, ErrInvalidSelection, "card not in pack")

	err = d.ApplyPick(0, GridPick{Cells: []GridCell{{CardIndex: 0, CellIndex: 0}}})
	assert.ErrorIs(t, err, ErrInvalidSelection, "grid pick in standard draft")

	err = d.ApplyPick(9, PackPick{Indices: []int{0}})
	assert.ErrorIs(t, err, ErrInvalidSelection, "seat out of range")

	assert.Equal(t, before, snapshot(t, d), "rejections must leave the draft unchanged")
}

func TestPicksLandAtDefaultPositions(t *testing.T) {
	d := makeStandardDraft(t, 2, 1, 2)
	seat, _ := d.ResolveActingSeat()
	pack, err := d.PackForSeat(seat)
	require.NoError(t, err)

	cardIndex := pack[0]
	card := d.Cards[cardIndex]
	loc := DefaultPosition(card, d.Seats[seat].Mainboard)
	require.NoError(t, d.ApplyPick(seat, PackPick{Indices: []int{cardIndex}}))

	cell, err := d.Seats[seat].Mainboard.CardsAt(loc)
	require.NoError(t, err)
	assert.Contains(t, cell, cardIndex, "picked card must land at its default position")
}

func TestMoveBetweenBoards(t *testing.T) {
	d := makeStandardDraft(t, 2, 1, 2)
	seat := 0
	pack, err := d.PackForSeat(seat)
	require.NoError(t, err)
	cardIndex := pack[0]
	loc := DefaultPosition(d.Cards[cardIndex], d.Seats[seat].Mainboard)
	require.NoError(t, d.ApplyPick(seat, PackPick{Indices: []int{cardIndex}}))

	require.NoError(t, d.MoveBetweenBoards(seat, loc))
	assert.Equal(t, 0, d.Seats[seat].Mainboard.Count())
	assert.Equal(t, 1, d.Seats[seat].Sideboard.Count())
	assert.Contains(t, d.Seats[seat].Sideboard.Indices(), cardIndex)

	// And back again.
	side := DefaultPosition(d.Cards[cardIndex], d.Seats[seat].Sideboard)
	require.NoError(t, d.MoveBetweenBoards(seat, side))
	assert.Equal(t, 1, d.Seats[seat].Mainboard.Count())
	assert.Equal(t, 0, d.Seats[seat].Sideboard.Count())

	err = d.MoveBetweenBoards(seat, PackLoc(0, 0))
	assert.ErrorIs(t, err, ErrOutOfBounds, "pack area is not a board")
}

func TestRehydrateRestoresRotation(t *testing.T) {
	d := makeStandardDraft(t, 4, 2, 3)
	require.NoError(t, d.ApplyPick(0, PackPick{Indices: []int{mustPack(t, d, 0)[0]}}))

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	var loaded Draft
	require.NoError(t, json.Unmarshal(raw, &loaded))
	loaded.Rehydrate()

	seat, ok := loaded.ResolveActingSeat()
	require.True(t, ok)
	assert.Equal(t, 1, seat)
	pack, err := loaded.PackForSeat(seat)
	require.NoError(t, err)
	require.NoError(t, loaded.ApplyPick(seat, PackPick{Indices: []int{pack[0]}}))
	require.NoError(t, loaded.CheckConservation())
}

func mustPack(t *testing.T, d *Draft, seat int) Pack {
	t.Helper()
	pack, err := d.PackForSeat(seat)
	require.NoError(t, err)
	return pack
}

package draft

import "fmt"

// Standard draft turn resolution. Packs rotate between seats once per pick,
// alternating direction each pack; the rotation offsets are precomputed at
// creation, so the pack in front of a seat is a pure lookup from how many
// picks that seat has made. Within one pick step seats act in ascending seat
// order, which serializes the table into the single acting seat the turn
// gate needs.

// Progress reports where a seat currently is in a standard draft.
type Progress struct {
	PackNumber int `json:"packNumber"`
	PickNumber int `json:"pickNumber"`
	PicksLeft  int `json:"picksLeft"`
}

// SeatProgress derives a seat's pack and pick number from its pick history.
func (d *Draft) SeatProgress(seat int) Progress {
	picks := len(d.Seats[seat].PickOrder)
	return Progress{
		PackNumber: picks / d.CardsPerPack,
		PickNumber: picks % d.CardsPerPack,
		PicksLeft:  d.PackCount*d.CardsPerPack - picks,
	}
}

func (d *Draft) resolveStandardActingSeat() (int, bool) {
	totalPicks := d.PackCount * d.CardsPerPack
	acting, best := -1, totalPicks
	for i := range d.Seats {
		picks := len(d.Seats[i].PickOrder)
		if picks < best {
			acting, best = i, picks
		}
	}
	if acting == -1 || best >= totalPicks {
		return -1, false
	}
	return acting, true
}

// originSeat resolves which seat's dealt pack is in front of seat for a
// given pack and pick number.
func (d *Draft) originSeat(seat, packNumber, pickNumber int) int {
	n := len(d.Seats)
	offset := d.rotation[packNumber][pickNumber]
	return ((seat+offset)%n + n) % n
}

// PackForSeat returns the pack currently in front of seat. The slice is the
// live pack; callers must not mutate it.
func (d *Draft) PackForSeat(seat int) (Pack, error) {
	if seat < 0 || seat >= len(d.Seats) {
		return nil, ErrOutOfBounds
	}
	p := d.SeatProgress(seat)
	if p.PicksLeft <= 0 {
		return nil, ErrDraftComplete
	}
	origin := d.originSeat(seat, p.PackNumber, p.PickNumber)
	return d.UnopenedPacks[origin][p.PackNumber], nil
}

func (d *Draft) applyStandardPick(seat int, pick PackPick) error {
	if len(pick.Indices) != 1 {
		return fmt.Errorf("%w: standard picks take exactly one card, got %d", ErrInvalidSelection, len(pick.Indices))
	}
	cardIndex := pick.Indices[0]

	progress := d.SeatProgress(seat)
	origin := d.originSeat(seat, progress.PackNumber, progress.PickNumber)
	pack := d.UnopenedPacks[origin][progress.PackNumber]

	at := -1
	for i, idx := range pack {
		if idx == cardIndex {
			at = i
			break
		}
	}
	if at == -1 {
		return fmt.Errorf("%w: card %d is not in the pack", ErrInvalidSelection, cardIndex)
	}

	// Validation done; mutate. placePick cannot fail here because default
	// positions are always in bounds for deck boards.
	shrunk := make(Pack, 0, len(pack)-1)
	shrunk = append(shrunk, pack[:at]...)
	shrunk = append(shrunk, pack[at+1:]...)
	d.UnopenedPacks[origin][progress.PackNumber] = shrunk

	if err := d.placePick(seat, []int{cardIndex}); err != nil {
		// restore the pack so a failed placement observes nothing
		d.UnopenedPacks[origin][progress.PackNumber] = pack
		return err
	}

	d.refreshCompletion()
	return nil
}

func (d *Draft) refreshCompletion() {
	if _, ok := d.ResolveActingSeat(); !ok {
		d.Completed = true
	}
}

package draft

import "fmt"

// Grid draft resolution. Two seats alternate strictly every pick over a
// shared queue of 3x3 grids; a pick claims one full row or column. Three
// picks close a grid and open the next, and whatever cells the three picks
// left behind stay in the retired grid.
//
// Nothing about the turn is stored. Two distinct lines of a 3x3 grid share
// at most one cell, so the number of picks already made in a grid is fully
// determined by how many of its cells are claimed: 0 cells = 0 picks,
// 3 = 1, 5 or 6 = 2, 7 or more = 3. That makes the whole drafter state a
// pure function of the pack queue.

const (
	gridSize     = 9
	gridRowLen   = 3
	picksPerGrid = 3
)

// GridState is the derived view of a grid draft from one seat's chair.
type GridState struct {
	// Turn is true when it is this seat's turn to pick.
	Turn     bool `json:"turn"`
	NumPacks int  `json:"numPacks"`
	PackNum  int  `json:"packNum"`
	PickNum  int  `json:"pickNum"`
	// CardsInPack is the current grid's nine cells in position order, with
	// claimed cells set to -1. Nil once the draft is complete.
	CardsInPack []int `json:"cardsInPack"`
	// TotalPicks counts picks made so far across both seats.
	TotalPicks int `json:"totalPicks"`
}

func picksFromClaimed(claimed int) int {
	switch {
	case claimed >= 7:
		return 3
	case claimed >= 5:
		return 2
	case claimed >= 3:
		return 1
	default:
		return 0
	}
}

func (p Pack) claimedCells() int {
	n := 0
	for _, idx := range p {
		if idx == claimedCell {
			n++
		}
	}
	return n
}

// gridProgress walks the shared queue and returns the current pack number
// and the pick number within it.
func (d *Draft) gridProgress() (packNum, pickNum int) {
	queue := d.UnopenedPacks[0]
	for i, pack := range queue {
		picks := picksFromClaimed(pack.claimedCells())
		if picks < picksPerGrid {
			return i, picks
		}
	}
	return len(queue), 0
}

// GridDrafterState derives the grid drafter state for a seat. Turn parity
// comes from the total pick count: seat 0 takes even picks, seat 1 odd.
func (d *Draft) GridDrafterState(seat int) GridState {
	packNum, pickNum := d.gridProgress()
	total := packNum*picksPerGrid + pickNum
	state := GridState{
		NumPacks:   d.PackCount,
		PackNum:    packNum,
		PickNum:    pickNum,
		TotalPicks: total,
	}
	if packNum >= d.PackCount {
		return state
	}
	state.Turn = total%2 == seat%2
	pack := d.UnopenedPacks[0][packNum]
	state.CardsInPack = make([]int, len(pack))
	copy(state.CardsInPack, pack)
	return state
}

func (d *Draft) resolveGridActingSeat() (int, bool) {
	packNum, pickNum := d.gridProgress()
	if packNum >= d.PackCount {
		return -1, false
	}
	return (packNum*picksPerGrid + pickNum) % 2, true
}

// GridOption is one of the up-to-six claimable lines of the current grid,
// reduced to its still-available cells.
type GridOption struct {
	// Index is the option's position in the fixed enumeration: row 0,
	// column 0, row 1, column 1, row 2, column 2.
	Index int
	Cells []GridCell
}

func gridLineCells(option int) [gridRowLen]int {
	ind := option / 2
	var cells [gridRowLen]int
	for offset := 0; offset < gridRowLen; offset++ {
		if option%2 == 0 {
			cells[offset] = gridRowLen*ind + offset // row
		} else {
			cells[offset] = ind + gridRowLen*offset // column
		}
	}
	return cells
}

// GridOptions enumerates the legal picks for a grid, skipping claimed cells
// and dropping lines with nothing left in them.
func GridOptions(pack Pack) []GridOption {
	options := []GridOption{}
	for i := 0; i < 2*gridRowLen; i++ {
		cells := []GridCell{}
		for _, cellIndex := range gridLineCells(i) {
			if cellIndex < len(pack) && pack[cellIndex] != claimedCell {
				cells = append(cells, GridCell{CardIndex: pack[cellIndex], CellIndex: cellIndex})
			}
		}
		if len(cells) > 0 {
			options = append(options, GridOption{Index: i, Cells: cells})
		}
	}
	return options
}

func sameCells(a, b []GridCell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (d *Draft) applyGridPick(seat int, pick GridPick) error {
	packNum, _ := d.gridProgress()
	if packNum >= d.PackCount {
		return ErrDraftComplete
	}
	pack := d.UnopenedPacks[0][packNum]

	var chosen *GridOption
	for _, option := range GridOptions(pack) {
		option := option
		if sameCells(option.Cells, pick.Cells) {
			chosen = &option
			break
		}
	}
	if chosen == nil {
		return fmt.Errorf("%w: cells do not match any open row or column", ErrInvalidSelection)
	}

	cardIndices := make([]int, 0, len(chosen.Cells))
	for _, cell := range chosen.Cells {
		cardIndices = append(cardIndices, cell.CardIndex)
	}

	next := make(Pack, len(pack))
	copy(next, pack)
	for _, cell := range chosen.Cells {
		next[cell.CellIndex] = claimedCell
	}
	d.UnopenedPacks[0][packNum] = next

	if err := d.placePick(seat, cardIndices); err != nil {
		d.UnopenedPacks[0][packNum] = pack
		return err
	}
	s := &d.Seats[seat]
	s.PickedIndices = append(s.PickedIndices, cardIndices...)

	d.refreshCompletion()
	return nil
}

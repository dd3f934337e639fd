package draft

// Area tags which of a seat's layouts a Location addresses.
type Area uint8

const (
	AreaPack Area = iota
	AreaDeck
	AreaSideboard
)

func (a Area) String() string {
	switch a {
	case AreaPack:
		return "pack"
	case AreaDeck:
		return "deck"
	case AreaSideboard:
		return "sideboard"
	}
	return "unknown"
}

// Location identifies a single cell within a seat's layout. It is a pure
// coordinate: it never owns card data. Two locations are equal iff all three
// fields match, which plain == gives us.
type Location struct {
	Area Area `json:"area"`
	Row  int  `json:"row"`
	Col  int  `json:"col"`
}

func PackLoc(row, col int) Location      { return Location{Area: AreaPack, Row: row, Col: col} }
func DeckLoc(row, col int) Location      { return Location{Area: AreaDeck, Row: row, Col: col} }
func SideboardLoc(row, col int) Location { return Location{Area: AreaSideboard, Row: row, Col: col} }

const (
	// boardColumns is the number of mana-value buckets in a deck row.
	boardColumns = 8
	// boardMaxRows is the category count boards may grow to: creatures and
	// noncreatures.
	boardMaxRows = 2
)

// Board is a grid of cells, each cell an ordered list of card indices.
// Rows are categories, columns are mana-value buckets. All mutations are
// pure: they return a new Board sharing untouched rows and cells with the
// receiver, so a rejected mutation leaves the original unreachable by the
// caller and byte-for-byte unchanged.
type Board struct {
	Area Area      `json:"area"`
	Rows [][][]int `json:"rows"`
}

// NewBoard builds an empty rows x cols grid for the given area.
func NewBoard(area Area, rows, cols int) Board {
	grid := make([][][]int, rows)
	for i := range grid {
		grid[i] = make([][]int, cols)
		for j := range grid[i] {
			grid[i][j] = []int{}
		}
	}
	return Board{Area: area, Rows: grid}
}

// NewMainboard is the default two-row (creature / noncreature) deck layout.
func NewMainboard() Board { return NewBoard(AreaDeck, 2, boardColumns) }

// NewSideboard starts with a single row; it can extend to the category count.
func NewSideboard() Board { return NewBoard(AreaSideboard, 1, boardColumns) }

func (b Board) rowCount() int { return len(b.Rows) }

func (b Board) colCount() int {
	if len(b.Rows) == 0 {
		return 0
	}
	return len(b.Rows[0])
}

// CardsAt returns the cell at loc. The slice is shared; callers must not
// mutate it.
func (b Board) CardsAt(loc Location) ([]int, error) {
	if err := b.check(loc); err != nil {
		return nil, err
	}
	return b.Rows[loc.Row][loc.Col], nil
}

// Count reports how many card indices the board holds in total.
func (b Board) Count() int {
	n := 0
	for _, row := range b.Rows {
		for _, cell := range row {
			n += len(cell)
		}
	}
	return n
}

// Indices returns every card index on the board in row, column, cell order.
func (b Board) Indices() []int {
	out := []int{}
	for _, row := range b.Rows {
		for _, cell := range row {
			out = append(out, cell...)
		}
	}
	return out
}

func (b Board) check(loc Location) error {
	if loc.Area != b.Area {
		return ErrOutOfBounds
	}
	if loc.Row < 0 || loc.Row >= b.rowCount() || loc.Col < 0 || loc.Col >= b.colCount() {
		return ErrOutOfBounds
	}
	return nil
}

// withCell returns a copy of b with a single cell replaced. Only the touched
// row and cell are copied; every other row is shared with the receiver.
func (b Board) withCell(row, col int, cell []int) Board {
	rows := make([][][]int, len(b.Rows))
	copy(rows, b.Rows)
	newRow := make([][]int, len(b.Rows[row]))
	copy(newRow, b.Rows[row])
	newRow[col] = cell
	rows[row] = newRow
	return Board{Area: b.Area, Rows: rows}
}

// AddCard appends cardIndex to the cell at loc and returns the new board.
// Deck and sideboard grids auto-extend rows up to the category count; packs
// never extend.
func AddCard(b Board, loc Location, cardIndex int) (Board, error) {
	if loc.Area != b.Area || loc.Row < 0 || loc.Col < 0 || loc.Col >= b.colCount() {
		return b, ErrOutOfBounds
	}
	if loc.Row >= b.rowCount() {
		if b.Area == AreaPack || loc.Row >= boardMaxRows {
			return b, ErrOutOfBounds
		}
		rows := make([][][]int, loc.Row+1)
		copy(rows, b.Rows)
		for r := b.rowCount(); r <= loc.Row; r++ {
			fresh := make([][]int, b.colCount())
			for j := range fresh {
				fresh[j] = []int{}
			}
			rows[r] = fresh
		}
		b = Board{Area: b.Area, Rows: rows}
	}
	old := b.Rows[loc.Row][loc.Col]
	cell := make([]int, len(old), len(old)+1)
	copy(cell, old)
	cell = append(cell, cardIndex)
	return b.withCell(loc.Row, loc.Col, cell), nil
}

// RemoveCard removes and returns the first card index at loc.
func RemoveCard(b Board, loc Location) (int, Board, error) {
	if err := b.check(loc); err != nil {
		return 0, b, err
	}
	old := b.Rows[loc.Row][loc.Col]
	if len(old) == 0 {
		return 0, b, ErrEmptyCell
	}
	cell := make([]int, len(old)-1)
	copy(cell, old[1:])
	return old[0], b.withCell(loc.Row, loc.Col, cell), nil
}

// MoveCard removes the first card at src and appends it at dst. Moving a
// card onto its own cell is a no-op returning the board unchanged; callers
// that want "same cell" to mean something else decide that before calling.
func MoveCard(b Board, src, dst Location) (Board, error) {
	if src == dst {
		if err := b.check(src); err != nil {
			return b, err
		}
		return b, nil
	}
	cardIndex, removed, err := RemoveCard(b, src)
	if err != nil {
		return b, err
	}
	added, err := AddCard(removed, dst, cardIndex)
	if err != nil {
		return b, err
	}
	return added, nil
}

// DefaultPosition decides where a newly picked card lands: creatures in row
// zero, everything else in the next row, column by mana value, clipped to
// the board. Identical inputs always yield the identical location.
func DefaultPosition(card Card, b Board) Location {
	row := 1
	if card.IsCreature() {
		row = 0
	}
	if row >= b.rowCount() && b.Area == AreaPack {
		row = b.rowCount() - 1
	}
	col := card.ManaValueColumn()
	if max := b.colCount() - 1; col > max {
		col = max
	}
	return Location{Area: b.Area, Row: row, Col: col}
}

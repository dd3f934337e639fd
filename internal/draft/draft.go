package draft

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Type selects which state machine drives the draft.
type Type string

const (
	Standard      Type = "standard"
	GridBot       Type = "grid-bot"
	GridTwoPlayer Type = "grid-2player"
)

func (t Type) IsGrid() bool { return t == GridBot || t == GridTwoPlayer }

// Seat is one participant slot, human or bot.
type Seat struct {
	Name string `json:"name"`
	Bot  bool   `json:"bot"`

	// PickOrder is the append-only history of card indices this seat chose,
	// in choice order.
	PickOrder []int `json:"pickOrder"`
	// PickedIndices are the card indices this seat has claimed from the
	// shared grid (grid drafts only).
	PickedIndices []int `json:"pickedIndices"`

	Mainboard Board `json:"mainboard"`
	Sideboard Board `json:"sideboard"`
}

// Pack is an ordered group of card indices presented together. Grid packs
// keep their nine cells positionally stable and mark claimed cells with -1.
type Pack []int

const claimedCell = -1

// Config is everything needed to materialize a draft up front.
type Config struct {
	Type         Type
	SeatCount    int
	PackCount    int
	CardsPerPack int
	// BotSeats lists which seat numbers are bot controlled.
	BotSeats []int
	// Seed drives pack shuffling. Equal seeds reproduce equal drafts; that
	// is all the fairness the engine promises.
	Seed int64
}

// Draft is the aggregate root. It is created fully materialized, mutated
// only through ApplyPick and MoveBetweenBoards, and frozen once Completed.
type Draft struct {
	ID   string `json:"id"`
	Type Type   `json:"draftType"`

	// Cards is the immutable card index. All other structures refer to
	// cards by position here.
	Cards []Card `json:"cards"`
	// Basics are indices of basic lands available for deck building. They
	// sit outside pick conservation.
	Basics []int `json:"basics"`

	Seats []Seat `json:"seats"`

	// UnopenedPacks holds pack contents. Standard: [originSeat][packNumber].
	// Grid: a single shared queue at [0][packNumber], nine cells each.
	UnopenedPacks [][]Pack `json:"unopenedPacks"`

	PackCount    int  `json:"packCount"`
	CardsPerPack int  `json:"cardsPerPack"`
	Completed    bool `json:"completed"`

	// rotation[pack][pick] is the precomputed origin-seat offset for the
	// standard draft pass pattern. Rebuilt by Rehydrate after a load.
	rotation [][]int
}

// Selection is the tagged union of pick payloads.
type Selection interface {
	isSelection()
}

// PackPick picks cards out of the pack in front of the acting seat.
type PackPick struct {
	Indices []int `json:"indices"`
}

func (PackPick) isSelection() {}

// GridCell pairs a claimed card with its cell position in the current grid.
type GridCell struct {
	CardIndex int `json:"cardIndex"`
	CellIndex int `json:"cellIndex"`
}

// GridPick claims one full row or column of the current 3x3 grid, already
// filtered down to its non-empty cells.
type GridPick struct {
	Cells []GridCell `json:"cells"`
}

func (GridPick) isSelection() {}

// NewStandardDraft deals seatCount*packCount packs of cardsPerPack cards
// from pool and seats the table. The pool must match the deal exactly so
// that no card is lost or duplicated; basics are appended to the card index
// after the pool.
func NewStandardDraft(cfg Config, pool []Card, basics []Card) (*Draft, error) {
	if cfg.SeatCount < 2 || cfg.PackCount <= 0 || cfg.CardsPerPack <= 0 {
		return nil, fmt.Errorf("invalid draft config: %d seats, %d packs of %d", cfg.SeatCount, cfg.PackCount, cfg.CardsPerPack)
	}
	need := cfg.SeatCount * cfg.PackCount * cfg.CardsPerPack
	if len(pool) != need {
		return nil, fmt.Errorf("pool has %d cards, deal needs exactly %d", len(pool), need)
	}

	d := newDraft(Standard, cfg, pool, basics)

	order := shuffledIndices(len(pool), cfg.Seed)
	d.UnopenedPacks = make([][]Pack, cfg.SeatCount)
	next := 0
	for seat := 0; seat < cfg.SeatCount; seat++ {
		d.UnopenedPacks[seat] = make([]Pack, cfg.PackCount)
		for p := 0; p < cfg.PackCount; p++ {
			pack := make(Pack, cfg.CardsPerPack)
			copy(pack, order[next:next+cfg.CardsPerPack])
			d.UnopenedPacks[seat][p] = pack
			next += cfg.CardsPerPack
		}
	}
	d.Rehydrate()
	return d, nil
}

// NewGridDraft deals packCount shared 3x3 grids for a two seat draft. For
// GridBot drafts seat 1 is the bot.
func NewGridDraft(cfg Config, pool []Card, basics []Card) (*Draft, error) {
	if !cfg.Type.IsGrid() {
		return nil, fmt.Errorf("draft type %q is not a grid draft", cfg.Type)
	}
	if cfg.PackCount <= 0 {
		return nil, fmt.Errorf("invalid grid draft config: %d packs", cfg.PackCount)
	}
	need := cfg.PackCount * gridSize
	if len(pool) != need {
		return nil, fmt.Errorf("pool has %d cards, grid deal needs exactly %d", len(pool), need)
	}

	cfg.SeatCount = 2
	cfg.CardsPerPack = gridSize
	if cfg.Type == GridBot {
		cfg.BotSeats = []int{1}
	}
	d := newDraft(cfg.Type, cfg, pool, basics)

	order := shuffledIndices(len(pool), cfg.Seed)
	queue := make([]Pack, cfg.PackCount)
	for p := 0; p < cfg.PackCount; p++ {
		pack := make(Pack, gridSize)
		copy(pack, order[p*gridSize:(p+1)*gridSize])
		queue[p] = pack
	}
	d.UnopenedPacks = [][]Pack{queue}
	return d, nil
}

func newDraft(t Type, cfg Config, pool []Card, basics []Card) *Draft {
	cards := make([]Card, 0, len(pool)+len(basics))
	cards = append(cards, pool...)
	basicIdx := make([]int, 0, len(basics))
	for i := range basics {
		basicIdx = append(basicIdx, len(pool)+i)
	}
	cards = append(cards, basics...)

	seats := make([]Seat, cfg.SeatCount)
	bots := map[int]bool{}
	for _, b := range cfg.BotSeats {
		bots[b] = true
	}
	for i := range seats {
		name := fmt.Sprintf("Seat %d", i+1)
		if bots[i] {
			name = fmt.Sprintf("Bot %d", i+1)
		}
		seats[i] = Seat{
			Name:          name,
			Bot:           bots[i],
			PickOrder:     []int{},
			PickedIndices: []int{},
			Mainboard:     NewMainboard(),
			Sideboard:     NewSideboard(),
		}
	}

	return &Draft{
		ID:           uuid.NewString(),
		Type:         t,
		Cards:        cards,
		Basics:       basicIdx,
		Seats:        seats,
		PackCount:    cfg.PackCount,
		CardsPerPack: cfg.CardsPerPack,
	}
}

func shuffledIndices(n int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

// Rehydrate rebuilds derived state (the pass rotation table) after the draft
// was reconstructed from storage.
func (d *Draft) Rehydrate() {
	if d.Type.IsGrid() {
		d.rotation = nil
		return
	}
	d.rotation = make([][]int, d.PackCount)
	for pack := 0; pack < d.PackCount; pack++ {
		d.rotation[pack] = make([]int, d.CardsPerPack)
		for pick := 0; pick < d.CardsPerPack; pick++ {
			if pack%2 == 0 {
				// odd-numbered packs (0-based even) pass left
				d.rotation[pack][pick] = -pick
			} else {
				d.rotation[pack][pick] = pick
			}
		}
	}
}

// ResolveActingSeat names the single seat allowed to act, or ok=false when
// the draft is complete.
func (d *Draft) ResolveActingSeat() (int, bool) {
	if d.Completed {
		return -1, false
	}
	if d.Type.IsGrid() {
		return d.resolveGridActingSeat()
	}
	return d.resolveStandardActingSeat()
}

// ApplyPick validates and applies one pick atomically. Picks from any seat
// other than the acting one are rejected without mutation, so duplicate or
// out-of-order commands degrade to no-ops.
func (d *Draft) ApplyPick(seat int, sel Selection) error {
	if d.Completed {
		return ErrDraftComplete
	}
	if seat < 0 || seat >= len(d.Seats) {
		return fmt.Errorf("%w: seat %d", ErrInvalidSelection, seat)
	}
	acting, ok := d.ResolveActingSeat()
	if !ok {
		return ErrDraftComplete
	}
	if seat != acting {
		return ErrNotYourTurn
	}

	switch pick := sel.(type) {
	case PackPick:
		if d.Type.IsGrid() {
			return fmt.Errorf("%w: pack pick in a grid draft", ErrInvalidSelection)
		}
		return d.applyStandardPick(seat, pick)
	case GridPick:
		if !d.Type.IsGrid() {
			return fmt.Errorf("%w: grid pick in a standard draft", ErrInvalidSelection)
		}
		return d.applyGridPick(seat, pick)
	default:
		return fmt.Errorf("%w: unknown selection type %T", ErrInvalidSelection, sel)
	}
}

// MoveBetweenBoards moves a picked card between a seat's mainboard and
// sideboard. The destination cell is the card's default position on the
// target board. This is the explicit command the UI sends once it has
// decided the player meant "send to the other board"; the engine does not
// infer that intent from gestures.
func (d *Draft) MoveBetweenBoards(seat int, src Location) error {
	if seat < 0 || seat >= len(d.Seats) {
		return ErrOutOfBounds
	}
	s := &d.Seats[seat]
	var from, to *Board
	switch src.Area {
	case AreaDeck:
		from, to = &s.Mainboard, &s.Sideboard
	case AreaSideboard:
		from, to = &s.Sideboard, &s.Mainboard
	default:
		return ErrOutOfBounds
	}
	cardIndex, removed, err := RemoveCard(*from, src)
	if err != nil {
		return err
	}
	dst := DefaultPosition(d.Cards[cardIndex], *to)
	added, err := AddCard(*to, dst, cardIndex)
	if err != nil {
		return err
	}
	*from = removed
	*to = added
	return nil
}

// MoveWithin moves a card between two cells of the same board.
func (d *Draft) MoveWithin(seat int, src, dst Location) error {
	if seat < 0 || seat >= len(d.Seats) {
		return ErrOutOfBounds
	}
	if src.Area != dst.Area {
		return ErrOutOfBounds
	}
	s := &d.Seats[seat]
	var board *Board
	switch src.Area {
	case AreaDeck:
		board = &s.Mainboard
	case AreaSideboard:
		board = &s.Sideboard
	default:
		return ErrOutOfBounds
	}
	moved, err := MoveCard(*board, src, dst)
	if err != nil {
		return err
	}
	*board = moved
	return nil
}

// CheckConservation verifies the core invariant: the multiset of card
// indices across unopened packs and all seats' pick orders equals the card
// index (minus basics) exactly once each.
func (d *Draft) CheckConservation() error {
	seen := make([]int, len(d.Cards))
	for _, perSeat := range d.UnopenedPacks {
		for _, pack := range perSeat {
			for _, idx := range pack {
				if idx == claimedCell {
					continue
				}
				if idx < 0 || idx >= len(d.Cards) {
					return fmt.Errorf("pack holds out-of-range card index %d", idx)
				}
				seen[idx]++
			}
		}
	}
	for si, seat := range d.Seats {
		for _, idx := range seat.PickOrder {
			if idx < 0 || idx >= len(d.Cards) {
				return fmt.Errorf("seat %d picked out-of-range card index %d", si, idx)
			}
			seen[idx]++
		}
	}
	basics := map[int]bool{}
	for _, b := range d.Basics {
		basics[b] = true
	}
	for idx, count := range seen {
		if basics[idx] {
			if count != 0 {
				return fmt.Errorf("basic land index %d entered the draft", idx)
			}
			continue
		}
		if count != 1 {
			return fmt.Errorf("card index %d accounted %d times", idx, count)
		}
	}
	return nil
}

// placePick appends picked cards to a seat's history and lays them into the
// mainboard at their default positions.
func (d *Draft) placePick(seat int, cardIndices []int) error {
	s := &d.Seats[seat]
	board := s.Mainboard
	for _, cardIndex := range cardIndices {
		loc := DefaultPosition(d.Cards[cardIndex], board)
		next, err := AddCard(board, loc, cardIndex)
		if err != nil {
			return err
		}
		board = next
	}
	s.PickOrder = append(s.PickOrder, cardIndices...)
	s.Mainboard = board
	return nil
}


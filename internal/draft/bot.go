package draft

import "math"

// Bot decision engine. Candidate options are scored by a small set of
// weighted oracles and the best option wins; ties break to the lowest
// option index so bot behavior is stable under replay. Scoring is a pure
// function of (options, context). Randomness is deliberately absent.

// MaxScore caps the value any single oracle can contribute for one card.
const MaxScore = 10

// denialFactor weights how much a grid bot cares about the best line it
// leaves open for the opponent.
const denialFactor = 0.5

// SynergyMatrix holds pairwise synergy weights between cards of the index.
// It comes from the card metadata service and is opaque to the engine. A nil
// matrix means no synergy signal.
type SynergyMatrix [][]float64

func (m SynergyMatrix) At(i, j int) float64 {
	if m == nil || i < 0 || i >= len(m) {
		return 0
	}
	row := m[i]
	if j < 0 || j >= len(row) {
		return 0
	}
	return row[j]
}

// BotContext is a bot seat's evaluation context: its picks so far, the cards
// it has seen go by, static ratings and synergy weights, and where the draft
// currently stands. Identical contexts always produce identical selections.
type BotContext struct {
	Cards   []Card
	Picked  []int
	Seen    []int
	Synergy SynergyMatrix

	PackNum  int
	NumPacks int
	PickNum  int
	PackSize int
}

// An oracle scores one facet of a candidate card. Its weight varies over the
// course of the draft: the weight lattice has one row per pack and one
// column per pick, interpolated when the draft's shape doesn't match the
// lattice dimensions.
type oracle struct {
	name    string
	weights [][]float64
	value   func(ctx BotContext, cardIndex int) float64
}

var botOracles = []oracle{
	{
		// Raw power level, front-loaded: early picks chase the best card.
		name: "rating",
		weights: [][]float64{
			repeatWeight(5, 15),
			repeatWeight(4, 15),
			repeatWeight(3, 15),
		},
		value: func(ctx BotContext, cardIndex int) float64 {
			return math.Min(MaxScore, ctx.Cards[cardIndex].Rating)
		},
	},
	{
		// Synergy with the cards already picked; grows as the pool does.
		name: "pick synergy",
		weights: [][]float64{
			repeatWeight(3, 15),
			repeatWeight(4, 15),
			repeatWeight(5, 15),
		},
		value: func(ctx BotContext, cardIndex int) float64 {
			if len(ctx.Picked) == 0 {
				return 0
			}
			total := 0.0
			for _, picked := range ctx.Picked {
				total += math.Min(MaxScore, ctx.Synergy.At(cardIndex, picked))
			}
			return total / float64(len(ctx.Picked))
		},
	},
	{
		// Cohesion of the pool the pick would leave behind: average pairwise
		// synergy across the picked cards plus the candidate.
		name: "internal synergy",
		weights: [][]float64{
			repeatWeight(3, 15),
			repeatWeight(4, 15),
			repeatWeight(5, 15),
		},
		value: func(ctx BotContext, cardIndex int) float64 {
			pool := append(append([]int(nil), ctx.Picked...), cardIndex)
			if len(pool) < 2 {
				return 0
			}
			total, pairs := 0.0, 0
			for i := 0; i < len(pool); i++ {
				for j := i + 1; j < len(pool); j++ {
					total += math.Min(MaxScore, ctx.Synergy.At(pool[i], pool[j]))
					pairs++
				}
			}
			return total / float64(pairs)
		},
	},
	{
		// Scarcity: how openly cards like this have been flowing. Weight
		// decays with pick number, so late in a pack the signal fades.
		name: "openness",
		weights: [][]float64{
			{4, 12, 12.3, 12.6, 13, 13.4, 13.7, 14, 15, 14.6, 14.2, 13.8, 13.4, 13, 12.6},
			{13, 12.6, 12.2, 11.8, 11.4, 11, 10.6, 10.2, 9.8, 9.4, 9, 8.6, 8.2, 7.8, 7},
			{8, 7.5, 7, 6.5, 6, 5.5, 5, 4.5, 4, 3.5, 3, 2.5, 2, 1.5, 1},
		},
		value: func(ctx BotContext, cardIndex int) float64 {
			if len(ctx.Seen) == 0 {
				return 0
			}
			total := 0.0
			for _, seen := range ctx.Seen {
				total += math.Min(MaxScore, ctx.Synergy.At(cardIndex, seen))
			}
			return total / float64(len(ctx.Seen)) / MaxScore * math.Min(MaxScore, ctx.Cards[cardIndex].Rating)
		},
	},
}

func repeatWeight(w float64, n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = w
	}
	return row
}

// latticeRow interpolates a single weight row at coord/max, averaging the
// two surrounding lattice points by distance when the coordinate falls off
// the lattice.
func latticeRow(row []float64, coord, max int) float64 {
	if len(row) == 0 {
		return 0
	}
	if max <= 0 {
		return row[0]
	}
	index := float64(len(row)) * float64(coord) / float64(max)
	floor := math.Floor(index)
	ceil := math.Ceil(index)
	if index == floor || int(ceil) >= len(row) {
		at := int(floor)
		if at > len(row)-1 {
			at = len(row) - 1
		}
		return row[at]
	}
	frac := index - floor
	return frac*row[int(ceil)] + (1-frac)*row[int(floor)]
}

// latticeWeight bilinearly interpolates a weight lattice at
// (packNum/numPacks, pickNum/packSize).
func latticeWeight(weights [][]float64, ctx BotContext) float64 {
	if len(weights) == 0 {
		return 0
	}
	inner := func(i int) float64 { return latticeRow(weights[i], ctx.PickNum, ctx.PackSize) }
	if ctx.NumPacks <= 0 {
		return inner(0)
	}
	index := float64(len(weights)) * float64(ctx.PackNum) / float64(ctx.NumPacks)
	floor := math.Floor(index)
	ceil := math.Ceil(index)
	if index == floor || int(ceil) >= len(weights) {
		at := int(floor)
		if at > len(weights)-1 {
			at = len(weights) - 1
		}
		return inner(at)
	}
	frac := index - floor
	return frac*inner(int(ceil)) + (1-frac)*inner(int(floor))
}

// ScoreCard is the per-card utility: each oracle's value times its
// interpolated weight for the current draft position.
func ScoreCard(ctx BotContext, cardIndex int) float64 {
	score := 0.0
	for _, o := range botOracles {
		score += latticeWeight(o.weights, ctx) * o.value(ctx, cardIndex)
	}
	return score
}

// SelectBotPick scores every card in the pack and returns the pick for the
// best one. An empty option list is a contract violation by the caller:
// turn resolution must never ask a bot to act with nothing to pick.
func SelectBotPick(options []int, ctx BotContext) PackPick {
	if len(options) == 0 {
		panic("draft: bot asked to pick from an empty option list")
	}
	best := 0
	bestScore := ScoreCard(ctx, options[0])
	for i := 1; i < len(options); i++ {
		if score := ScoreCard(ctx, options[i]); score > bestScore {
			best, bestScore = i, score
		}
	}
	return PackPick{Indices: []int{options[best]}}
}

// SelectGridBotPick scores the open lines of the current grid. An option's
// score is the summed utility of the cards it claims minus a denial term:
// the best line, by summed utility, that the pick would leave open to the
// opponent on their turn.
func SelectGridBotPick(state GridState, ctx BotContext) GridPick {
	pack := Pack(state.CardsInPack)
	options := GridOptions(pack)
	if len(options) == 0 {
		panic("draft: grid bot asked to pick from an empty option list")
	}

	best := 0
	bestScore := math.Inf(-1)
	for i, option := range options {
		// Score the option's cards as a sequence of picks so cards claimed
		// together count their synergy with each other, not just with the
		// pool so far.
		own := 0.0
		optCtx := ctx
		optCtx.Picked = append([]int(nil), ctx.Picked...)
		for _, cell := range option.Cells {
			own += ScoreCard(optCtx, cell.CardIndex)
			optCtx.Picked = append(optCtx.Picked, cell.CardIndex)
		}

		remaining := make(Pack, len(pack))
		copy(remaining, pack)
		for _, cell := range option.Cells {
			remaining[cell.CellIndex] = claimedCell
		}
		opponentBest := 0.0
		for _, left := range GridOptions(remaining) {
			value := 0.0
			for _, cell := range left.Cells {
				value += ScoreCard(ctx, cell.CardIndex)
			}
			if value > opponentBest {
				opponentBest = value
			}
		}

		if score := own - denialFactor*opponentBest; score > bestScore {
			best, bestScore = i, score
		}
	}
	return GridPick{Cells: options[best].Cells}
}

// BotContext assembles the evaluation context for a bot seat, pairing the
// seat's history with the externally supplied synergy weights.
func (d *Draft) BotContext(seat int, synergy SynergyMatrix) BotContext {
	ctx := BotContext{
		Cards:    d.Cards,
		Picked:   d.Seats[seat].PickOrder,
		Synergy:  synergy,
		NumPacks: d.PackCount,
		PackSize: d.CardsPerPack,
	}
	if d.Type.IsGrid() {
		state := d.GridDrafterState(seat)
		ctx.PackNum = state.PackNum
		ctx.PickNum = state.PickNum
		ctx.PackSize = picksPerGrid
		ctx.Seen = availableCells(state.CardsInPack)
		return ctx
	}
	progress := d.SeatProgress(seat)
	ctx.PackNum = progress.PackNumber
	ctx.PickNum = progress.PickNumber
	if pack, err := d.PackForSeat(seat); err == nil {
		ctx.Seen = append([]int(nil), pack...)
	}
	return ctx
}

func availableCells(cells []int) []int {
	out := []int{}
	for _, idx := range cells {
		if idx != claimedCell {
			out = append(out, idx)
		}
	}
	return out
}

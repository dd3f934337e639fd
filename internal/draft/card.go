package draft

import "strings"

// Card is one record in a draft's card index. The index is fixed at draft
// creation; every other structure refers to cards by position in it, never by
// copy. Ratings and synergy weights come from the card metadata service and
// are opaque to the engine.
type Card struct {
	Name      string  `json:"name"`
	TypeLine  string  `json:"typeLine"`
	ManaValue int     `json:"manaValue"`
	Colors    string  `json:"colors"`
	Rating    float64 `json:"rating"`
	Price     float64 `json:"price"`
}

func (c Card) IsCreature() bool {
	return strings.Contains(strings.ToLower(c.TypeLine), "creature")
}

func (c Card) IsLand() bool {
	return strings.Contains(strings.ToLower(c.TypeLine), "land")
}

// ManaValueColumn buckets a card into a deck column, clipping everything
// seven mana and up into the last column.
func (c Card) ManaValueColumn() int {
	if c.ManaValue < 0 {
		return 0
	}
	if c.ManaValue > boardColumns-1 {
		return boardColumns - 1
	}
	return c.ManaValue
}

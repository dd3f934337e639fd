package models

import "github.com/malexanderboyd/pwr9-cubedr4ft/internal/draft"

// SeatState is one seat's view of the draft, sent as the DraftState payload
// after every accepted pick. Exactly one of Pack or Grid is set, matching
// the draft type.
type SeatState struct {
	Seat      int  `json:"seat"`
	Completed bool `json:"completed"`

	Pack *PackContent     `json:"pack,omitempty"`
	Grid *draft.GridState `json:"grid,omitempty"`

	PickOrder []int       `json:"pickOrder"`
	Mainboard draft.Board `json:"mainboard"`
	Sideboard draft.Board `json:"sideboard"`
}

// PackContent is the booster currently in front of a seat.
type PackContent struct {
	Pack       []int `json:"pack"`
	PackNumber int   `json:"packNumber"`
	PickNumber int   `json:"pickNumber"`
	Timer      int   `json:"timer"`
}

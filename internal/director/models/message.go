// Package models holds the websocket wire types. Cards cross the wire as
// indices into the draft's card index, never as copies.
package models

import "github.com/malexanderboyd/pwr9-cubedr4ft/internal/draft"

type GameMessageType string

type Message struct {
	Type GameMessageType `json:"type"`
	Data string          `json:"data"`
}

type TimerSettings struct {
	Type            string `json:"type"`
	ServerForcePick bool   `json:"serverForcePick"`
}

// SubmitPickJson is a seat's pick payload. Standard drafts send Indices with
// exactly one card index; grid drafts send the Cells of one open row or
// column instead.
type SubmitPickJson struct {
	Indices []int            `json:"indices,omitempty"`
	Cells   []draft.GridCell `json:"cells,omitempty"`
}

// MoveCardJson relocates a card after it has been drafted.
type MoveCardJson struct {
	Src draft.Location `json:"src"`
	Dst draft.Location `json:"dst"`
	// SwapBoards moves the card between mainboard and sideboard instead of
	// within one board; Dst is ignored.
	SwapBoards bool `json:"swapBoards"`
}

// PickRejectedJson carries the rejection reason plus the authoritative seat
// state so the client can re-sync.
type PickRejectedJson struct {
	Reason string    `json:"reason"`
	State  SeatState `json:"state"`
}

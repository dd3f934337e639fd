// Package store persists drafts and finished decks in Postgres. Draft state
// is stored as a single JSONB document keyed by draft id; the derived fields
// the engine does not serialize are rebuilt on load.
package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malexanderboyd/pwr9-cubedr4ft/internal/draft"
)

//go:embed schema.sql
var schema embed.FS

// ErrNotFound means no draft row exists for the requested id.
var ErrNotFound = errors.New("draft not found")

type DB struct{ *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// SaveDraft upserts the draft's full state document.
func (db *DB) SaveDraft(ctx context.Context, d *draft.Draft) error {
	state, err := EncodeState(d)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `
        INSERT INTO drafts(id, draft_type, state, completed)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (id) DO UPDATE
          SET state = EXCLUDED.state,
              completed = EXCLUDED.completed,
              updated_at = now()
    `, d.ID, string(d.Type), state, d.Completed)
	return err
}

// LoadDraft fetches a draft by id and rebuilds its derived state.
func (db *DB) LoadDraft(ctx context.Context, id string) (*draft.Draft, error) {
	var state []byte
	err := db.QueryRow(ctx, `SELECT state FROM drafts WHERE id = $1`, id).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return DecodeState(state)
}

// SubmitCompletedDraft marks the draft completed and writes one deck row per
// seat. It returns the deck id for seat 0, the submitting drafter.
func (db *DB) SubmitCompletedDraft(ctx context.Context, d *draft.Draft) (string, error) {
	if !d.Completed {
		return "", fmt.Errorf("draft %s is not complete", d.ID)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	state, err := EncodeState(d)
	if err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx, `
        INSERT INTO drafts(id, draft_type, state, completed)
        VALUES ($1,$2,$3,TRUE)
        ON CONFLICT (id) DO UPDATE
          SET state = EXCLUDED.state,
              completed = TRUE,
              updated_at = now()
    `, d.ID, string(d.Type), state); err != nil {
		return "", err
	}

	var drafterDeckID string
	for seatNum, seat := range d.Seats {
		pickOrder, err := json.Marshal(seat.PickOrder)
		if err != nil {
			return "", err
		}
		mainboard, err := json.Marshal(seat.Mainboard)
		if err != nil {
			return "", err
		}
		sideboard, err := json.Marshal(seat.Sideboard)
		if err != nil {
			return "", err
		}
		// Re-submits keep the deck id minted on first submit.
		var deckID string
		if err := tx.QueryRow(ctx, `
            INSERT INTO decks(id, draft_id, seat, seat_name, bot, pick_order, mainboard, sideboard)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            ON CONFLICT (draft_id, seat) DO UPDATE
              SET pick_order = EXCLUDED.pick_order,
                  mainboard = EXCLUDED.mainboard,
                  sideboard = EXCLUDED.sideboard
            RETURNING id
        `, uuid.NewString(), d.ID, seatNum, seat.Name, seat.Bot, pickOrder, mainboard, sideboard).Scan(&deckID); err != nil {
			return "", err
		}
		if seatNum == 0 {
			drafterDeckID = deckID
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return drafterDeckID, nil
}

// EncodeState serializes a draft to its stored JSON document.
func EncodeState(d *draft.Draft) ([]byte, error) {
	return json.Marshal(d)
}

// DecodeState is the inverse of EncodeState, including the rebuild of the
// rotation table the document leaves out.
func DecodeState(state []byte) (*draft.Draft, error) {
	var d draft.Draft
	if err := json.Unmarshal(state, &d); err != nil {
		return nil, err
	}
	d.Rehydrate()
	return &d, nil
}

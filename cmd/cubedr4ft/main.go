package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/malexanderboyd/pwr9-cubedr4ft/game"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal/director"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal/draft"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal/pubsub"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal/store"
)

func main() {
	gameId := flag.String("gameId", "", "Four byte url safe hex string")
	draftType := flag.String("type", "standard", "standard, grid-bot, or grid-2player")
	seats := flag.Int("seats", 8, "seat count for standard drafts")
	packs := flag.Int("packs", 3, "packs per seat (standard) or grids in the queue (grid)")
	cardsPerPack := flag.Int("cardsPerPack", 15, "cards per pack for standard drafts")
	bots := flag.Int("bots", 0, "bot seats filled from the highest seat down (standard)")
	seed := flag.Int64("seed", 0, "pack shuffle seed; 0 picks one")
	cubePath := flag.String("cube", "cube.json", "card index json file")
	flag.Parse()

	logger := internal.GetLogger()

	env, err := game.LoadEnv()
	if err != nil {
		logger.Fatalw("bad environment", "error", err.Error())
	}

	pool, err := loadCube(*cubePath)
	if err != nil {
		logger.Fatalw("cannot load cube list", "path", *cubePath, "error", err.Error())
	}

	d, options, err := buildDraft(*draftType, *seats, *packs, *cardsPerPack, *bots, *seed, pool)
	if err != nil {
		logger.Fatalw("cannot create draft", "error", err.Error())
	}

	gameDirector := director.NewGameDirector(options, env.Port, *gameId, d)

	ctx := context.Background()
	if env.DatabaseURL != "" {
		db, err := store.Open(ctx, env.DatabaseURL)
		if err != nil {
			logger.Errorw("store disabled", "error", err.Error())
		} else {
			defer db.Close()
			if env.AutoMigrate {
				if err := store.Migrate(ctx, db); err != nil {
					logger.Fatalw("migrate failed", "error", err.Error())
				}
			}
			gameDirector.WithStore(db)
		}
	}

	if env.NatsURL != "" {
		events, err := pubsub.Connect(env.NatsURL)
		if err != nil {
			logger.Errorw("event publishing disabled", "error", err.Error())
		} else {
			defer events.Close()
			events.StartHeartbeat(d.ID)
			gameDirector.WithPublisher(events)
		}
	}

	go gameDirector.Listen()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "draftId": d.ID})
	})
	r.Get("/ws", gameDirector.WSHandler())
	r.Handle("/*", http.FileServer(http.Dir("webroot")))

	logger.Infow("starting draft server", "game", *gameId, "draft", d.ID, "port", env.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", env.Port), r); err != nil {
		logger.Fatalw("server stopped", "error", err.Error())
	}
}

func loadCube(path string) ([]draft.Card, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pool []draft.Card
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func buildDraft(draftType string, seats, packs, cardsPerPack, bots int, seed int64, pool []draft.Card) (*draft.Draft, game.GeneralOptions, error) {
	var options game.GeneralOptions
	options.Seed = seed

	switch draft.Type(draftType) {
	case draft.Standard:
		botSeats := make([]int, 0, bots)
		for i := seats - bots; i < seats; i++ {
			botSeats = append(botSeats, i)
		}
		options.Type = game.STANDARD
		options.Mode = game.CUBE
		options.GameOptions.Standard = game.StandardOptions{
			TotalPlayers: seats,
			TotalPacks:   packs,
			CardsPerPack: cardsPerPack,
			BotSeats:     botSeats,
		}
		d, err := draft.NewStandardDraft(draft.Config{
			Type:         draft.Standard,
			SeatCount:    seats,
			PackCount:    packs,
			CardsPerPack: cardsPerPack,
			BotSeats:     botSeats,
			Seed:         seed,
		}, pool, nil)
		return d, options, err
	case draft.GridBot, draft.GridTwoPlayer:
		options.Type = game.GRID
		options.Mode = game.BOT
		options.GameOptions.Grid = game.GridOptions{
			TotalPacks: packs,
			BotSeat:    draft.Type(draftType) == draft.GridBot,
		}
		d, err := draft.NewGridDraft(draft.Config{
			Type:      draft.Type(draftType),
			PackCount: packs,
			Seed:      seed,
		}, pool, nil)
		return d, options, err
	default:
		return nil, options, fmt.Errorf("unknown draft type %q", draftType)
	}
}

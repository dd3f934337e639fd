// Package director hosts one draft: it owns the websocket clients, the seat
// map, and the draft state, and is the only writer of that state. Every
// mutation funnels through the engine's turn gate, so a stale or out-of-turn
// command is rejected without side effects and answered with the
// authoritative state.
package director

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/malexanderboyd/pwr9-cubedr4ft/game"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal/director/models"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal/director/utils"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal/draft"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal/pubsub"
	"github.com/malexanderboyd/pwr9-cubedr4ft/internal/store"
)

type GameDirector struct {
	Port    int
	GameId  string
	options game.GeneralOptions

	draft   *draft.Draft
	synergy draft.SynergyMatrix

	db     *store.DB
	events *pubsub.Publisher

	// mu serializes draft mutations across client goroutines; the engine's
	// turn gate then decides which of the serialized commands stand.
	mu sync.Mutex

	gameStarted               bool
	roundTimerType            string
	roundTimerServerForcePick bool
	roundPicksTickerCh        chan int
	roundTarget               int

	host     string
	Clients  map[string]*Client
	Seats    map[string]int
	messages []*models.Message

	addClientCh      chan *Client
	delClientCh      chan *Client
	sendAllCh        chan *models.Message
	startNextRoundCh chan bool
	doneCh           chan bool
	errCh            chan error
}

func NewGameDirector(options game.GeneralOptions, port int, gameId string, d *draft.Draft) *GameDirector {
	return &GameDirector{
		Port:             port,
		GameId:           gameId,
		options:          options,
		draft:            d,
		gameStarted:      false,
		roundTimerType:   "",
		host:             models.NoHostSentinel,
		Clients:          make(map[string]*Client),
		Seats:            make(map[string]int),
		messages:         []*models.Message{},
		addClientCh:      make(chan *Client),
		delClientCh:      make(chan *Client),
		sendAllCh:        make(chan *models.Message),
		startNextRoundCh: make(chan bool),
		doneCh:           make(chan bool),
		errCh:            make(chan error),
	}
}

// WithStore attaches draft persistence. Without it the draft lives only in
// memory.
func (director *GameDirector) WithStore(db *store.DB) *GameDirector {
	director.db = db
	return director
}

// WithPublisher attaches the NATS event fan-out.
func (director *GameDirector) WithPublisher(events *pubsub.Publisher) *GameDirector {
	director.events = events
	return director
}

// WithSynergy supplies the bot scoring matrix.
func (director *GameDirector) WithSynergy(m draft.SynergyMatrix) *GameDirector {
	director.synergy = m
	return director
}

func (director *GameDirector) AddNewClient(c *Client) {
	director.addClientCh <- c
}

func (director *GameDirector) DeleteClient(c *Client) {
	director.delClientCh <- c
}

func (director *GameDirector) shutdown() {
	director.doneCh <- true
}

func (director *GameDirector) Error(err error) {
	director.errCh <- err
}

func (director *GameDirector) sendPastMessages(c *Client) {
	director.mu.Lock()
	past := append([]*models.Message(nil), director.messages...)
	director.mu.Unlock()
	for _, msg := range past {
		c.Write(msg)
	}
}

func (director *GameDirector) SendAll(msg *models.Message) {
	director.sendAllCh <- msg
}

// sendAll snapshots the client set under mu and writes outside it, so a
// slow client cannot hold the lock.
func (director *GameDirector) sendAll(msg *models.Message) {
	director.mu.Lock()
	clients := make([]*Client, 0, len(director.Clients))
	for _, c := range director.Clients {
		clients = append(clients, c)
	}
	director.mu.Unlock()
	for _, c := range clients {
		c.Write(msg)
	}
}

func (director *GameDirector) sendHostMessage(msg *models.Message) {
	host := director.Clients[director.host]
	if host != nil {
		host.Write(msg)
	}
}

// WSHandler upgrades an incoming connection and registers it as a client.
func (director *GameDirector) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		newClient, err := NewClient(director)
		if err != nil {
			director.Error(err)
			return
		}
		if hasCookie, clientID := utils.HasDraftClientIDCookie(r, models.DraftCookieName); hasCookie {
			director.mu.Lock()
			if _, ok := director.Seats[clientID]; ok {
				// Reconnecting drafter keeps their id and seat.
				newClient.Id = clientID
			}
			director.mu.Unlock()
		}

		DraftClientIDCookieHeader := utils.CreateDraftClientIDCookieHeader(newClient.Id, models.DraftCookieName)

		var upgrader = websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		}

		ws, err := upgrader.Upgrade(w, r, DraftClientIDCookieHeader)
		if err != nil {
			director.Error(err)
			return
		}

		newClient.Websocket = ws

		director.mu.Lock()
		if director.host == models.NoHostSentinel {
			director.host = newClient.Id
			newClient.Write(&models.Message{
				Type: models.HostChange,
				Data: "1",
			})
		}
		director.mu.Unlock()
		director.AddNewClient(newClient)
		go newClient.Listen()
	}
}

func (director *GameDirector) HandleClientMessage(clientID string, msg *models.Message) {
	logger := internal.GetLogger()
	switch msg.Type {
	case models.ChatMessage:
		director.SendAll(msg)
	case models.GameStart:
		if !director.gameStarted {
			var timerSetting = &models.TimerSettings{}
			if err := json.Unmarshal([]byte(msg.Data), &timerSetting); err != nil {
				director.Error(err)
			} else {
				director.roundTimerType = timerSetting.Type
				director.roundTimerServerForcePick = timerSetting.ServerForcePick
			}
			logger.Infow("starting draft", "game", director.GameId, "type", director.draft.Type)
			director.SendAll(msg)
			go director.startGame()
		}
	case models.SubmitPick:
		if director.gameStarted {
			if err := director.handleSubmitPick(clientID, msg); err != nil {
				director.Error(err)
			} else if director.roundPicksTickerCh != nil {
				select {
				case director.roundPicksTickerCh <- 1:
				default:
				}
			}
		}
	case models.MoveCard:
		if err := director.handleMoveCard(clientID, msg); err != nil {
			director.Error(err)
		}
	default:
	}
}

// handleSubmitPick runs one pick through the engine. A rejection sends the
// submitter a PickRejected message with their authoritative state and leaves
// the draft untouched; an accepted pick is persisted, broadcast, and followed
// by however many bot turns it unblocked.
func (director *GameDirector) handleSubmitPick(clientID string, msg *models.Message) error {
	var pickMsg models.SubmitPickJson
	if err := json.Unmarshal([]byte(msg.Data), &pickMsg); err != nil {
		return err
	}

	var sel draft.Selection
	if len(pickMsg.Cells) > 0 {
		sel = draft.GridPick{Cells: pickMsg.Cells}
	} else {
		sel = draft.PackPick{Indices: pickMsg.Indices}
	}

	director.mu.Lock()
	defer director.mu.Unlock()

	client := director.Clients[clientID]
	if client == nil {
		return fmt.Errorf("no client with id %s", clientID)
	}
	seat, seated := director.Seats[clientID]
	if !seated {
		return fmt.Errorf("client %s has no seat", clientID)
	}
	if err := director.draft.ApplyPick(seat, sel); err != nil {
		director.rejectPick(client, seat, err)
		return err
	}

	director.publishPick(seat, sel)
	director.afterApply()
	return nil
}

func (director *GameDirector) publishPick(seat int, sel draft.Selection) {
	if director.events == nil {
		return
	}
	var indices []int
	switch pick := sel.(type) {
	case draft.PackPick:
		indices = pick.Indices
	case draft.GridPick:
		for _, cell := range pick.Cells {
			indices = append(indices, cell.CardIndex)
		}
	}
	if err := director.events.PickApplied(director.draft.ID, seat, indices); err != nil {
		internal.GetLogger().Errorw("publish failed", "error", err.Error())
	}
}

func (director *GameDirector) handleMoveCard(clientID string, msg *models.Message) error {
	var moveMsg models.MoveCardJson
	if err := json.Unmarshal([]byte(msg.Data), &moveMsg); err != nil {
		return err
	}
	director.mu.Lock()
	defer director.mu.Unlock()

	seat, seated := director.Seats[clientID]
	if !seated {
		return fmt.Errorf("client %s has no seat", clientID)
	}

	var err error
	if moveMsg.SwapBoards {
		err = director.draft.MoveBetweenBoards(seat, moveMsg.Src)
	} else {
		err = director.draft.MoveWithin(seat, moveMsg.Src, moveMsg.Dst)
	}
	if err != nil {
		return err
	}
	director.persistDraft()
	if client := director.Clients[clientID]; client != nil {
		director.sendSeatState(client, seat)
	}
	return nil
}

func (director *GameDirector) rejectPick(client *Client, seat int, cause error) {
	payload, err := json.Marshal(&models.PickRejectedJson{
		Reason: cause.Error(),
		State:  director.seatState(seat),
	})
	if err != nil {
		director.Error(err)
		return
	}
	client.Write(&models.Message{
		Type: models.PickRejected,
		Data: string(payload),
	})
}

// afterApply is the accepted-pick tail: run bot turns the pick unblocked,
// persist, publish, re-broadcast state, and close out the draft if it went
// terminal. Callers hold mu.
func (director *GameDirector) afterApply() {
	logger := internal.GetLogger()
	director.driveBots()
	director.persistDraft()

	if director.events != nil {
		if state, err := store.EncodeState(director.draft); err == nil {
			if err := director.events.DraftStateChanged(director.draft.ID, state); err != nil {
				logger.Errorw("publish failed", "error", err.Error())
			}
		}
	}

	director.broadcastState()

	if director.draft.Completed {
		logger.Infow("draft complete", "game", director.GameId)
		go director.shutdown()
	}
}

// driveBots lets bot seats act until a human is up or the draft ends.
func (director *GameDirector) driveBots() {
	for {
		seat, ok := director.draft.ResolveActingSeat()
		if !ok || !director.draft.Seats[seat].Bot {
			return
		}
		sel := director.botPick(seat)
		if err := director.draft.ApplyPick(seat, sel); err != nil {
			director.Error(err)
			return
		}
		director.publishPick(seat, sel)
	}
}

func (director *GameDirector) botPick(seat int) draft.Selection {
	ctx := director.draft.BotContext(seat, director.synergy)
	if director.draft.Type.IsGrid() {
		return draft.SelectGridBotPick(director.draft.GridDrafterState(seat), ctx)
	}
	pack, err := director.draft.PackForSeat(seat)
	if err != nil {
		director.Error(err)
		return draft.PackPick{}
	}
	return draft.SelectBotPick(pack, ctx)
}

// pickCardsForStallingClients forces a bot-chosen pick for every seat still
// short of the round's pick target. It no-ops when the round ended normally.
func (director *GameDirector) pickCardsForStallingClients() {
	director.mu.Lock()
	defer director.mu.Unlock()

	forced := false
	for {
		seat, ok := director.draft.ResolveActingSeat()
		if !ok {
			break
		}
		if !director.draft.Type.IsGrid() && len(director.draft.Seats[seat].PickOrder) >= director.roundTarget {
			break
		}
		sel := director.botPick(seat)
		if err := director.draft.ApplyPick(seat, sel); err != nil {
			director.Error(err)
			go director.shutdown()
			return
		}
		director.publishPick(seat, sel)
		forced = true
		if director.draft.Type.IsGrid() {
			// grid turns force one seat at a time
			break
		}
	}
	if forced {
		director.afterApply()
	}
}

func (director *GameDirector) startGame() {
	director.mu.Lock()
	director.gameStarted = true
	director.assignSeats()
	director.driveBots()
	director.persistDraft()
	director.broadcastState()
	director.mu.Unlock()
	director.roundPicksTickerCh = director.startRoundPicksTicker()
}

// assignSeats hands non-bot seats to clients in join order. Leftover human
// seats are treated as bots so a short table still drafts to completion.
func (director *GameDirector) assignSeats() {
	clientIDs := make([]string, 0, len(director.Clients))
	for id := range director.Clients {
		if _, taken := director.Seats[id]; !taken {
			clientIDs = append(clientIDs, id)
		}
	}

	next := 0
	for seatNum := range director.draft.Seats {
		if director.draft.Seats[seatNum].Bot {
			continue
		}
		if next < len(clientIDs) {
			director.Seats[clientIDs[next]] = seatNum
			next++
			continue
		}
		director.draft.Seats[seatNum].Bot = true
	}
}

func (director *GameDirector) seatState(seat int) models.SeatState {
	d := director.draft
	state := models.SeatState{
		Seat:      seat,
		Completed: d.Completed,
		PickOrder: d.Seats[seat].PickOrder,
		Mainboard: d.Seats[seat].Mainboard,
		Sideboard: d.Seats[seat].Sideboard,
	}
	if d.Type.IsGrid() {
		grid := d.GridDrafterState(seat)
		state.Grid = &grid
		return state
	}
	progress := d.SeatProgress(seat)
	content := &models.PackContent{
		PackNumber: progress.PackNumber + 1,
		PickNumber: progress.PickNumber + 1,
	}
	if pack, err := d.PackForSeat(seat); err == nil {
		content.Pack = append([]int(nil), pack...)
	}
	if director.isTimerEnabled() {
		content.Timer = int(director.getRoundTimer() / time.Second)
	}
	state.Pack = content
	return state
}

func (director *GameDirector) sendSeatState(client *Client, seat int) {
	payload, err := json.Marshal(director.seatState(seat))
	if err != nil {
		director.Error(err)
		return
	}
	client.Write(&models.Message{
		Type: models.DraftState,
		Data: string(payload),
	})
}

func (director *GameDirector) broadcastState() {
	for clientID, seat := range director.Seats {
		if client := director.Clients[clientID]; client != nil {
			director.sendSeatState(client, seat)
		}
	}
}

func (director *GameDirector) persistDraft() {
	if director.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := director.db.SaveDraft(ctx, director.draft); err != nil {
		logger := internal.GetLogger()
		logger.Errorw("could not persist draft", "draft", director.draft.ID, "error", err.Error())
	}
}

func (director *GameDirector) submitCompletedDraft() {
	logger := internal.GetLogger()
	if director.db == nil {
		return
	}
	// Board moves can still arrive while the decks are written out.
	director.mu.Lock()
	defer director.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	deckID, err := director.db.SubmitCompletedDraft(ctx, director.draft)
	if err != nil {
		logger.Errorw("could not submit completed draft", "draft", director.draft.ID, "error", err.Error())
		return
	}
	logger.Infow("submitted decks", "draft", director.draft.ID, "deck", deckID)
	if director.events != nil {
		if err := director.events.DraftCompleted(director.draft.ID, deckID); err != nil {
			logger.Errorw("publish failed", "error", err.Error())
		}
	}
}

func (director *GameDirector) isTimerEnabled() bool {
	return director.roundTimerType != ""
}

func (director *GameDirector) isServerForcePickEnabled() bool {
	return director.roundTimerServerForcePick
}

func (director *GameDirector) getRoundTimer() time.Duration {
	picksMade := 0
	for i := range director.draft.Seats {
		if n := len(director.draft.Seats[i].PickOrder); n > picksMade {
			picksMade = n
		}
	}

	var roundTime = 1 * time.Second
	switch director.roundTimerType {
	case "leisurely":
		roundTime = 90*time.Second - (5 * time.Second * time.Duration(picksMade))
	case "slow":
		roundTime = 75*time.Second - (5 * time.Second * time.Duration(picksMade))
	case "moderate":
		roundTime = 55*time.Second - (5 * time.Second * time.Duration(picksMade))
	case "fast":
		roundTime = 40*time.Second - (5 * time.Second * time.Duration(picksMade))
	}

	if roundTime < 3*time.Second {
		roundTime = 3 * time.Second
	}
	return roundTime
}

func (director *GameDirector) humanSeatCount() int {
	n := 0
	for i := range director.draft.Seats {
		if !director.draft.Seats[i].Bot {
			n++
		}
	}
	return n
}

func (director *GameDirector) startRoundPicksTicker() chan int {
	logger := internal.GetLogger()
	var roundTime time.Duration
	if director.isTimerEnabled() {
		roundTime = director.getRoundTimer()
	}

	director.roundTarget = director.minSeatPicks() + 1

	ticks := 0
	ticker := time.NewTicker(1 * time.Second)
	pickIncrease := make(chan int, models.ChannelBufSize)
	humans := director.humanSeatCount()
	go func() {
		var picks = 0
		for {
			select {
			case <-ticker.C:
				ticks += 1
				if director.isTimerEnabled() && director.isServerForcePickEnabled() && time.Duration(ticks)*time.Second == roundTime {
					logger.Infow("times up, forcing picks and ending round", "game", director.GameId)
					director.startNextRoundCh <- true
					ticker.Stop()
					return
				} else if picks >= humans {
					director.startNextRoundCh <- true
					ticker.Stop()
					return
				}
			case <-pickIncrease:
				picks += 1
			}
		}
	}()

	return pickIncrease
}

func (director *GameDirector) minSeatPicks() int {
	min := -1
	for i := range director.draft.Seats {
		if n := len(director.draft.Seats[i].PickOrder); min == -1 || n < min {
			min = n
		}
	}
	if min == -1 {
		return 0
	}
	return min
}

// promoteNewHost hands the host role to any remaining client. Callers
// hold mu.
func (director *GameDirector) promoteNewHost() {
	var nextHostId string
	for k := range director.Clients {
		nextHostId = k
	}
	if nextHostId == "" {
		director.host = models.NoHostSentinel
	} else {
		director.host = nextHostId
		director.sendHostMessage(&models.Message{
			Type: models.HostChange,
			Data: "1",
		})
	}
}

// Listen runs the director loop until the draft completes or every client
// leaves after completion.
func (director *GameDirector) Listen() {
	logger := internal.GetLogger()
	logger.Infow("listening", "game", director.GameId, "port", director.Port)

	for {
		select {
		case c := <-director.addClientCh:
			director.mu.Lock()
			director.Clients[c.Id] = c
			total := len(director.Clients)
			director.mu.Unlock()
			logger.Debugw("added client", "client", c.Id, "total", total)
			go director.sendAll(&models.Message{
				Type: models.NewPlayer,
				Data: fmt.Sprintf("%d", total),
			})
			go director.sendPastMessages(c)
		case c := <-director.delClientCh:
			clientID := c.Id
			logger.Debugw("removing client", "client", clientID)
			director.mu.Lock()
			delete(director.Clients, clientID)
			total := len(director.Clients)
			if clientID == director.host {
				director.promoteNewHost()
			}
			director.mu.Unlock()
			go director.SendAll(&models.Message{
				Type: models.NewPlayer,
				Data: fmt.Sprintf("%d", total),
			})
		case msg := <-director.sendAllCh:
			if msg.Type != models.DraftState {
				logger.Debugw("sending to all clients", "msg", msg)
			}
			director.mu.Lock()
			director.messages = append(director.messages, msg)
			director.mu.Unlock()
			director.sendAll(msg)
		case <-director.startNextRoundCh:
			if director.draft.Completed {
				go director.shutdown()
				continue
			}
			if director.isServerForcePickEnabled() {
				director.pickCardsForStallingClients()
			}
			if director.draft.Completed {
				go director.shutdown()
			} else {
				director.roundPicksTickerCh = director.startRoundPicksTicker()
			}
		case err := <-director.errCh:
			if !errors.Is(err, draft.ErrNotYourTurn) && !errors.Is(err, draft.ErrInvalidSelection) {
				logger.Errorw("error occurred", "error", err.Error())
			}
		case <-director.doneCh:
			director.submitCompletedDraft()
			director.sendAll(&models.Message{
				Type: models.GameEnd,
				Data: director.draft.ID,
			})
			director.mu.Lock()
			remaining := make([]*Client, 0, len(director.Clients))
			for _, c := range director.Clients {
				remaining = append(remaining, c)
			}
			director.mu.Unlock()
			for _, c := range remaining {
				c.Done()
			}
			logger.Infow("ended game", "game", director.GameId)
			return
		}
	}
}

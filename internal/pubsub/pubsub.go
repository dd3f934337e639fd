// Package pubsub fans draft events out over NATS so lobby services and
// spectator views can follow a draft without holding a websocket seat.
package pubsub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const heartbeatInterval = 5 * time.Second

// Publisher wraps a NATS connection with the draft event subjects.
type Publisher struct {
	nc     *nats.Conn
	doneCh chan bool
}

// Connect dials the broker with the reconnect posture a long-running draft
// needs: a dropped broker should not end the game.
func Connect(url string) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("cubedr4ft"),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc, doneCh: make(chan bool)}, nil
}

func (p *Publisher) Close() {
	close(p.doneCh)
	p.nc.Drain()
}

// DraftStateChanged publishes the authoritative state document for a draft.
func (p *Publisher) DraftStateChanged(draftID string, state []byte) error {
	return p.nc.Publish(fmt.Sprintf("draft.%s.state", draftID), state)
}

// PickApplied announces one accepted pick.
func (p *Publisher) PickApplied(draftID string, seat int, cardIndices []int) error {
	payload, err := json.Marshal(map[string]any{
		"seat":        seat,
		"cardIndices": cardIndices,
		"at":          time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	return p.nc.Publish(fmt.Sprintf("draft.%s.pick", draftID), payload)
}

// DraftCompleted announces the terminal state and the drafter's deck id.
func (p *Publisher) DraftCompleted(draftID, deckID string) error {
	payload, err := json.Marshal(map[string]any{
		"draftId": draftID,
		"deckId":  deckID,
	})
	if err != nil {
		return err
	}
	return p.nc.Publish(fmt.Sprintf("draft.%s.completed", draftID), payload)
}

// StartHeartbeat publishes a liveness ping until Close.
func (p *Publisher) StartHeartbeat(draftID string) {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				htb, _ := json.Marshal(map[string]int64{"server_ping": time.Now().UnixMilli()})
				_ = p.nc.Publish(fmt.Sprintf("draft.%s.heartbeat", draftID), htb)
			case <-p.doneCh:
				return
			}
		}
	}()
}

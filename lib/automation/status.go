// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/hotpreview/hotpreview/lib/clock"
	"github.com/hotpreview/hotpreview/lib/tooling"
)

// subscriberBuffer is how many messages a slow subscriber may fall
// behind before messages are dropped for it.
const subscriberBuffer = 64

// StatusMessage is one entry of the status stream.
type StatusMessage struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// StatusHub fans status messages out to websocket subscribers. It
// implements tooling.StatusSink; Status never blocks.
type StatusHub struct {
	clock  clock.Clock
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[chan StatusMessage]struct{}
	dropped     int
}

var _ tooling.StatusSink = (*StatusHub)(nil)

// NewStatusHub creates a hub. A nil clock uses the real clock.
func NewStatusHub(clk clock.Clock, logger *slog.Logger) *StatusHub {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		panic("automation.StatusHub: logger is required")
	}
	return &StatusHub{
		clock:       clk,
		logger:      logger,
		subscribers: make(map[chan StatusMessage]struct{}),
	}
}

// Status publishes message to every subscriber. Subscribers whose
// buffer is full miss the message.
func (h *StatusHub) Status(message string) {
	entry := StatusMessage{Time: h.clock.Now(), Message: message}

	h.mu.Lock()
	defer h.mu.Unlock()
	for subscriber := range h.subscribers {
		select {
		case subscriber <- entry:
		default:
			h.dropped++
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber
// was full.
func (h *StatusHub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Subscribe registers a subscriber. The returned cancel function
// unregisters it and closes the channel.
func (h *StatusHub) Subscribe() (<-chan StatusMessage, func()) {
	subscriber := make(chan StatusMessage, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[subscriber] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return subscriber, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, subscriber)
			h.mu.Unlock()
			close(subscriber)
		})
	}
}

// ServeHTTP upgrades to a websocket and streams status messages as JSON
// until the client goes away.
func (h *StatusHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("status websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	messages, cancel := h.Subscribe()
	defer cancel()

	// CloseRead discards client frames and cancels ctx once the client
	// closes the connection.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-messages:
			writeCtx, writeCancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, message)
			writeCancel()
			if err != nil {
				h.logger.Debug("status websocket write failed", "error", err)
				return
			}
		}
	}
}

func (h *StatusHub) subscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

package server

import (
	"encoding/json"
	"strings"
	"time"

	"stock-predictor/src/models"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout    = 2 * time.Second
	idleTimeout     = 60 * time.Second
	keepAlive       = idleTimeout * 9 / 10
	maxCommandBytes = 4096
	outboxSize      = 16
)

// -----------------------------------------------------------------------------
// subscriber
// -----------------------------------------------------------------------------

// subscriber is one websocket connection following a single ticker.
// ticker is owned by the hub loop once the subscriber is registered; the
// pumps only use peer.
type subscriber struct {
	hub    *StreamHub
	conn   *websocket.Conn
	outbox chan *models.MStreamMessage
	ticker string
	peer   string
}

func newSubscriber(hub *StreamHub, conn *websocket.Conn, ticker string) *subscriber {
	ticker = normalizeTicker(ticker)
	return &subscriber{
		hub:    hub,
		conn:   conn,
		outbox: make(chan *models.MStreamMessage, outboxSize),
		ticker: ticker,
		peer:   ticker + "@" + conn.RemoteAddr().String(),
	}
}

func normalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// -----------------------------------------------------------------------------

// listen reads subscribe commands until the peer goes away. Pongs extend
// the read deadline; any malformed frame ends the connection.
func (s *subscriber) listen() {
	defer func() {
		s.hub.leave(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxCommandBytes)
	s.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.hub.Logger.Info("Stream %s closed unexpectedly: %v", s.peer, err)
			}
			return
		}

		var cmd models.MStreamCommand
		if err := json.Unmarshal(frame, &cmd); err != nil {
			s.hub.Logger.Info("Dropping stream client, bad command: %v", err)
			return
		}
		if ticker := normalizeTicker(cmd.Ticker); cmd.Command == "subscribe" && ticker != "" {
			s.hub.switchTicker(s, ticker)
		}
	}
}

// -----------------------------------------------------------------------------

// deliver writes queued messages and keeps the connection alive with pings.
// It returns once the hub closes the outbox or a write fails.
func (s *subscriber) deliver() {
	ping := time.NewTicker(keepAlive)
	defer func() {
		ping.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, open := <-s.outbox:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !open {
				s.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				s.hub.Logger.Debug("Stream write to %s failed: %v", s.peer, err)
				return
			}

		case <-ping.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

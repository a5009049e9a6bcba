package server

import (
	"context"
	"net/http"
	"time"

	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// StreamHub
// -----------------------------------------------------------------------------

// StreamHub owns the websocket clients. Every interval it fetches one
// snapshot per subscribed ticker and fans it out to that ticker's clients.
type StreamHub struct {
	Service  interfaces.IStockService
	Interval time.Duration
	Logger   *logger.Logger

	subs       map[*subscriber]struct{}
	register   chan *subscriber
	unregister chan *subscriber
	subscribe  chan subscription
	snapshots  chan *models.MStreamMessage
	done       chan struct{}
}

type subscription struct {
	sub    *subscriber
	ticker string
}

// -----------------------------------------------------------------------------

func NewStreamHub(svc interfaces.IStockService, interval time.Duration, log *logger.Logger) *StreamHub {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &StreamHub{
		Service:    svc,
		Interval:   interval,
		Logger:     log,
		subs:       make(map[*subscriber]struct{}),
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		subscribe:  make(chan subscription),
		snapshots:  make(chan *models.MStreamMessage, 64),
		done:       make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Run is the hub loop. Subscriber tickers are only read and written here.
func (h *StreamHub) Run(ctx context.Context) {
	tick := time.NewTicker(h.Interval)
	defer tick.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for sub := range h.subs {
				h.drop(sub)
			}
			return

		case sub := <-h.register:
			h.subs[sub] = struct{}{}
			go h.fetch(ctx, sub.ticker)

		case sub := <-h.unregister:
			if _, ok := h.subs[sub]; ok {
				h.drop(sub)
			}

		case req := <-h.subscribe:
			if _, ok := h.subs[req.sub]; ok && req.ticker != req.sub.ticker {
				req.sub.ticker = req.ticker
				go h.fetch(ctx, req.ticker)
			}

		case <-tick.C:
			for ticker := range h.tickers() {
				go h.fetch(ctx, ticker)
			}

		case msg := <-h.snapshots:
			for sub := range h.subs {
				if sub.ticker != msg.Ticker {
					continue
				}
				select {
				case sub.outbox <- msg:
				default:
					h.Logger.Debug("Dropping slow stream client for %s", sub.ticker)
					h.drop(sub)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (h *StreamHub) drop(sub *subscriber) {
	delete(h.subs, sub)
	close(sub.outbox)
}

// tickers is the set of tickers with at least one subscriber.
func (h *StreamHub) tickers() map[string]struct{} {
	set := make(map[string]struct{}, len(h.subs))
	for sub := range h.subs {
		set[sub.ticker] = struct{}{}
	}
	return set
}

// -----------------------------------------------------------------------------

func (h *StreamHub) fetch(ctx context.Context, ticker string) {
	fetchCtx, cancel := context.WithTimeout(ctx, h.Interval)
	defer cancel()

	msg := &models.MStreamMessage{Type: "snapshot", Ticker: ticker}
	snap, err := h.Service.Price(fetchCtx, ticker)
	if err != nil {
		msg.Type = "error"
		msg.Error = err.Error()
	} else {
		msg.Data = snap
	}

	select {
	case h.snapshots <- msg:
	case <-ctx.Done():
	}
}

// -----------------------------------------------------------------------------
// Subscriber entry points
// -----------------------------------------------------------------------------

// join registers sub. It reports false when the hub has stopped.
func (h *StreamHub) join(sub *subscriber) bool {
	select {
	case h.register <- sub:
		return true
	case <-h.done:
		return false
	}
}

func (h *StreamHub) leave(sub *subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

func (h *StreamHub) switchTicker(sub *subscriber, ticker string) {
	select {
	case h.subscribe <- subscription{sub: sub, ticker: ticker}:
	case <-h.done:
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handler
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	sub := newSubscriber(s.hub, conn, c.Param("ticker"))
	if !s.hub.join(sub) {
		conn.Close()
		return
	}

	go sub.deliver()
	go sub.listen()
}

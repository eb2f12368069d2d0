package controlplane

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/nfsync/nfsync/internal/syncer"
)

const (
	wsWriteTimeout = 20 * time.Second
	subBuffer      = 256
)

// wireEvent is the envelope every websocket frame uses.
type wireEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func eventType(ev syncer.Event) string {
	switch ev.(type) {
	case syncer.PairStarted:
		return "pair_started"
	case syncer.PairFinished:
		return "pair_finished"
	case syncer.TransferOutput:
		return "transfer_output"
	case syncer.RunCancelled:
		return "run_cancelled"
	default:
		return "event"
	}
}

// EventHub fans sync progress out to websocket subscribers. Slow consumers
// get dropped frames rather than stalling the run worker.
type EventHub struct {
	mu   sync.RWMutex
	subs map[chan []byte]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[chan []byte]struct{}),
	}
}

// PublishEvent broadcasts one progress event. Called from the run worker.
func (h *EventHub) PublishEvent(ev syncer.Event) {
	h.broadcast(wireEvent{Type: eventType(ev), Data: ev})
}

// PublishResult broadcasts the final run summary.
func (h *EventHub) PublishResult(res syncer.Result) {
	h.broadcast(wireEvent{Type: "result", Data: res})
}

func (h *EventHub) broadcast(ev wireEvent) {
	frame, err := sonic.Marshal(ev)
	if err != nil {
		slog.Error("event marshal failed", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub <- frame:
		default:
			slog.Debug("event subscriber buffer full, frame dropped", "type", ev.Type)
		}
	}
}

func (h *EventHub) subscribe() (chan []byte, func()) {
	sub := make(chan []byte, subBuffer)

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub, func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
	}
}

// ServeWS upgrades the request and streams event frames until the client
// goes away or the server shuts down.
func (h *EventHub) ServeWS(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}
	defer conn.CloseNow()

	sub, cancel := h.subscribe()
	defer cancel()

	ctx := c.Request.Context()
	slog.Debug("event stream opened", "ip", c.ClientIP())
	defer slog.Debug("event stream closed", "ip", c.ClientIP())

	// reader only notices the peer closing
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readDone:
			return
		case frame := <-sub:
			writeCtx, cancelWrite := context.WithTimeout(ctx, wsWriteTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, frame)
			cancelWrite()
			if err != nil {
				return
			}
		}
	}
}

// Package ws streams telemetry to websocket clients as JSON.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/espfly/fclink/pkg/framework"
	"github.com/espfly/fclink/pkg/telemetry"
)

// Event types.
const (
	EventStatus  = "status"
	EventConsole = "console"
)

// StatusEvent is the battery part of an Event.
type StatusEvent struct {
	Voltage      float32 `json:"voltage"`
	VoltageMilli uint16  `json:"voltage_mv"`
	Level        uint8   `json:"level"`
	MinVoltage   float32 `json:"min_voltage"`
	MaxVoltage   float32 `json:"max_voltage"`
	State        string  `json:"state"`
}

// Event is one JSON message sent to clients.
type Event struct {
	Type   string       `json:"type"`
	Time   time.Time    `json:"time"`
	Status *StatusEvent `json:"status,omitempty"`
	Line   string       `json:"line,omitempty"`
}

// DefaultBacklog is the number of events buffered per client.
const DefaultBacklog = 16

// Tap broadcasts events. Slow clients lose events instead of blocking
// the publisher.
type Tap struct {
	Address string
	Path    string
	Backlog int

	clients map[chan Event]struct{}
	done    chan struct{}
	lock    sync.RWMutex
}

// NewTap creates a Tap served at address.
func NewTap(address string) *Tap {
	return &Tap{
		Address: address,
		Path:    "/telemetry",
		Backlog: DefaultBacklog,
		clients: make(map[chan Event]struct{}),
		done:    make(chan struct{}),
	}
}

// Name implements fx.Named.
func (t *Tap) Name() string {
	return "ws-tap"
}

// Handler returns the websocket handler.
func (t *Tap) Handler() http.Handler {
	return websocket.Handler(t.serve)
}

// Run implements fx.Runnable.
func (t *Tap) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(t.Path, t.Handler())
	server := &http.Server{Addr: t.Address, Handler: mux}
	defer close(t.done)
	glog.Infof("websocket tap on %s%s", t.Address, t.Path)
	return fx.RunWithContextCloser(ctx, server, server.ListenAndServe)
}

// Clients returns the number of connected clients.
func (t *Tap) Clients() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return len(t.clients)
}

// PublishStatus implements telemetry.StatusSink.
func (t *Tap) PublishStatus(s telemetry.Status) error {
	b := s.Battery
	t.broadcast(Event{
		Type: EventStatus,
		Time: s.Time,
		Status: &StatusEvent{
			Voltage:      b.Voltage,
			VoltageMilli: b.VoltageMilli,
			Level:        b.Level,
			MinVoltage:   b.MinVoltage,
			MaxVoltage:   b.MaxVoltage,
			State:        b.State.String(),
		},
	})
	return nil
}

// ConsoleLine implements console.LineSink.
func (t *Tap) ConsoleLine(line string) {
	t.broadcast(Event{Type: EventConsole, Time: time.Now(), Line: line})
}

func (t *Tap) broadcast(ev Event) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	for ch := range t.clients {
		select {
		case ch <- ev:
		default:
			glog.V(2).Infof("ws client slow, %s event dropped", ev.Type)
		}
	}
}

func (t *Tap) serve(conn *websocket.Conn) {
	defer conn.Close()
	backlog := t.Backlog
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	ch := make(chan Event, backlog)
	t.lock.Lock()
	t.clients[ch] = struct{}{}
	t.lock.Unlock()
	defer func() {
		t.lock.Lock()
		delete(t.clients, ch)
		t.lock.Unlock()
	}()
	glog.V(1).Infof("ws client %s connected", conn.Request().RemoteAddr)

	// clients never send, a read error means they are gone
	closed := make(chan struct{})
	go func() {
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
		close(closed)
	}()

	for {
		select {
		case ev := <-ch:
			if err := websocket.JSON.Send(conn, ev); err != nil {
				return
			}
		case <-closed:
			return
		case <-t.done:
			return
		}
	}
}

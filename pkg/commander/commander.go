// Package commander consumes inbound control packets and keeps the
// latest setpoint.
package commander

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/espfly/fclink/pkg/crtp"
	fx "github.com/espfly/fclink/pkg/framework"
)

// Receiver is the inbound side of the link.
type Receiver interface {
	Receive(ctx context.Context) (crtp.Packet, error)
}

// Commander drains the inbound queue.
type Commander struct {
	Source Receiver
	Now    func() time.Time

	setpoint    crtp.Setpoint
	lastCommand time.Time
	counts      map[crtp.Port]uint64
	lock        sync.RWMutex
}

// New creates a Commander. Inactivity counts from now.
func New(source Receiver) *Commander {
	c := &Commander{Source: source, Now: time.Now, counts: make(map[crtp.Port]uint64)}
	c.lastCommand = c.Now()
	return c
}

// Name implements fx.Named.
func (c *Commander) Name() string {
	return "commander"
}

// AddToLoop implements fx.LoopAdder.
func (c *Commander) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(c)
}

// Run implements fx.Runnable.
func (c *Commander) Run(ctx context.Context) error {
	for {
		pkt, err := c.Source.Receive(ctx)
		if err != nil {
			return err
		}
		c.Handle(pkt)
	}
}

// Handle processes one inbound packet.
func (c *Commander) Handle(pkt crtp.Packet) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.counts[pkt.Port()]++
	if pkt.Port() != crtp.PortCommander || pkt.Channel() != 0 {
		glog.V(2).Infof("commander ignored port=%s channel=%d", pkt.Port(), pkt.Channel())
		return
	}
	sp, err := crtp.DecodeSetpoint(pkt.Data)
	if err != nil {
		glog.V(1).Infof("setpoint of %d bytes: %v", len(pkt.Data), err)
		return
	}
	c.setpoint = sp
	c.lastCommand = c.Now()
}

// Setpoint returns the latest setpoint and when it was received.
func (c *Commander) Setpoint() (crtp.Setpoint, time.Time) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.setpoint, c.lastCommand
}

// Count returns the number of packets received on port.
func (c *Commander) Count(port crtp.Port) uint64 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.counts[port]
}

// InactivityTime implements power.InactivitySource.
func (c *Commander) InactivityTime(now time.Time) time.Duration {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return now.Sub(c.lastCommand)
}

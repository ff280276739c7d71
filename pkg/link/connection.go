package link

import (
	"net"
	"sync"
)

// Connection records the last peer which sent an accepted packet.
// The receive task writes it, the transmit task reads it.
type Connection struct {
	addr      net.Addr
	connected bool
	lock      sync.RWMutex
}

// Observe records addr as the current peer. nil is ignored.
func (c *Connection) Observe(addr net.Addr) {
	if addr == nil {
		return
	}
	c.lock.Lock()
	c.addr, c.connected = addr, true
	c.lock.Unlock()
}

// Peer returns the last observed peer.
func (c *Connection) Peer() (net.Addr, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.addr, c.connected
}

// IsConnected tells whether any peer has been observed.
func (c *Connection) IsConnected() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.connected
}

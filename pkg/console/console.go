// Package console implements the remote text console carried on the
// console port of the link.
package console

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/espfly/fclink/pkg/crtp"
)

// Sender queues a packet for transmission without waiting. Console
// text is also printed from the link receive task.
type Sender interface {
	TrySend(crtp.Packet) error
}

// LineSink receives every complete console line.
type LineSink interface {
	ConsoleLine(line string)
}

// Console buffers text and sends it in console packets. A packet is
// sent on newline or when the payload is full. Sends never wait on a
// full queue; failed sends drop the text.
type Console struct {
	Sender Sender
	Sinks  []LineSink

	buf  []byte
	line strings.Builder
	lock sync.Mutex
}

// New creates a Console sending through sender.
func New(sender Sender, sinks ...LineSink) *Console {
	return &Console{
		Sender: sender,
		Sinks:  sinks,
		buf:    make([]byte, 0, crtp.MaxPayload),
	}
}

// Printf formats into the console.
func (c *Console) Printf(format string, args ...interface{}) {
	c.Write([]byte(fmt.Sprintf(format, args...)))
}

// Write implements io.Writer. It never fails.
func (c *Console) Write(p []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, b := range p {
		c.buf = append(c.buf, b)
		if b == '\n' {
			c.endLine()
		} else {
			c.line.WriteByte(b)
		}
		if b == '\n' || len(c.buf) >= crtp.MaxPayload {
			c.flush()
		}
	}
	return len(p), nil
}

// Flush sends buffered text immediately.
func (c *Console) Flush() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.flush()
}

func (c *Console) flush() error {
	if len(c.buf) == 0 {
		return nil
	}
	data := append([]byte(nil), c.buf...)
	c.buf = c.buf[:0]
	if c.Sender == nil {
		return nil
	}
	err := c.Sender.TrySend(crtp.NewPacket(crtp.PortConsole, 0, data))
	if err != nil {
		glog.V(1).Infof("console packet dropped: %v", err)
	}
	return err
}

func (c *Console) endLine() {
	line := c.line.String()
	c.line.Reset()
	glog.V(1).Infof("console: %s", line)
	for _, sink := range c.Sinks {
		sink.ConsoleLine(line)
	}
}

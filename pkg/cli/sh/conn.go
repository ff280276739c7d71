package sh

import (
	"bytes"
	"context"
	"net"
	"sync"
	"time"

	"github.com/espfly/fclink/pkg/confcmd"
	"github.com/espfly/fclink/pkg/crtp"
	fx "github.com/espfly/fclink/pkg/framework"
)

// Conn is a UDP session with a flight controller, as the ground app
// keeps it.
type Conn struct {
	Remote    *net.UDPAddr
	OnConsole func(line string)
	OnBattery func(crtp.BatteryStatus)

	udp       *net.UDPConn
	line      bytes.Buffer
	battery   crtp.BatteryStatus
	batteryAt time.Time
	bad       uint64
	lock      sync.Mutex
}

// Dial opens a session with the flight controller at address.
func Dial(address string) (*Conn, error) {
	remote, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, err
	}
	udp, err := net.DialUDP("udp", nil, remote)
	if err != nil {
		return nil, err
	}
	return &Conn{Remote: remote, udp: udp}, nil
}

// Run reads frames from the flight controller until ctx is canceled.
func (c *Conn) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, c.udp, func() error {
		buf := make([]byte, crtp.MaxDatagram)
		for {
			n, err := c.udp.Read(buf)
			if err != nil {
				return err
			}
			c.handle(buf[:n])
		}
	})
}

// Close closes the session.
func (c *Conn) Close() error {
	return c.udp.Close()
}

// SendPacket sends a control frame.
func (c *Conn) SendPacket(pkt crtp.Packet) error {
	_, err := c.udp.Write(pkt.Encode())
	return err
}

// SendConfig sends a config command.
func (c *Conn) SendConfig(cmd confcmd.Command) error {
	_, err := c.udp.Write(confcmd.Encode(cmd))
	return err
}

// Ping sends the null packet the ground app uses as keep-alive.
func (c *Conn) Ping() error {
	_, err := c.udp.Write([]byte{0xFF, 0xFF})
	return err
}

// Battery returns the last battery status received.
func (c *Conn) Battery() (crtp.BatteryStatus, time.Time, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.battery, c.batteryAt, !c.batteryAt.IsZero()
}

// BadFrames counts frames failing validation.
func (c *Conn) BadFrames() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.bad
}

func (c *Conn) handle(buf []byte) {
	pkt, err := crtp.Decode(buf)
	if err != nil {
		c.lock.Lock()
		c.bad++
		c.lock.Unlock()
		return
	}
	switch {
	case pkt.Port() == crtp.PortConsole:
		c.consoleText(pkt.Data)
	case crtp.IsBatteryStatus(pkt):
		status, err := crtp.DecodeBatteryStatus(pkt.Data)
		if err != nil {
			return
		}
		c.lock.Lock()
		c.battery, c.batteryAt = status, time.Now()
		c.lock.Unlock()
		if c.OnBattery != nil {
			c.OnBattery(status)
		}
	}
}

func (c *Conn) consoleText(data []byte) {
	var lines []string
	c.lock.Lock()
	for _, b := range data {
		if b != '\n' {
			c.line.WriteByte(b)
			continue
		}
		lines = append(lines, c.line.String())
		c.line.Reset()
	}
	c.lock.Unlock()
	if c.OnConsole == nil {
		return
	}
	for _, line := range lines {
		c.OnConsole(line)
	}
}

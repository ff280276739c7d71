package link

import (
	"net"
	"sync"

	"github.com/golang/glog"

	"github.com/espfly/fclink/pkg/crtp"
)

// Endpoint owns the UDP socket of the link.
type Endpoint struct {
	Address string

	conn   net.PacketConn
	closed bool
	lock   sync.Mutex
}

// NewEndpoint creates an Endpoint bound to address once opened.
func NewEndpoint(address string) *Endpoint {
	return &Endpoint{Address: address}
}

// Open binds the socket. It does nothing if already open. A failure
// leaves the endpoint uninitialized so it can be retried.
func (e *Endpoint) Open() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.conn != nil {
		return nil
	}
	conn, err := net.ListenPacket("udp", e.Address)
	if err != nil {
		return err
	}
	e.conn = conn
	glog.Infof("link listening on %s", conn.LocalAddr())
	return nil
}

// Initialized tells whether the socket is open.
func (e *Endpoint) Initialized() bool {
	return e.packetConn() != nil
}

// LocalAddr returns the bound address, nil if not initialized.
func (e *Endpoint) LocalAddr() net.Addr {
	if conn := e.packetConn(); conn != nil {
		return conn.LocalAddr()
	}
	return nil
}

// ReadFrom receives one datagram into buf.
func (e *Endpoint) ReadFrom(buf []byte) (int, net.Addr, error) {
	conn := e.packetConn()
	if conn == nil {
		return 0, nil, ErrNotInitialized
	}
	return conn.ReadFrom(buf)
}

// WriteTo transmits pkt to addr with the checksum appended.
func (e *Endpoint) WriteTo(pkt crtp.Packet, addr net.Addr) error {
	conn := e.packetConn()
	if conn == nil {
		return ErrNotInitialized
	}
	_, err := conn.WriteTo(pkt.Encode(), addr)
	return err
}

// Close implements io.Closer. A closed endpoint can't be opened again.
func (e *Endpoint) Close() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.closed = true
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}

func (e *Endpoint) packetConn() net.PacketConn {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.conn
}

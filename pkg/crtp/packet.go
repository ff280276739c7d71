package crtp

// Frame size limits.
const (
	// MaxPayload is the largest payload of a control or config frame.
	MaxPayload = 62
	// MaxFrame bounds header+payload: accepted frames are strictly below.
	MaxFrame = 64
	// MaxDatagram is the receive buffer size of the transport.
	MaxDatagram = 128
)

// Packet is a decoded control frame.
type Packet struct {
	Header Header
	Data   []byte
}

// NewPacket creates a Packet for port and channel.
func NewPacket(port Port, channel Channel, data []byte) Packet {
	return Packet{Header: MakeHeader(port, channel), Data: data}
}

// Port is shortcut of Header.Port.
func (p Packet) Port() Port {
	return p.Header.Port()
}

// Channel is shortcut of Header.Channel.
func (p Packet) Channel() Channel {
	return p.Header.Channel()
}

// Bytes returns header and payload without checksum.
func (p Packet) Bytes() []byte {
	b := make([]byte, len(p.Data)+1)
	b[0] = byte(p.Header)
	copy(b[1:], p.Data)
	return b
}

// Encode returns the frame to be transmitted, checksum appended.
func (p Packet) Encode() []byte {
	b := make([]byte, len(p.Data)+2)
	b[0] = byte(p.Header)
	copy(b[1:], p.Data)
	b[len(b)-1] = Checksum(b[:len(b)-1])
	return b
}

// Checksum is the byte sum of b modulo 256.
func Checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}

// Decode validates a received control frame and returns the packet.
// The last byte is the checksum over all preceding bytes; header plus
// payload must be shorter than MaxFrame. Data is copied out of buf.
func Decode(buf []byte) (Packet, error) {
	if len(buf) < 2 {
		return Packet{}, ErrFrameSize
	}
	body, cksum := buf[:len(buf)-1], buf[len(buf)-1]
	if calc := Checksum(body); calc != cksum {
		return Packet{}, &ChecksumError{Received: cksum, Calculated: calc}
	}
	if len(body) >= MaxFrame {
		return Packet{}, ErrFrameSize
	}
	return Packet{
		Header: Header(body[0]),
		Data:   append([]byte(nil), body[1:]...),
	}, nil
}

package crtp

import "fmt"

// Port addresses a subsystem, 4 bits.
type Port byte

// Channel addresses a sub-stream within a port, 2 bits.
type Channel byte

// Header is the first byte of a control frame.
type Header byte

// Ports used on the link.
const (
	PortConsole         Port = 0x00
	PortParam           Port = 0x02
	PortCommander       Port = 0x03
	PortMem             Port = 0x04
	PortLog             Port = 0x05
	PortLocalization    Port = 0x06
	PortSetpointGeneric Port = 0x07
	PortSetpointHL      Port = 0x08
	PortPlatform        Port = 0x0D
	PortLink            Port = 0x0F
)

var portNames = map[Port]string{
	PortConsole:         "console",
	PortParam:           "param",
	PortCommander:       "commander",
	PortMem:             "mem",
	PortLog:             "log",
	PortLocalization:    "localization",
	PortSetpointGeneric: "setpoint-generic",
	PortSetpointHL:      "setpoint-hl",
	PortPlatform:        "platform",
	PortLink:            "link",
}

// String implements fmt.Stringer.
func (p Port) String() string {
	if name, ok := portNames[p]; ok {
		return name
	}
	return fmt.Sprintf("port-%d", byte(p))
}

// MakeHeader packs port and channel. Bits 2-3 are reserved and zero.
func MakeHeader(port Port, channel Channel) Header {
	return Header((byte(port)&0x0f)<<4 | byte(channel)&0x03)
}

// Port extracts the port.
func (h Header) Port() Port {
	return Port(byte(h) >> 4)
}

// Channel extracts the channel.
func (h Header) Channel() Channel {
	return Channel(byte(h) & 0x03)
}

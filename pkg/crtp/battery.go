package crtp

import (
	"encoding/binary"
	"math"
)

const (
	// BatteryChannel is the platform port channel of battery status.
	BatteryChannel Channel = 0
	// BatteryStatusSize is the payload size of a battery status frame.
	BatteryStatusSize = 8
)

// BatteryStatus is the periodic battery telemetry payload:
// [voltage:f32][voltageMilli:u16][level:u8][state:u8].
type BatteryStatus struct {
	Voltage      float32
	VoltageMilli uint16
	Level        uint8
	State        uint8
}

// Packet encodes the status on the platform port.
func (s BatteryStatus) Packet() Packet {
	b := make([]byte, BatteryStatusSize)
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(s.Voltage))
	binary.LittleEndian.PutUint16(b[4:], s.VoltageMilli)
	b[6] = s.Level
	b[7] = s.State
	return NewPacket(PortPlatform, BatteryChannel, b)
}

// IsBatteryStatus tells whether p carries a battery status.
func IsBatteryStatus(p Packet) bool {
	return p.Port() == PortPlatform && p.Channel() == BatteryChannel
}

// DecodeBatteryStatus decodes a battery status payload.
func DecodeBatteryStatus(payload []byte) (BatteryStatus, error) {
	if len(payload) < BatteryStatusSize {
		return BatteryStatus{}, ErrShortPayload
	}
	return BatteryStatus{
		Voltage:      math.Float32frombits(binary.LittleEndian.Uint32(payload[0:])),
		VoltageMilli: binary.LittleEndian.Uint16(payload[4:]),
		Level:        payload[6],
		State:        payload[7],
	}, nil
}

package crtp

import (
	"encoding/binary"
	"math"
)

// SetpointSize is the payload size of a commander setpoint.
const SetpointSize = 14

// Setpoint is the flight command sent on the commander port, channel 0.
type Setpoint struct {
	Roll   float32
	Pitch  float32
	Yaw    float32
	Thrust uint16
}

// Packet encodes the setpoint as a commander packet.
func (s Setpoint) Packet() Packet {
	b := make([]byte, SetpointSize)
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(s.Roll))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(s.Pitch))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(s.Yaw))
	binary.LittleEndian.PutUint16(b[12:], s.Thrust)
	return NewPacket(PortCommander, 0, b)
}

// DecodeSetpoint decodes a commander payload.
func DecodeSetpoint(payload []byte) (Setpoint, error) {
	if len(payload) < SetpointSize {
		return Setpoint{}, ErrShortPayload
	}
	return Setpoint{
		Roll:   math.Float32frombits(binary.LittleEndian.Uint32(payload[0:])),
		Pitch:  math.Float32frombits(binary.LittleEndian.Uint32(payload[4:])),
		Yaw:    math.Float32frombits(binary.LittleEndian.Uint32(payload[8:])),
		Thrust: binary.LittleEndian.Uint16(payload[12:]),
	}, nil
}

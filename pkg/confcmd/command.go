package confcmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/espfly/fclink/pkg/crtp"
	"github.com/espfly/fclink/pkg/pid"
)

// CommandType is the second byte of a config frame.
type CommandType byte

// Command types.
const (
	CmdWifiSSID      CommandType = 0x01
	CmdWifiPassword  CommandType = 0x02
	CmdFlightParams  CommandType = 0x03
	CmdPIDParams     CommandType = 0x04
	CmdDeviceName    CommandType = 0x05
	CmdGeneralConfig CommandType = 0x06
	CmdPIDQuery      CommandType = 0x84
	CmdTest          CommandType = 0xFF
)

// Payload limits.
const (
	MaxSSID     = 32
	MaxPassword = 64
	MaxText     = crtp.MaxPayload

	FlightParamsSize = 9
	PIDParamsSize    = 14
)

var cmdNames = map[CommandType]string{
	CmdWifiSSID:      "wifi-ssid",
	CmdWifiPassword:  "wifi-password",
	CmdFlightParams:  "flight-params",
	CmdPIDParams:     "pid-params",
	CmdDeviceName:    "device-name",
	CmdGeneralConfig: "general-config",
	CmdPIDQuery:      "pid-query",
	CmdTest:          "test",
}

// String implements fmt.Stringer.
func (t CommandType) String() string {
	if name, ok := cmdNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02X)", byte(t))
}

// Command is a decoded config command.
type Command interface {
	Type() CommandType
	// Payload encodes the command payload as sent on the wire.
	Payload() []byte
}

// WifiSSID sets the access point name.
type WifiSSID struct {
	SSID string
}

// WifiPassword sets the access point password.
type WifiPassword struct {
	Password string
}

// FlightParams carries flight envelope limits consumed elsewhere.
type FlightParams struct {
	MaxSpeed    float32
	MaxAltitude float32
	FlightMode  uint8
}

// PIDParams replaces the gains of one PID controller.
type PIDParams struct {
	Axis  pid.Axis
	Loop  pid.Loop
	Gains pid.Gains
}

// PIDQuery asks for all six gain triples on the console.
type PIDQuery struct{}

// DeviceName sets the advertised device name.
type DeviceName struct {
	Name string
}

// GeneralConfig is an opaque blob.
type GeneralConfig struct {
	Data []byte
}

// Test is echoed back on the console.
type Test struct {
	Message string
}

// Unknown is any unrecognized command type.
type Unknown struct {
	Code CommandType
	Data []byte
}

// Type implements Command.
func (WifiSSID) Type() CommandType { return CmdWifiSSID }

// Type implements Command.
func (WifiPassword) Type() CommandType { return CmdWifiPassword }

// Type implements Command.
func (FlightParams) Type() CommandType { return CmdFlightParams }

// Type implements Command.
func (PIDParams) Type() CommandType { return CmdPIDParams }

// Type implements Command.
func (PIDQuery) Type() CommandType { return CmdPIDQuery }

// Type implements Command.
func (DeviceName) Type() CommandType { return CmdDeviceName }

// Type implements Command.
func (GeneralConfig) Type() CommandType { return CmdGeneralConfig }

// Type implements Command.
func (Test) Type() CommandType { return CmdTest }

// Type implements Command.
func (c Unknown) Type() CommandType { return c.Code }

// Payload implements Command.
func (c WifiSSID) Payload() []byte { return []byte(c.SSID) }

// Payload implements Command.
func (c WifiPassword) Payload() []byte { return []byte(c.Password) }

// Payload implements Command.
func (c FlightParams) Payload() []byte {
	b := make([]byte, FlightParamsSize)
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(c.MaxSpeed))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(c.MaxAltitude))
	b[8] = c.FlightMode
	return b
}

// Payload implements Command.
func (c PIDParams) Payload() []byte {
	b := make([]byte, PIDParamsSize)
	b[0] = byte(c.Axis)
	binary.LittleEndian.PutUint32(b[1:], math.Float32bits(c.Gains.Kp))
	binary.LittleEndian.PutUint32(b[5:], math.Float32bits(c.Gains.Ki))
	binary.LittleEndian.PutUint32(b[9:], math.Float32bits(c.Gains.Kd))
	if c.Loop == pid.Rate {
		b[13] = 1
	}
	return b
}

// Payload implements Command.
func (PIDQuery) Payload() []byte { return nil }

// Payload implements Command.
func (c DeviceName) Payload() []byte { return []byte(c.Name) }

// Payload implements Command.
func (c GeneralConfig) Payload() []byte { return c.Data }

// Payload implements Command.
func (c Test) Payload() []byte { return []byte(c.Message) }

// Payload implements Command.
func (c Unknown) Payload() []byte { return c.Data }

// Encode builds the frame the ground app sends for cmd, including the
// trailing checksum byte.
func Encode(cmd Command) []byte {
	return crtp.EncodeConfig(byte(cmd.Type()), cmd.Payload())
}

// ParseFrame splits a config frame, without its trailing byte, and
// decodes the command. The payload is capped at crtp.MaxPayload.
func ParseFrame(frame []byte) (Command, error) {
	if len(frame) < 2 || frame[0] != crtp.ConfigMarker {
		return nil, ErrNotConfigFrame
	}
	payload := frame[2:]
	if len(payload) > crtp.MaxPayload {
		payload = payload[:crtp.MaxPayload]
	}
	return Decode(CommandType(frame[1]), payload)
}

// Decode decodes payload as a command of type t. Payload is copied.
func Decode(t CommandType, payload []byte) (Command, error) {
	switch t {
	case CmdWifiSSID:
		return WifiSSID{SSID: text(payload, MaxSSID)}, nil
	case CmdWifiPassword:
		return WifiPassword{Password: text(payload, MaxPassword)}, nil
	case CmdFlightParams:
		if len(payload) < FlightParamsSize {
			return nil, ErrShortPayload
		}
		return FlightParams{
			MaxSpeed:    math.Float32frombits(binary.LittleEndian.Uint32(payload[0:])),
			MaxAltitude: math.Float32frombits(binary.LittleEndian.Uint32(payload[4:])),
			FlightMode:  payload[8],
		}, nil
	case CmdPIDParams:
		if len(payload) < PIDParamsSize {
			return nil, ErrShortPayload
		}
		return PIDParams{
			Axis: pid.Axis(payload[0]),
			Loop: pid.LoopOf(payload[13] != 0),
			Gains: pid.Gains{
				Kp: math.Float32frombits(binary.LittleEndian.Uint32(payload[1:])),
				Ki: math.Float32frombits(binary.LittleEndian.Uint32(payload[5:])),
				Kd: math.Float32frombits(binary.LittleEndian.Uint32(payload[9:])),
			},
		}, nil
	case CmdPIDQuery:
		return PIDQuery{}, nil
	case CmdDeviceName:
		return DeviceName{Name: text(payload, MaxText)}, nil
	case CmdGeneralConfig:
		return GeneralConfig{Data: clone(payload)}, nil
	case CmdTest:
		return Test{Message: text(payload, MaxText)}, nil
	}
	return Unknown{Code: t, Data: clone(payload)}, nil
}

// text reads at most max bytes, up to the first NUL.
func text(payload []byte, max int) string {
	if len(payload) > max {
		payload = payload[:max]
	}
	if n := bytes.IndexByte(payload, 0); n >= 0 {
		payload = payload[:n]
	}
	return string(payload)
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

package crtp

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeader(t *testing.T) {
	testCases := []struct {
		name    string
		port    Port
		channel Channel
		expect  byte
	}{
		{"console", PortConsole, 0, 0x00},
		{"commander", PortCommander, 0, 0x30},
		{"platform battery", PortPlatform, BatteryChannel, 0xD0},
		{"link channel 3", PortLink, 3, 0xF3},
		{"channel masked", PortParam, 7, 0x23},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := MakeHeader(tc.port, tc.channel)
			require.Equal(t, tc.expect, byte(h))
			require.Equal(t, tc.port, h.Port())
			require.Equal(t, tc.channel&0x03, h.Channel())
		})
	}
	require.Equal(t, Channel(1), Header(0x3D).Channel())
	require.Equal(t, PortCommander, Header(0x3D).Port())
}

func TestChecksumSymmetry(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for n := 0; n <= MaxPayload; n++ {
		payload := make([]byte, n)
		rnd.Read(payload)
		pkt := NewPacket(Port(rnd.Intn(16)), Channel(rnd.Intn(4)), payload)
		frame := pkt.Encode()
		require.Len(t, frame, n+2)

		decoded, err := Decode(frame)
		require.NoError(t, err)
		require.Equal(t, pkt.Header, decoded.Header)
		require.Len(t, decoded.Data, n)
		require.True(t, bytes.Equal(payload, decoded.Data))

		for bit := uint(0); bit < 8; bit++ {
			corrupted := append([]byte(nil), frame...)
			corrupted[len(corrupted)-1] ^= 1 << bit
			_, err := Decode(corrupted)
			require.IsType(t, &ChecksumError{}, err)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode(nil)
	require.Equal(t, ErrFrameSize, err)
	_, err = Decode([]byte{0x30})
	require.Equal(t, ErrFrameSize, err)

	oversize := NewPacket(PortCommander, 0, make([]byte, MaxPayload+1)).Encode()
	_, err = Decode(oversize)
	require.Equal(t, ErrFrameSize, err)
}

func TestDecodeCopiesData(t *testing.T) {
	frame := NewPacket(PortLog, 1, []byte{1, 2, 3}).Encode()
	pkt, err := Decode(frame)
	require.NoError(t, err)
	frame[1] = 0xff
	require.Equal(t, []byte{1, 2, 3}, pkt.Data)
}

func TestNullPacket(t *testing.T) {
	// keep-alive sent by the ground app
	pkt, err := Decode([]byte{0xFF, 0xFF})
	require.NoError(t, err)
	require.Equal(t, PortLink, pkt.Port())
	require.Equal(t, Channel(3), pkt.Channel())
	require.Empty(t, pkt.Data)
}

func TestBatteryStatusRoundTrip(t *testing.T) {
	status := BatteryStatus{Voltage: 3.912, VoltageMilli: 3912, Level: 50, State: 3}
	pkt := status.Packet()
	require.True(t, IsBatteryStatus(pkt))
	frame := pkt.Encode()
	require.Len(t, frame, 1+BatteryStatusSize+1)
	require.Equal(t, byte(0xD0), frame[0])

	decoded, err := Decode(frame)
	require.NoError(t, err)
	got, err := DecodeBatteryStatus(decoded.Data)
	require.NoError(t, err)
	require.Equal(t, status, got)

	_, err = DecodeBatteryStatus(decoded.Data[:7])
	require.Equal(t, ErrShortPayload, err)
}

func TestSetpoint(t *testing.T) {
	// roll=1.5 pitch=-2 yaw=0 thrust=35000, as encoded by the ground app
	payload := []byte{
		0x00, 0x00, 0xc0, 0x3f,
		0x00, 0x00, 0x00, 0xc0,
		0x00, 0x00, 0x00, 0x00,
		0xb8, 0x88,
	}
	sp, err := DecodeSetpoint(payload)
	require.NoError(t, err)
	require.Equal(t, Setpoint{Roll: 1.5, Pitch: -2, Yaw: 0, Thrust: 35000}, sp)
	require.Equal(t, payload, sp.Packet().Data)
	require.Equal(t, PortCommander, sp.Packet().Port())

	_, err = DecodeSetpoint(payload[:13])
	require.Equal(t, ErrShortPayload, err)
}

func TestEncodeConfig(t *testing.T) {
	frame := EncodeConfig(0x84, nil)
	require.Equal(t, []byte{0xAA, 0x84, 0x2E}, frame)
	require.True(t, IsConfigFrame(frame))
	require.False(t, IsConfigFrame([]byte{0x30}))
	require.False(t, IsConfigFrame(nil))

	long := EncodeConfig(0xFF, make([]byte, 100))
	require.Len(t, long, 2+MaxConfigPayload+1)
	require.Len(t, long, MaxFrame)
}

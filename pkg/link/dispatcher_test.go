package link

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/espfly/fclink/pkg/crtp"
)

type recordedConfig struct {
	frames [][]byte
	accept bool
}

func (r *recordedConfig) ProcessConfig(frame []byte) bool {
	r.frames = append(r.frames, append([]byte(nil), frame...))
	return r.accept
}

func newTestDispatcher(handler ConfigHandler) *Dispatcher {
	return &Dispatcher{
		Config:              handler,
		Inbound:             NewQueue(DefaultQueueCapacity),
		Conn:                &Connection{},
		Stats:               &Stats{},
		SetpointLogInterval: time.Second,
	}
}

var testPeer = &net.UDPAddr{IP: net.IPv4(192, 168, 43, 2), Port: 50000}

func TestDispatchControlFrame(t *testing.T) {
	d := newTestDispatcher(nil)
	sp := crtp.Setpoint{Roll: 1, Pitch: 2, Yaw: 3, Thrust: 40000}
	require.Equal(t, VerdictControl, d.Dispatch(sp.Packet().Encode(), testPeer))

	addr, ok := d.Conn.Peer()
	require.True(t, ok)
	require.Equal(t, testPeer, addr)

	pkt, err := d.Inbound.Pop(context.Background(), time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, crtp.PortCommander, pkt.Port())
	decoded, err := crtp.DecodeSetpoint(pkt.Data)
	require.NoError(t, err)
	require.Equal(t, sp, decoded)
	require.Equal(t, uint64(1), d.Stats.Snapshot().Accepted)
}

func TestDispatchConfigBypassesChecksum(t *testing.T) {
	handler := &recordedConfig{accept: true}
	d := newTestDispatcher(handler)
	for _, trailer := range []byte{0x00, 0x5A, 0xFF} {
		buf := []byte{crtp.ConfigMarker, 0x01, 'a', 'p', trailer}
		require.Equal(t, VerdictConfig, d.Dispatch(buf, testPeer))
	}
	require.Len(t, handler.frames, 3)
	for _, frame := range handler.frames {
		require.Equal(t, []byte{crtp.ConfigMarker, 0x01, 'a', 'p'}, frame)
	}
	require.True(t, d.Conn.IsConnected())
	require.Zero(t, d.Inbound.Len())
}

func TestDispatchConfigRejected(t *testing.T) {
	handler := &recordedConfig{}
	d := newTestDispatcher(handler)
	require.Equal(t, VerdictConfigRejected, d.Dispatch([]byte{crtp.ConfigMarker, 0x01}, testPeer))
	require.False(t, d.Conn.IsConnected())

	d = newTestDispatcher(nil)
	require.Equal(t, VerdictConfigRejected, d.Dispatch([]byte{crtp.ConfigMarker, 0x01, 0x00}, testPeer))
}

func TestDispatchDrops(t *testing.T) {
	good := crtp.NewPacket(crtp.PortLog, 1, []byte{1, 2, 3}).Encode()
	bad := append([]byte(nil), good...)
	bad[len(bad)-1]++
	oversize := crtp.NewPacket(crtp.PortLog, 1, make([]byte, crtp.MaxPayload+1)).Encode()

	testCases := []struct {
		name    string
		buf     []byte
		verdict Verdict
	}{
		{"empty", nil, VerdictRunt},
		{"single byte", []byte{0x30}, VerdictRunt},
		{"checksum", bad, VerdictChecksum},
		{"oversize", oversize, VerdictOversize},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDispatcher(nil)
			require.Equal(t, tc.verdict, d.Dispatch(tc.buf, testPeer))
			require.False(t, d.Conn.IsConnected())
			require.Zero(t, d.Inbound.Len())
		})
	}
}

func TestDispatchInboundFull(t *testing.T) {
	d := newTestDispatcher(nil)
	frame := crtp.NewPacket(crtp.PortParam, 0, []byte{9}).Encode()
	for i := 0; i < DefaultQueueCapacity; i++ {
		require.Equal(t, VerdictControl, d.Dispatch(frame, testPeer))
	}
	require.Equal(t, VerdictQueueFull, d.Dispatch(frame, testPeer))
	stats := d.Stats.Snapshot()
	require.Equal(t, uint64(6), stats.Received)
	require.Equal(t, uint64(1), stats.InboundDrops)
}

func TestDispatchSetpointLogRateLimit(t *testing.T) {
	d := newTestDispatcher(nil)
	now := time.Unix(1000, 0)
	d.Now = func() time.Time { return now }
	frame := crtp.Setpoint{Thrust: 1}.Packet().Encode()

	d.Dispatch(frame, testPeer)
	require.Equal(t, now, d.lastSetpointLog)
	logged := now
	now = now.Add(500 * time.Millisecond)
	d.Dispatch(frame, testPeer)
	require.Equal(t, logged, d.lastSetpointLog)
	now = now.Add(500 * time.Millisecond)
	d.Dispatch(frame, testPeer)
	require.Equal(t, now, d.lastSetpointLog)
}

func TestVerdictString(t *testing.T) {
	require.Equal(t, "checksum", VerdictChecksum.String())
	require.Equal(t, "unknown", Verdict(42).String())
}

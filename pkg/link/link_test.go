package link

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/espfly/fclink/pkg/crtp"
)

func startLink(t *testing.T, handlers ...ConfigHandler) (*Link, func()) {
	conf := NewConfig()
	conf.ListenAddress = "127.0.0.1:0"
	l, err := conf.NewLink()
	require.NoError(t, err)
	for _, h := range handlers {
		l.HandleConfig(h)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !l.Endpoint.Initialized() {
		require.True(t, time.Now().Before(deadline), "endpoint not opened")
		time.Sleep(time.Millisecond)
	}
	return l, func() {
		cancel()
		select {
		case err := <-done:
			require.Equal(t, context.Canceled, err)
		case <-time.After(2 * time.Second):
			t.Fatal("link not stopped")
		}
	}
}

func TestLinkLoopback(t *testing.T) {
	l, stop := startLink(t)
	defer stop()

	require.Equal(t, ErrNotConnected, l.Send(crtp.NewPacket(crtp.PortConsole, 0, []byte("hi"))))

	client, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer client.Close()

	sp := crtp.Setpoint{Roll: -1.25, Thrust: 30000}
	_, err = client.WriteTo(sp.Packet().Encode(), l.Endpoint.LocalAddr())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pkt, err := l.Receive(ctx)
	require.NoError(t, err)
	got, err := crtp.DecodeSetpoint(pkt.Data)
	require.NoError(t, err)
	require.Equal(t, sp, got)
	require.True(t, l.Conn.IsConnected())

	status := crtp.BatteryStatus{Voltage: 3.9, VoltageMilli: 3900, Level: 40}
	require.NoError(t, l.Send(status.Packet()))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, crtp.MaxDatagram)
	n, _, err := client.ReadFrom(buf)
	require.NoError(t, err)
	reply, err := crtp.Decode(buf[:n])
	require.NoError(t, err)
	require.True(t, crtp.IsBatteryStatus(reply))
	decoded, err := crtp.DecodeBatteryStatus(reply.Data)
	require.NoError(t, err)
	require.Equal(t, status, decoded)
}

func TestLinkDropsLargeDatagram(t *testing.T) {
	l, stop := startLink(t)
	defer stop()

	client, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer client.Close()

	_, err = client.WriteTo(make([]byte, crtp.MaxFrame+1), l.Endpoint.LocalAddr())
	require.NoError(t, err)
	deadline := time.Now().Add(2 * time.Second)
	for l.Stats.Snapshot().OversizeDrops == 0 {
		require.True(t, time.Now().Before(deadline), "datagram not dropped")
		time.Sleep(time.Millisecond)
	}
	require.Zero(t, l.Stats.Snapshot().Received)
	require.False(t, l.Conn.IsConnected())
}

func TestLinkAcceptsLongestConfigFrame(t *testing.T) {
	frames := make(chan []byte, 1)
	l, stop := startLink(t, ConfigHandlerFunc(func(frame []byte) bool {
		frames <- append([]byte(nil), frame...)
		return true
	}))
	defer stop()

	client, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer client.Close()

	payload := make([]byte, crtp.MaxConfigPayload+5)
	for i := range payload {
		payload[i] = 'n'
	}
	datagram := crtp.EncodeConfig(0x01, payload)
	require.Len(t, datagram, crtp.MaxFrame)
	_, err = client.WriteTo(datagram, l.Endpoint.LocalAddr())
	require.NoError(t, err)

	select {
	case frame := <-frames:
		require.Equal(t, datagram[:len(datagram)-1], frame)
	case <-time.After(2 * time.Second):
		t.Fatal("config frame not processed")
	}
	require.Zero(t, l.Stats.Snapshot().OversizeDrops)
}

func TestEndpointClosed(t *testing.T) {
	e := NewEndpoint("127.0.0.1:0")
	require.False(t, e.Initialized())
	_, _, err := e.ReadFrom(make([]byte, 1))
	require.Equal(t, ErrNotInitialized, err)
	require.NoError(t, e.Open())
	require.NoError(t, e.Open())
	require.NotNil(t, e.LocalAddr())
	require.NoError(t, e.Close())
	require.Equal(t, ErrClosed, e.Open())
}

func TestNewLinkInvalidAddress(t *testing.T) {
	conf := NewConfig()
	conf.ListenAddress = "not-an-address:port"
	_, err := conf.NewLink()
	require.Error(t, err)
}

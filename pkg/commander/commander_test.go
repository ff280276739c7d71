package commander

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/espfly/fclink/pkg/crtp"
)

type chanReceiver chan crtp.Packet

func (r chanReceiver) Receive(ctx context.Context) (crtp.Packet, error) {
	select {
	case pkt := <-r:
		return pkt, nil
	case <-ctx.Done():
		return crtp.Packet{}, ctx.Err()
	}
}

func TestCommanderSetpointAndInactivity(t *testing.T) {
	now := time.Unix(100, 0)
	c := New(nil)
	c.Now = func() time.Time { return now }
	c.lastCommand = now

	require.Equal(t, 3*time.Second, c.InactivityTime(now.Add(3*time.Second)))

	now = now.Add(10 * time.Second)
	sp := crtp.Setpoint{Roll: 1, Pitch: -1, Yaw: 0.5, Thrust: 20000}
	c.Handle(sp.Packet())
	got, at := c.Setpoint()
	require.Equal(t, sp, got)
	require.Equal(t, now, at)
	require.Equal(t, time.Second, c.InactivityTime(now.Add(time.Second)))

	// keep-alive and short setpoints don't count as commands
	now = now.Add(time.Minute)
	c.Handle(crtp.NewPacket(crtp.PortLink, 3, nil))
	c.Handle(crtp.NewPacket(crtp.PortCommander, 0, []byte{1, 2}))
	require.Equal(t, time.Minute, c.InactivityTime(now))
	require.Equal(t, uint64(2), c.Count(crtp.PortCommander))
	require.Equal(t, uint64(1), c.Count(crtp.PortLink))
}

func TestCommanderRun(t *testing.T) {
	src := make(chanReceiver, 1)
	c := New(src)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	src <- crtp.Setpoint{Thrust: 1234}.Packet()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if sp, _ := c.Setpoint(); sp.Thrust == 1234 {
			break
		}
		require.True(t, time.Now().Before(deadline), "setpoint not received")
		time.Sleep(time.Millisecond)
	}
	cancel()
	require.Equal(t, context.Canceled, <-done)
}

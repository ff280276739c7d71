package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/espfly/fclink/pkg/crtp"
	"github.com/espfly/fclink/pkg/link"
	"github.com/espfly/fclink/pkg/power"
	"github.com/espfly/fclink/pkg/telemetry"
)

func TestMatchTopic(t *testing.T) {
	testCases := []struct {
		topic, pattern string
		match          bool
	}{
		{"drone/config", "drone/config", true},
		{"drone/config", "drone/status", false},
		{"drone/config", "+/config", true},
		{"drone/config", "#", true},
		{"drone/config/x", "drone/#", true},
		{"drone", "drone/#", true},
		{"dron", "drone/#", false},
		{"drone/config/x", "drone/config", false},
		{"drone/config", "drone/config/x", false},
		{"drone/config", "+", false},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.match, MatchTopic(tc.topic, tc.pattern), "%s ~ %s", tc.topic, tc.pattern)
	}
}

func TestClientOptionsFromURL(t *testing.T) {
	opts, prefix, err := ClientOptionsFromURL("mqtt://u:p@localhost:1883/fclink/?client-id=abc")
	require.NoError(t, err)
	require.Equal(t, "fclink/", prefix)
	require.Equal(t, "tcp://localhost:1883", opts.Servers[0].String())
	require.Equal(t, "u", opts.Username)
	require.Equal(t, "p", opts.Password)
	require.Equal(t, "abc", opts.ClientID)
}

func TestStatusCodec(t *testing.T) {
	s := telemetry.Status{
		Time: time.Date(2024, 5, 1, 12, 0, 0, 500, time.UTC),
		Battery: power.BatteryState{
			Voltage:      3.87,
			VoltageMilli: 3870,
			Level:        30,
			MinVoltage:   3.7,
			MaxVoltage:   4.15,
			Current:      1.25,
			State:        power.Charging,
		},
	}
	data, err := EncodeStatus(s)
	require.NoError(t, err)
	got, err := DecodeStatus(data)
	require.NoError(t, err)
	require.True(t, s.Time.Equal(got.Time))
	require.Equal(t, s.Battery, got.Battery)

	_, err = DecodeStatus([]byte{0xff})
	require.Error(t, err)
}

func TestMirrorConfigTopic(t *testing.T) {
	m, err := NewMirror("mqtt://localhost:1883/fc/", "ESP-DRONE_01")
	require.NoError(t, err)
	var frames [][]byte
	m.Config = link.ConfigHandlerFunc(func(frame []byte) bool {
		frames = append(frames, frame)
		return true
	})
	m.Queue.Sub(m.topic(TopicConfig), m.handleConfig)

	frame := []byte{crtp.ConfigMarker, 0x84}
	m.Queue.deliver("fc/ESP-DRONE_01/config", frame)
	m.Queue.deliver("fc/ESP-DRONE_01/status", []byte{1})
	m.Queue.deliver("other/ESP-DRONE_01/config", frame)
	require.Equal(t, [][]byte{frame}, frames)

	// disconnected mirror drops silently
	require.NoError(t, m.PublishStatus(telemetry.Status{Time: time.Now()}))
	m.ConsoleLine("dropped")
}

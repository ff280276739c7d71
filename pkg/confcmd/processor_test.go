package confcmd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/espfly/fclink/pkg/crtp"
	"github.com/espfly/fclink/pkg/pid"
)

type consoleRecorder struct {
	lines []string
}

func (c *consoleRecorder) Printf(format string, args ...interface{}) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

type queryCounter int

func (q *queryCounter) ReportPIDs() { *q++ }

// stripped returns what the link hands over: the frame without its
// trailing byte.
func stripped(cmd Command) []byte {
	frame := Encode(cmd)
	return frame[:len(frame)-1]
}

func TestParseFrameEveryType(t *testing.T) {
	testCases := []Command{
		WifiSSID{SSID: "espfly-lab"},
		WifiPassword{Password: "secret123"},
		FlightParams{MaxSpeed: 2.5, MaxAltitude: 30, FlightMode: 2},
		PIDParams{Axis: pid.Pitch, Loop: pid.Rate, Gains: pid.Gains{Kp: 200, Ki: 400, Kd: 2}},
		PIDQuery{},
		DeviceName{Name: "ESP-DRONE_01"},
		GeneralConfig{Data: []byte{1, 2, 3, 4}},
		Test{Message: "hello"},
		Unknown{Code: 0x42, Data: []byte{9}},
	}
	for _, cmd := range testCases {
		t.Run(cmd.Type().String(), func(t *testing.T) {
			got, err := ParseFrame(stripped(cmd))
			require.NoError(t, err)
			require.Equal(t, cmd, got)
		})
	}
}

func TestParseFrameIgnoresTrailingGarbage(t *testing.T) {
	structured := []Command{
		FlightParams{MaxSpeed: 1, MaxAltitude: 2, FlightMode: 3},
		PIDParams{Axis: pid.Yaw, Gains: pid.Gains{Kp: 1, Ki: 2, Kd: 3}},
		PIDQuery{},
	}
	for _, cmd := range structured {
		for _, garbage := range []byte{0x00, 0x7F, 0xFF} {
			frame := append(stripped(cmd), garbage)
			got, err := ParseFrame(frame)
			require.NoError(t, err)
			require.Equal(t, cmd, got)
		}
	}
	got, err := ParseFrame([]byte{crtp.ConfigMarker, byte(CmdWifiSSID), 'a', 'b', 0, 0x33})
	require.NoError(t, err)
	require.Equal(t, WifiSSID{SSID: "ab"}, got)
}

func TestParseFrameLimits(t *testing.T) {
	_, err := ParseFrame([]byte{crtp.ConfigMarker})
	require.Equal(t, ErrNotConfigFrame, err)
	_, err = ParseFrame([]byte{0x30, 0x01})
	require.Equal(t, ErrNotConfigFrame, err)

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'x'
	}
	frame := append([]byte{crtp.ConfigMarker, byte(CmdWifiSSID)}, long...)
	got, err := ParseFrame(frame)
	require.NoError(t, err)
	require.Len(t, got.(WifiSSID).SSID, MaxSSID)

	frame[1] = byte(CmdWifiPassword)
	got, err = ParseFrame(frame)
	require.NoError(t, err)
	require.Len(t, got.(WifiPassword).Password, crtp.MaxPayload)

	frame[1] = byte(CmdGeneralConfig)
	got, err = ParseFrame(frame)
	require.NoError(t, err)
	require.Len(t, got.(GeneralConfig).Data, crtp.MaxPayload)
}

func TestUndersizedPayloadIgnored(t *testing.T) {
	reg := pid.NewRegistry()
	before := reg.Snapshot()
	console := &consoleRecorder{}
	p := &Processor{Targets: reg, Console: console, Settings: &Settings{}}

	pidFrame := stripped(PIDParams{Axis: pid.Roll, Gains: pid.Gains{Kp: 9, Ki: 9, Kd: 9}})
	for n := 2; n < len(pidFrame); n++ {
		require.True(t, p.ProcessConfig(pidFrame[:n]))
	}
	flightFrame := stripped(FlightParams{MaxSpeed: 1})
	require.True(t, p.ProcessConfig(flightFrame[:len(flightFrame)-1]))

	require.Equal(t, before, reg.Snapshot())
	require.Empty(t, console.lines)
	require.False(t, p.Settings.Snapshot().FlightSet)
}

func TestPIDParamsApply(t *testing.T) {
	for _, loop := range []pid.Loop{pid.Attitude, pid.Rate} {
		for axis := pid.Roll; axis <= pid.Yaw; axis++ {
			t.Run(loop.String()+"/"+axis.String(), func(t *testing.T) {
				reg := pid.NewRegistry()
				before := reg.Snapshot()
				console := &consoleRecorder{}
				p := &Processor{Targets: reg, Console: console}
				gains := pid.Gains{Kp: 1.5, Ki: 0.5, Kd: 0.25}
				require.True(t, p.ProcessConfig(stripped(PIDParams{Axis: axis, Loop: loop, Gains: gains})))

				after := reg.Snapshot()
				for l := range after {
					for a := range after[l] {
						if pid.Loop(l) == loop && pid.Axis(a) == axis {
							require.Equal(t, gains, after[l][a])
						} else {
							require.Equal(t, before[l][a], after[l][a])
						}
					}
				}
				require.Equal(t, []string{
					fmt.Sprintf("PID SET: %s %s P=1.50 I=0.50 D=0.25\n", loop, axis),
				}, console.lines)
			})
		}
	}
}

func TestPIDInvalidAxisNoop(t *testing.T) {
	reg := pid.NewRegistry()
	before := reg.Snapshot()
	console := &consoleRecorder{}
	p := &Processor{Targets: reg, Console: console}
	frame := stripped(PIDParams{Axis: 3, Loop: pid.Rate, Gains: pid.Gains{Kp: 1}})
	require.True(t, p.ProcessConfig(frame))
	require.Equal(t, before, reg.Snapshot())
	require.Empty(t, console.lines)

	err := p.Apply(PIDParams{Axis: 7})
	require.Equal(t, pid.ErrInvalidAxis, err)
}

func TestProcessorSideEffects(t *testing.T) {
	var queries queryCounter
	console := &consoleRecorder{}
	p := &Processor{Reporter: &queries, Console: console, Settings: &Settings{}}

	require.False(t, p.ProcessConfig([]byte{crtp.ConfigMarker}))
	require.True(t, p.ProcessConfig(stripped(PIDQuery{})))
	require.Equal(t, queryCounter(1), queries)

	require.True(t, p.ProcessConfig(stripped(WifiSSID{SSID: "lab"})))
	require.True(t, p.ProcessConfig(stripped(WifiPassword{Password: "pw"})))
	require.True(t, p.ProcessConfig(stripped(DeviceName{Name: "drone"})))
	require.True(t, p.ProcessConfig(stripped(FlightParams{MaxSpeed: 3, MaxAltitude: 10, FlightMode: 1})))
	require.True(t, p.ProcessConfig(stripped(Test{Message: "ping"})))
	require.True(t, p.ProcessConfig(stripped(GeneralConfig{Data: []byte{0xde, 0xad}})))

	require.Equal(t, SettingsSnapshot{
		SSID:       "lab",
		Password:   "pw",
		DeviceName: "drone",
		Flight:     FlightParams{MaxSpeed: 3, MaxAltitude: 10, FlightMode: 1},
		FlightSet:  true,
	}, p.Settings.Snapshot())
	require.Equal(t, []string{"TEST: ping\n"}, console.lines)

	err := p.Apply(Unknown{Code: 0x33})
	require.IsType(t, &UnknownCommandError{}, err)
	require.Equal(t, CommandType(0x33), err.(*UnknownCommandError).Code)
	require.True(t, p.ProcessConfig([]byte{crtp.ConfigMarker, 0x33, 1, 2}))
}

func TestCommandTypeString(t *testing.T) {
	require.Equal(t, "pid-query", CmdPIDQuery.String())
	require.Equal(t, "unknown(0x42)", CommandType(0x42).String())
}

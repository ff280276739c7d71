package sh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/espfly/fclink/pkg/confcmd"
	"github.com/espfly/fclink/pkg/crtp"
	"github.com/espfly/fclink/pkg/pid"
)

func parseFloat(name, arg string) (float32, error) {
	val, err := strconv.ParseFloat(arg, 32)
	if err != nil {
		return 0, fmt.Errorf("Invalid %s: %v", name, err)
	}
	return float32(val), nil
}

// ParseAxis parses roll, pitch or yaw.
func ParseAxis(s string) (pid.Axis, error) {
	for a := pid.Axis(0); a < pid.NumAxes; a++ {
		if strings.EqualFold(s, a.String()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("Invalid AXIS %q", s)
}

// ParseLoop parses att(itude) or rate.
func ParseLoop(s string) (pid.Loop, error) {
	switch strings.ToLower(s) {
	case "att", "attitude":
		return pid.Attitude, nil
	case "rate":
		return pid.Rate, nil
	}
	return 0, fmt.Errorf("Invalid LOOP %q", s)
}

// ParsePIDParams parses LOOP AXIS P I D.
func ParsePIDParams(args []string) (cmd confcmd.PIDParams, err error) {
	if len(args) < 5 {
		return cmd, fmt.Errorf("LOOP AXIS P I D required")
	}
	if cmd.Loop, err = ParseLoop(args[0]); err != nil {
		return
	}
	if cmd.Axis, err = ParseAxis(args[1]); err != nil {
		return
	}
	if cmd.Gains.Kp, err = parseFloat("P", args[2]); err != nil {
		return
	}
	if cmd.Gains.Ki, err = parseFloat("I", args[3]); err != nil {
		return
	}
	cmd.Gains.Kd, err = parseFloat("D", args[4])
	return
}

// ParseSetpoint parses ROLL PITCH YAW THRUST.
func ParseSetpoint(args []string) (sp crtp.Setpoint, err error) {
	if len(args) < 4 {
		return sp, fmt.Errorf("ROLL PITCH YAW THRUST required")
	}
	if sp.Roll, err = parseFloat("ROLL", args[0]); err != nil {
		return
	}
	if sp.Pitch, err = parseFloat("PITCH", args[1]); err != nil {
		return
	}
	if sp.Yaw, err = parseFloat("YAW", args[2]); err != nil {
		return
	}
	thrust, err := strconv.ParseUint(args[3], 10, 16)
	if err != nil {
		return sp, fmt.Errorf("Invalid THRUST: %v", err)
	}
	sp.Thrust = uint16(thrust)
	return sp, nil
}

// ParseFlightParams parses MAX_SPEED MAX_ALTITUDE [MODE].
func ParseFlightParams(args []string) (cmd confcmd.FlightParams, err error) {
	if len(args) < 2 {
		return cmd, fmt.Errorf("MAX_SPEED MAX_ALTITUDE required")
	}
	if cmd.MaxSpeed, err = parseFloat("MAX_SPEED", args[0]); err != nil {
		return
	}
	if cmd.MaxAltitude, err = parseFloat("MAX_ALTITUDE", args[1]); err != nil {
		return
	}
	if len(args) > 2 {
		mode, err := strconv.ParseUint(args[2], 0, 8)
		if err != nil {
			return cmd, fmt.Errorf("Invalid MODE: %v", err)
		}
		cmd.FlightMode = uint8(mode)
	}
	return cmd, nil
}

func textCmd(name, help string, aliases []string, build func(string) confcmd.Command) ishell.Cmd {
	return ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    help,
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("%s required", help))
				return
			}
			SendConfig(c, build(strings.Join(c.Args, " ")))
		}),
	}
}

var (
	// PingCmd sends a keep-alive.
	PingCmd = ishell.Cmd{
		Name: "ping",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			report(c, ShellFrom(c).Conn.Ping())
		}),
	}

	// SetpointCmd sends a commander setpoint.
	SetpointCmd = ishell.Cmd{
		Name:    "setpoint",
		Aliases: []string{"sp"},
		Help:    "ROLL PITCH YAW THRUST",
		Func: MustBeConnected(func(c *ishell.Context) {
			sp, err := ParseSetpoint(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			SendPacket(c, sp.Packet())
		}),
	}

	// PIDSetCmd replaces the gains of a PID controller.
	PIDSetCmd = ishell.Cmd{
		Name:    "pid.set",
		Aliases: []string{"pid"},
		Help:    "att|rate roll|pitch|yaw P I D",
		Func: MustBeConnected(func(c *ishell.Context) {
			cmd, err := ParsePIDParams(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			SendConfig(c, cmd)
		}),
	}

	// PIDQueryCmd asks the gains to be printed on the console.
	PIDQueryCmd = ishell.Cmd{
		Name:    "pid.query",
		Aliases: []string{"pids"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			SendConfig(c, confcmd.PIDQuery{})
		}),
	}

	// FlightCmd sends flight envelope limits.
	FlightCmd = ishell.Cmd{
		Name: "flight",
		Help: "MAX_SPEED MAX_ALTITUDE [MODE]",
		Func: MustBeConnected(func(c *ishell.Context) {
			cmd, err := ParseFlightParams(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			SendConfig(c, cmd)
		}),
	}

	// TestCmd sends a message echoed on the console.
	TestCmd = textCmd("test", "MESSAGE", nil, func(s string) confcmd.Command {
		return confcmd.Test{Message: s}
	})

	// NameCmd sets the device name.
	NameCmd = textCmd("name", "NAME", nil, func(s string) confcmd.Command {
		return confcmd.DeviceName{Name: s}
	})

	// SSIDCmd sets the access point name.
	SSIDCmd = textCmd("wifi.ssid", "SSID", []string{"ssid"}, func(s string) confcmd.Command {
		return confcmd.WifiSSID{SSID: s}
	})

	// PasswordCmd sets the access point password.
	PasswordCmd = textCmd("wifi.password", "PASSWORD", []string{"password"}, func(s string) confcmd.Command {
		return confcmd.WifiPassword{Password: s}
	})
)

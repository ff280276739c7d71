package confcmd

import (
	"encoding/hex"

	"github.com/golang/glog"

	"github.com/espfly/fclink/pkg/pid"
)

// PIDTargets looks up live PID controllers.
type PIDTargets interface {
	Target(axis pid.Axis, loop pid.Loop) (*pid.Controller, error)
}

// PIDReporter emits all gain triples on request.
type PIDReporter interface {
	ReportPIDs()
}

// Printer is the remote console.
type Printer interface {
	Printf(format string, args ...interface{})
}

// Processor applies config commands. Nil collaborators are skipped.
type Processor struct {
	Targets  PIDTargets
	Reporter PIDReporter
	Console  Printer
	Settings *Settings
}

// ProcessConfig handles a config frame with its trailing byte removed.
// It returns false only if frame is not a config frame; commands which
// can't be applied are logged and still count as processed.
func (p *Processor) ProcessConfig(frame []byte) bool {
	cmd, err := ParseFrame(frame)
	switch err {
	case nil:
	case ErrNotConfigFrame:
		return false
	default:
		glog.Warningf("config 0x%02X ignored: %v (%d bytes)", frame[1], err, len(frame)-2)
		return true
	}
	glog.V(1).Infof("config %s, %d bytes", cmd.Type(), len(frame)-2)
	if err := p.Apply(cmd); err != nil {
		glog.Warningf("config %s: %v", cmd.Type(), err)
	}
	return true
}

// Apply performs the side effects of cmd.
func (p *Processor) Apply(cmd Command) error {
	switch c := cmd.(type) {
	case WifiSSID:
		glog.Infof("config wifi ssid %q", c.SSID)
		p.record(func(s *SettingsSnapshot) { s.SSID = c.SSID })
	case WifiPassword:
		glog.Infof("config wifi password, %d chars", len(c.Password))
		p.record(func(s *SettingsSnapshot) { s.Password = c.Password })
	case FlightParams:
		glog.Infof("config flight max speed %.2f m/s, max altitude %.2f m, mode %d",
			c.MaxSpeed, c.MaxAltitude, c.FlightMode)
		p.record(func(s *SettingsSnapshot) { s.Flight, s.FlightSet = c, true })
	case PIDParams:
		return p.applyPID(c)
	case PIDQuery:
		if p.Reporter != nil {
			p.Reporter.ReportPIDs()
		}
	case DeviceName:
		glog.Infof("config device name %q", c.Name)
		p.record(func(s *SettingsSnapshot) { s.DeviceName = c.Name })
	case GeneralConfig:
		glog.Infof("config general, %d bytes:\n%s", len(c.Data), hex.Dump(c.Data))
	case Test:
		glog.Infof("config test %q", c.Message)
		p.printf("TEST: %s\n", c.Message)
	case Unknown:
		glog.Infof("config unknown 0x%02X, %d bytes:\n%s", byte(c.Code), len(c.Data), hex.Dump(c.Data))
		return &UnknownCommandError{Code: c.Code}
	}
	return nil
}

func (p *Processor) applyPID(c PIDParams) error {
	if p.Targets == nil {
		return nil
	}
	target, err := p.Targets.Target(c.Axis, c.Loop)
	if err != nil {
		return err
	}
	target.SetGains(c.Gains)
	glog.Infof("pid %s %s set %s", c.Loop, c.Axis, c.Gains)
	p.printf("PID SET: %s %s P=%.2f I=%.2f D=%.2f\n", c.Loop, c.Axis, c.Gains.Kp, c.Gains.Ki, c.Gains.Kd)
	return nil
}

func (p *Processor) record(fn func(*SettingsSnapshot)) {
	if p.Settings != nil {
		p.Settings.update(fn)
	}
}

func (p *Processor) printf(format string, args ...interface{}) {
	if p.Console != nil {
		p.Console.Printf(format, args...)
	}
}

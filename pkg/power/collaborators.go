package power

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// Sampler produces the input of one tick.
type Sampler interface {
	Sample() Input
}

// SamplerFunc is func type of Sampler.
type SamplerFunc func() Input

// Sample implements Sampler.
func (f SamplerFunc) Sample() Input {
	return f()
}

// FlightGate receives the flight-enable decision.
type FlightGate interface {
	SetCanFly(bool)
}

// Cue names an audible/visual feedback event.
type Cue string

// Cues played on state entry.
const (
	CueBatteryFull     Cue = "bat-full"
	CueUSBConnected    Cue = "usb-connected"
	CueBatteryLow      Cue = "bat-low"
	CueUSBDisconnected Cue = "usb-disconnected"
)

// CuePlayer triggers feedback devices.
type CuePlayer interface {
	Play(Cue)
}

// ChargeDisplay shows the charge level while charging.
type ChargeDisplay interface {
	SetChargeLevel(fraction float32)
}

// Shutdowner initiates a system shutdown. The outcome is not observed.
type Shutdowner interface {
	Shutdown(reason string)
}

// InactivitySource reports how long no command has been received.
type InactivitySource interface {
	InactivityTime(now time.Time) time.Duration
}

// FlightEnable is an atomic FlightGate.
type FlightEnable struct {
	canFly int32
}

// NewFlightEnable creates a FlightEnable with the initial value.
func NewFlightEnable(canFly bool) *FlightEnable {
	f := &FlightEnable{}
	f.SetCanFly(canFly)
	return f
}

// SetCanFly implements FlightGate.
func (f *FlightEnable) SetCanFly(canFly bool) {
	var val int32
	if canFly {
		val = 1
	}
	atomic.StoreInt32(&f.canFly, val)
}

// CanFly tells whether flight is enabled.
func (f *FlightEnable) CanFly() bool {
	return atomic.LoadInt32(&f.canFly) != 0
}

// LogCues plays cues into the log.
type LogCues struct{}

// Play implements CuePlayer.
func (LogCues) Play(cue Cue) {
	glog.Infof("cue %s", cue)
}

// LogDisplay shows the charge level in the log.
type LogDisplay struct{}

// SetChargeLevel implements ChargeDisplay.
func (LogDisplay) SetChargeLevel(fraction float32) {
	glog.V(2).Infof("charge level %.1f", fraction)
}

// OnceShutdown runs Fn on the first Shutdown only.
type OnceShutdown struct {
	Fn   func(reason string)
	once sync.Once
}

// Shutdown implements Shutdowner.
func (s *OnceShutdown) Shutdown(reason string) {
	s.once.Do(func() {
		glog.Errorf("shutdown: %s", reason)
		if s.Fn != nil {
			s.Fn(reason)
		}
	})
}

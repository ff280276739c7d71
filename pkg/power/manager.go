package power

import (
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/espfly/fclink/pkg/framework"
)

// InitialVoltage seeds the battery state before the first sample.
const InitialVoltage float32 = 3.7

// Manager runs the battery state machine. Collaborators other than
// Sampler are optional.
type Manager struct {
	Sampler    Sampler
	Gate       FlightGate
	Cues       CuePlayer
	Display    ChargeDisplay
	Shutdowner Shutdowner
	Inactivity InactivitySource
	Thresholds Thresholds

	state             BatteryState
	lastAboveLow      time.Time
	lastAboveCritical time.Time
	started           bool
	lock              sync.RWMutex
}

// NewManager creates a Manager in OnBattery seeded with InitialVoltage.
// MinVoltage and MaxVoltage stay zero until the first sample.
func NewManager(sampler Sampler, thresholds Thresholds) *Manager {
	m := &Manager{Sampler: sampler, Thresholds: thresholds}
	m.setVoltage(InitialVoltage)
	m.state.State = OnBattery
	return m
}

// Snapshot returns a copy of the battery state.
func (m *Manager) Snapshot() BatteryState {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.state
}

// Control implements fx.Controller.
func (m *Manager) Control(cc fx.ControlContext) error {
	m.Tick(cc.Time())
	return nil
}

// AddToLoop implements fx.LoopAdder.
func (m *Manager) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvPower, m)
}

// Tick runs one iteration at now and returns the resulting state.
// The previous state is captured before anything is updated.
func (m *Manager) Tick(now time.Time) BatteryState {
	in := m.Sampler.Sample()
	th := m.Thresholds

	m.lock.Lock()
	first := !m.started
	if first {
		m.lastAboveLow, m.lastAboveCritical = now, now
		m.started = true
	}
	prev := m.state.State

	m.setVoltage(in.Voltage)
	switch {
	case first:
		m.state.MinVoltage, m.state.MaxVoltage = in.Voltage, in.Voltage
	case in.Voltage < m.state.MinVoltage:
		m.state.MinVoltage = in.Voltage
	case in.Voltage > m.state.MaxVoltage:
		m.state.MaxVoltage = in.Voltage
	}
	m.state.Current = in.Current
	m.state.Level = Level(m.state.Voltage)

	if m.state.Voltage > th.LowVoltage {
		m.lastAboveLow = now
	}
	if m.state.Voltage > th.CriticalVoltage {
		m.lastAboveCritical = now
	}

	next := NextState(Conditions{
		PowerGood:  in.PowerGood,
		Charging:   in.Charging,
		LowExpired: now.Sub(m.lastAboveLow) >= th.LowTimeout,
	})
	m.state.State = next
	criticalFor := now.Sub(m.lastAboveCritical)
	state := m.state
	m.lock.Unlock()

	if first {
		glog.Infof("battery %.3fV (%dmV) level %d%% state %s",
			state.Voltage, state.VoltageMilli, state.Level, state.State)
	}

	if next != prev {
		m.enter(prev, next)
	}

	switch next {
	case Charging:
		if m.Display != nil {
			m.Display.SetChargeLevel(ChargeFraction(state.Voltage))
		}
	case LowPower:
		if criticalFor > th.CriticalTimeout {
			m.shutdown("battery critically low")
		}
	case OnBattery:
		if m.Inactivity != nil && m.Inactivity.InactivityTime(now) > th.InactivityTimeout {
			m.shutdown("no command received")
		}
	}
	return state
}

func (m *Manager) setVoltage(v float32) {
	m.state.Voltage = v
	switch mv := v * 1000; {
	case mv <= 0:
		m.state.VoltageMilli = 0
	case mv >= 0xffff:
		m.state.VoltageMilli = 0xffff
	default:
		m.state.VoltageMilli = uint16(mv)
	}
}

func (m *Manager) enter(prev, next ChargeState) {
	effect := stateEffects[next]
	glog.Infof("power state %s -> %s, can fly: %v", prev, next, effect.canFly)
	if m.Cues != nil {
		m.Cues.Play(effect.cue)
	}
	if m.Gate != nil {
		m.Gate.SetCanFly(effect.canFly)
	}
}

func (m *Manager) shutdown(reason string) {
	if m.Shutdowner != nil {
		m.Shutdowner.Shutdown(reason)
	}
}

package power

import (
	"fmt"
	"time"
)

// ChargeState is the power state. Values are the wire codes of the
// battery status frame.
type ChargeState uint8

// Charge states.
const (
	OnBattery ChargeState = 0
	Charging  ChargeState = 1
	Charged   ChargeState = 2
	LowPower  ChargeState = 3
)

var stateNames = map[ChargeState]string{
	OnBattery: "battery",
	Charging:  "charging",
	Charged:   "charged",
	LowPower:  "low-power",
}

// String implements fmt.Stringer.
func (s ChargeState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state-%d", uint8(s))
}

// Input is one tick's sample.
type Input struct {
	PowerGood bool
	Charging  bool
	Voltage   float32
	// Current is the measured battery current, 0 if not measured.
	Current float32
}

// BatteryState is owned by Manager; others get copies.
type BatteryState struct {
	Voltage      float32
	VoltageMilli uint16
	// Level is 0..90 in steps of 10.
	Level      uint8
	MinVoltage float32
	MaxVoltage float32
	Current    float32
	State      ChargeState
}

// Thresholds of the state machine.
type Thresholds struct {
	LowVoltage        float32
	CriticalVoltage   float32
	LowTimeout        time.Duration
	CriticalTimeout   time.Duration
	InactivityTimeout time.Duration
}

// DefaultThresholds match a single cell LiPo pack.
var DefaultThresholds = Thresholds{
	LowVoltage:        3.2,
	CriticalVoltage:   3.0,
	LowTimeout:        5 * time.Second,
	CriticalTimeout:   5 * time.Second,
	InactivityTimeout: 5 * time.Minute,
}

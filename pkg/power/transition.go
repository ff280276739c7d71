package power

// Conditions are the inputs of a transition.
type Conditions struct {
	PowerGood bool
	Charging  bool
	// LowExpired is true once the voltage stayed at or below the low
	// threshold for the low timeout.
	LowExpired bool
}

type transition struct {
	match func(Conditions) bool
	state ChargeState
}

// transitions are evaluated in order, the first match wins.
var transitions = []transition{
	{func(c Conditions) bool { return c.PowerGood && !c.Charging }, Charged},
	{func(c Conditions) bool { return c.PowerGood && c.Charging }, Charging},
	{func(c Conditions) bool { return !c.PowerGood && !c.Charging && c.LowExpired }, LowPower},
}

// NextState derives the charge state. It does not depend on the
// previous state.
func NextState(c Conditions) ChargeState {
	for _, t := range transitions {
		if t.match(c) {
			return t.state
		}
	}
	return OnBattery
}

// stateEffect is performed once when a state is entered.
type stateEffect struct {
	cue    Cue
	canFly bool
}

var stateEffects = map[ChargeState]stateEffect{
	Charged:   {CueBatteryFull, false},
	Charging:  {CueUSBConnected, false},
	LowPower:  {CueBatteryLow, true},
	OnBattery: {CueUSBDisconnected, true},
}

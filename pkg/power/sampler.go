package power

// VoltageSource reads calibrated volts at an analog pin.
type VoltageSource interface {
	ReadVoltage(pin int) float32
}

// PowerSignals reports the charger state lines.
type PowerSignals interface {
	PowerGood() bool
	Charging() bool
}

// ADCSampler samples the battery through a voltage divider and an
// optional current sense amplifier.
type ADCSampler struct {
	Source  VoltageSource
	Signals PowerSignals

	VoltagePin        int
	VoltageMultiplier float32

	// CurrentPin is used only if AmpPerVolt is not zero.
	CurrentPin int
	AmpPerVolt float32
}

// MeasureVoltage returns the battery voltage.
func (s *ADCSampler) MeasureVoltage() float32 {
	if s.Source == nil {
		return 0
	}
	return s.Source.ReadVoltage(s.VoltagePin) * s.VoltageMultiplier
}

// MeasureCurrent returns the battery current, 0 if not measured.
func (s *ADCSampler) MeasureCurrent() float32 {
	if s.Source == nil || s.AmpPerVolt == 0 {
		return 0
	}
	return s.Source.ReadVoltage(s.CurrentPin) * s.AmpPerVolt
}

// Sample implements Sampler.
func (s *ADCSampler) Sample() Input {
	in := Input{
		Voltage: s.MeasureVoltage(),
		Current: s.MeasureCurrent(),
	}
	if s.Signals != nil {
		in.PowerGood, in.Charging = s.Signals.PowerGood(), s.Signals.Charging()
	}
	return in
}

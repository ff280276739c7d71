package power

import (
	"sync"
	"time"
)

// SimPack simulates a battery pack behind a voltage divider, with a
// charger which can be plugged in.
type SimPack struct {
	Full  float32
	Empty float32
	// DischargeRate and ChargeRate are in volts per second.
	DischargeRate float32
	ChargeRate    float32
	// Divider is the ratio of the voltage divider in front of the ADC.
	Divider float32
	Now     func() time.Time

	voltage float32
	charger bool
	last    time.Time
	lock    sync.Mutex
}

// NewSimPack creates a SimPack at voltage.
func NewSimPack(voltage float32) *SimPack {
	return &SimPack{
		Full:          4.2,
		Empty:         2.9,
		DischargeRate: 0.002,
		ChargeRate:    0.01,
		Divider:       2,
		Now:           time.Now,
		voltage:       voltage,
	}
}

// ReadVoltage implements VoltageSource.
func (p *SimPack) ReadVoltage(pin int) float32 {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.advance()
	return p.voltage / p.Divider
}

// PowerGood implements PowerSignals.
func (p *SimPack) PowerGood() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.charger
}

// Charging implements PowerSignals.
func (p *SimPack) Charging() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.charger && p.voltage < p.Full
}

// SetCharger plugs or unplugs the charger.
func (p *SimPack) SetCharger(plugged bool) {
	p.lock.Lock()
	p.advance()
	p.charger = plugged
	p.lock.Unlock()
}

// SetVoltage forces the pack voltage.
func (p *SimPack) SetVoltage(v float32) {
	p.lock.Lock()
	p.advance()
	p.voltage = v
	p.lock.Unlock()
}

// Voltage returns the pack voltage.
func (p *SimPack) Voltage() float32 {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.advance()
	return p.voltage
}

func (p *SimPack) advance() {
	now := p.Now()
	if p.last.IsZero() {
		p.last = now
		return
	}
	dt := float32(now.Sub(p.last).Seconds())
	p.last = now
	if p.charger {
		p.voltage += p.ChargeRate * dt
		if p.voltage > p.Full {
			p.voltage = p.Full
		}
	} else {
		p.voltage -= p.DischargeRate * dt
		if p.voltage < p.Empty {
			p.voltage = p.Empty
		}
	}
}

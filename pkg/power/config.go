package power

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config defines the power manager settings.
type Config struct {
	Interval          time.Duration
	LowVoltage        float64
	CriticalVoltage   float64
	LowTimeout        time.Duration
	CriticalTimeout   time.Duration
	InactivityTimeout time.Duration

	VoltagePin        int
	VoltageMultiplier float64
	CurrentPin        int
	AmpPerVolt        float64
}

var defaultConfig = Config{
	Interval:          100 * time.Millisecond,
	LowVoltage:        float64(DefaultThresholds.LowVoltage),
	CriticalVoltage:   float64(DefaultThresholds.CriticalVoltage),
	LowTimeout:        DefaultThresholds.LowTimeout,
	CriticalTimeout:   DefaultThresholds.CriticalTimeout,
	InactivityTimeout: DefaultThresholds.InactivityTimeout,
	VoltageMultiplier: 2,
}

func init() {
	if val, err := strconv.ParseFloat(os.Getenv("FCLINK_ADC_MULTIPLIER"), 64); err == nil {
		defaultConfig.VoltageMultiplier = val
	}
	if val, err := time.ParseDuration(os.Getenv("FCLINK_SHUTDOWN_TIMEOUT")); err == nil {
		defaultConfig.InactivityTimeout = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.Interval, "pm-interval", defaultConfig.Interval, "Power manager tick interval")
	flag.Float64Var(&defaultConfig.LowVoltage, "bat-low", defaultConfig.LowVoltage, "Low battery voltage")
	flag.Float64Var(&defaultConfig.CriticalVoltage, "bat-critical", defaultConfig.CriticalVoltage, "Critically low battery voltage")
	flag.DurationVar(&defaultConfig.LowTimeout, "bat-low-timeout", defaultConfig.LowTimeout, "Time below low voltage to enter low power")
	flag.DurationVar(&defaultConfig.CriticalTimeout, "bat-critical-timeout", defaultConfig.CriticalTimeout, "Time below critical voltage to shut down")
	flag.DurationVar(&defaultConfig.InactivityTimeout, "shutdown-timeout", defaultConfig.InactivityTimeout, "Command inactivity to shut down on battery")
	flag.IntVar(&defaultConfig.VoltagePin, "adc-pin", defaultConfig.VoltagePin, "ADC pin of battery voltage")
	flag.Float64Var(&defaultConfig.VoltageMultiplier, "adc-multiplier", defaultConfig.VoltageMultiplier, "Voltage divider multiplier")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Thresholds converts the config.
func (c *Config) Thresholds() Thresholds {
	return Thresholds{
		LowVoltage:        float32(c.LowVoltage),
		CriticalVoltage:   float32(c.CriticalVoltage),
		LowTimeout:        c.LowTimeout,
		CriticalTimeout:   c.CriticalTimeout,
		InactivityTimeout: c.InactivityTimeout,
	}
}

// NewSampler creates an ADCSampler reading source and signals.
func (c *Config) NewSampler(source VoltageSource, signals PowerSignals) *ADCSampler {
	return &ADCSampler{
		Source:            source,
		Signals:           signals,
		VoltagePin:        c.VoltagePin,
		VoltageMultiplier: float32(c.VoltageMultiplier),
		CurrentPin:        c.CurrentPin,
		AmpPerVolt:        float32(c.AmpPerVolt),
	}
}

// NewManager creates a Manager sampling through sampler.
func (c *Config) NewManager(sampler Sampler) *Manager {
	return NewManager(sampler, c.Thresholds())
}

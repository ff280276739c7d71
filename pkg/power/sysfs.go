package power

import (
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// SysfsSupply samples a Linux power_supply class battery and charger.
type SysfsSupply struct {
	// Battery is the battery device directory, e.g.
	// /sys/class/power_supply/BAT0.
	Battery string
	// Charger is the mains/USB device directory. Empty means the
	// battery status alone decides power-good.
	Charger string
}

// Sample implements Sampler. Unreadable attributes sample as zero.
func (s *SysfsSupply) Sample() Input {
	status := s.attr(s.Battery, "status")
	in := Input{
		Charging: status == "Charging",
		Voltage:  float32(s.micro(s.Battery, "voltage_now")),
		Current:  float32(s.micro(s.Battery, "current_now")),
	}
	if s.Charger != "" {
		in.PowerGood = s.attr(s.Charger, "online") == "1"
	} else {
		in.PowerGood = status == "Charging" || status == "Full"
	}
	return in
}

func (s *SysfsSupply) attr(dir, name string) string {
	data, err := ioutil.ReadFile(filepath.Join(dir, name))
	if err != nil {
		glog.V(2).Infof("power supply: %v", err)
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *SysfsSupply) micro(dir, name string) float64 {
	val, err := strconv.ParseFloat(s.attr(dir, name), 64)
	if err != nil {
		return 0
	}
	return val / 1e6
}

package confcmd

import "sync"

// Settings records the last values received over the config path.
// The Wi-Fi and flight modules consuming them live elsewhere.
type Settings struct {
	snapshot SettingsSnapshot
	lock     sync.RWMutex
}

// SettingsSnapshot is a copy of Settings.
type SettingsSnapshot struct {
	SSID       string
	Password   string
	DeviceName string
	Flight     FlightParams
	FlightSet  bool
}

// Snapshot returns a copy of the current settings.
func (s *Settings) Snapshot() SettingsSnapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.snapshot
}

func (s *Settings) update(fn func(*SettingsSnapshot)) {
	s.lock.Lock()
	fn(&s.snapshot)
	s.lock.Unlock()
}

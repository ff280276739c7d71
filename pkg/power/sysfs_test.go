package power

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeAttrs(t *testing.T, dir string, attrs map[string]string) {
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, val := range attrs {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(val+"\n"), 0644))
	}
}

func TestSysfsSupply(t *testing.T) {
	root, err := ioutil.TempDir("", "power_supply")
	require.NoError(t, err)
	defer os.RemoveAll(root)

	bat, ac := filepath.Join(root, "BAT0"), filepath.Join(root, "AC")
	writeAttrs(t, bat, map[string]string{
		"status":      "Charging",
		"voltage_now": "4012000",
		"current_now": "250000",
	})
	writeAttrs(t, ac, map[string]string{"online": "1"})

	s := &SysfsSupply{Battery: bat, Charger: ac}
	in := s.Sample()
	require.True(t, in.PowerGood)
	require.True(t, in.Charging)
	require.InDelta(t, 4.012, in.Voltage, 1e-6)
	require.InDelta(t, 0.25, in.Current, 1e-6)

	writeAttrs(t, bat, map[string]string{"status": "Discharging"})
	writeAttrs(t, ac, map[string]string{"online": "0"})
	in = s.Sample()
	require.False(t, in.PowerGood)
	require.False(t, in.Charging)

	s.Charger = ""
	writeAttrs(t, bat, map[string]string{"status": "Full"})
	in = s.Sample()
	require.True(t, in.PowerGood)
	require.False(t, in.Charging)
}

func TestSysfsSupplyMissing(t *testing.T) {
	s := &SysfsSupply{Battery: "/nonexistent/BAT0"}
	require.Equal(t, Input{}, s.Sample())
}

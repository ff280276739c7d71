// Package env provides host derived defaults.
package env

import (
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// DeviceNamePrefix prefixes generated device names.
const DeviceNamePrefix = "ESP-DRONE_"

// AppID scopes the protected machine id to this application.
const AppID = "fclink"

var machineID = machineid.ProtectedID

// MachineID retrieves an app specific hash of the machine id. It
// returns "" if the id can't be read.
func MachineID() string {
	id, err := machineID(AppID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return ""
	}
	return id
}

// DeviceName derives a stable device name from the machine id, like
// ESP-DRONE_1A2B3C.
func DeviceName() string {
	return deviceNameFrom(MachineID())
}

func deviceNameFrom(id string) string {
	if len(id) > 6 {
		id = id[:6]
	}
	if id == "" {
		id = "000000"
	}
	return DeviceNamePrefix + strings.ToUpper(id)
}

package env

import (
	"github.com/denisbrodbeck/machineid"
)

const appID = "serialcmd"

// MachineID retrieves an ID identifying this host for the application.
// The raw machine ID is never exposed. It returns "" if unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		return ""
	}
	return id
}

// ClientID derives a short client ID, e.g. for the MQTT connection.
func ClientID() string {
	id := MachineID()
	if len(id) > 12 {
		id = id[:12]
	}
	if id == "" {
		return ""
	}
	return appID + "-" + id
}

package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves the unique ID identifying the machine. The host
// name is used if the machine has no ID, e.g. in a container.
func MachineID() string {
	id, err := machineid.ID()
	if err == nil {
		return id
	}
	glog.Warningf("machine id unavailable: %v", err)
	if id, err = os.Hostname(); err == nil {
		return id
	}
	return "unknown"
}

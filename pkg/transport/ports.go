package transport

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes a discovered serial port.
type PortInfo struct {
	// Device is the path used to open the port.
	Device string
	// Name is the short name of the port.
	Name string
	// Product is the USB product description, if known.
	Product string
	IsUSB   bool
}

var (
	enumeratePorts = enumerator.GetDetailedPortsList

	comPortRe = regexp.MustCompile(`(?i)^COM[0-9]+$`)
)

// ListPorts enumerates serial ports of this host, sorted by device.
func ListPorts() ([]PortInfo, error) {
	details, err := enumeratePorts()
	if err != nil {
		return nil, err
	}
	return portsFrom(details), nil
}

func portsFrom(details []*enumerator.PortDetails) []PortInfo {
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil || d.Name == "" {
			continue
		}
		ports = append(ports, PortInfo{
			Device:  d.Name,
			Name:    filepath.Base(d.Name),
			Product: d.Product,
			IsUSB:   d.IsUSB,
		})
	}
	sort.Slice(ports, func(i, j int) bool {
		return ports[i].Device < ports[j].Device
	})
	return ports
}

// IsDevicePath tells if want names an OS device directly,
// e.g. /dev/ttyS0, COM3 or \\.\COM12.
func IsDevicePath(want string) bool {
	return strings.HasPrefix(want, "/dev/") ||
		strings.HasPrefix(want, `\\.\`) ||
		comPortRe.MatchString(want)
}

// SelectPort chooses the device to open.
// An empty want selects the first port. Otherwise want must match
// the device or the name of a port, or be a device path which is
// opened as is even if it was not enumerated.
func SelectPort(ports []PortInfo, want string) (string, error) {
	if want == "" {
		if len(ports) == 0 {
			return "", ErrNoPorts
		}
		return ports[0].Device, nil
	}
	for _, port := range ports {
		if want == port.Device || want == port.Name {
			return port.Device, nil
		}
	}
	if IsDevicePath(want) {
		return want, nil
	}
	if len(ports) == 0 {
		return "", ErrNoPorts
	}
	return "", ErrPortNotFound
}

package serial

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// sysfsRoot is where device metadata is read from; tests point it at a fixture tree.
var sysfsRoot = "/sys"

var (
	// Regular expressions for different types of serial devices
	serialPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters (CH340, FTDI, CP210x)
		regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices (Uno R3, Leonardo)
		regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
		regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
		regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
		regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
		regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
		regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
	}

	// Exclude patterns for virtual terminals and other non-serial devices
	excludePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^tty\d+$`),  // Virtual terminals (tty1, tty2, etc.)
		regexp.MustCompile(`^console$`), // Console
		regexp.MustCompile(`^ptmx$`),    // Pseudo-terminal multiplexer
		regexp.MustCompile(`^pty.*$`),   // Pseudo-terminals
		regexp.MustCompile(`^pts/.*$`),  // Pseudo-terminal slaves
	}
)

// ListPorts returns a list of available serial ports on the system
// Filters for communication-capable devices and excludes virtual terminals
func ListPorts() ([]string, error) {
	return listPortsIn("/dev")
}

func listPortsIn(devDir string) ([]string, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()
		if !isSerialName(name) {
			continue
		}

		fullPath := filepath.Join(devDir, name)
		if isCharacterDevice(fullPath) {
			ports = append(ports, fullPath)
		}
	}

	// Sort the ports for consistent ordering
	sort.Strings(ports)

	return ports, nil
}

// isSerialName reports whether a /dev entry name looks like a serial device
func isSerialName(name string) bool {
	for _, excludePattern := range excludePatterns {
		if excludePattern.MatchString(name) {
			return false
		}
	}
	for _, pattern := range serialPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

// PortInfo describes a serial port and, for USB devices, the device behind it
type PortInfo struct {
	Name            string
	Path            string
	Description     string
	Subsystem       string // sysfs bus of the tty's parent device: usb, usb-serial, pnp, platform...
	VendorID        string
	ProductID       string
	SerialNumber    string
	InterfaceNumber string
	BusNumber       string
	DeviceNumber    string
	Manufacturer    string
	Product         string
}

// IsUSB reports whether the port is a USB-class serial interface
func (p PortInfo) IsUSB() bool {
	switch p.Subsystem {
	case "usb", "usb-serial":
		return true
	case "":
		return strings.HasPrefix(p.Name, "ttyUSB") || strings.HasPrefix(p.Name, "ttyACM")
	default:
		return false
	}
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	return describePort(portPath), nil
}

// describePort builds PortInfo from the device name and sysfs, without touching /dev
func describePort(portPath string) *PortInfo {
	name := filepath.Base(portPath)

	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}
	enrichUSBInfo(info)

	return info
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

// enrichUSBInfo fills subsystem and USB descriptor fields from sysfs.
// /sys/class/tty/<name>/device resolves to the USB interface for ttyACM
// and to a usb-serial port one level below the interface for ttyUSB, so the
// walk goes up until it finds the directory carrying idVendor.
func enrichUSBInfo(info *PortInfo) {
	devicePath := filepath.Join(sysfsRoot, "class", "tty", info.Name, "device")

	if subsystem, err := filepath.EvalSymlinks(filepath.Join(devicePath, "subsystem")); err == nil {
		info.Subsystem = filepath.Base(subsystem)
	}

	resolvedPath, err := filepath.EvalSymlinks(devicePath)
	if err != nil {
		return
	}

	dir := resolvedPath
	for i := 0; i < 4; i++ {
		if info.InterfaceNumber == "" {
			info.InterfaceNumber = readSysfsFile(filepath.Join(dir, "bInterfaceNumber"))
		}
		if vendor := readSysfsFile(filepath.Join(dir, "idVendor")); vendor != "" {
			info.VendorID = vendor
			info.ProductID = readSysfsFile(filepath.Join(dir, "idProduct"))
			info.SerialNumber = readSysfsFile(filepath.Join(dir, "serial"))
			info.Manufacturer = readSysfsFile(filepath.Join(dir, "manufacturer"))
			info.Product = readSysfsFile(filepath.Join(dir, "product"))
			info.BusNumber = readSysfsFile(filepath.Join(dir, "busnum"))
			info.DeviceNumber = readSysfsFile(filepath.Join(dir, "devnum"))
			if info.Subsystem == "" {
				info.Subsystem = "usb"
			}
			return
		}
		dir = filepath.Dir(dir)
	}
}

// readSysfsFile returns the trimmed contents of a sysfs attribute, or "" if unreadable
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SelectUSB keeps the USB-class ports of infos and returns their paths
// sorted lexicographically.
func SelectUSB(infos []PortInfo) []string {
	ports := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsUSB() {
			ports = append(ports, info.Path)
		}
	}
	sort.Strings(ports)
	return ports
}

// ListUSBPorts returns the connected USB serial devices, which is where
// development boards show up.
func ListUSBPorts() ([]string, error) {
	ports, err := ListPorts()
	if err != nil {
		return nil, err
	}

	infos := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		infos = append(infos, *describePort(p))
	}
	return SelectUSB(infos), nil
}

// FindPortBySerial returns the first port whose USB serial number matches.
// Port paths can change after a reset; serial numbers do not.
func FindPortBySerial(serialNumber string) (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	infos := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		infos = append(infos, *describePort(p))
	}
	return findBySerial(infos, serialNumber)
}

func findBySerial(infos []PortInfo, serialNumber string) (string, error) {
	for _, info := range infos {
		if serialNumber != "" && info.SerialNumber == serialNumber {
			return info.Path, nil
		}
	}
	return "", fmt.Errorf("%w: no port with serial number %q", ErrDeviceNotFound, serialNumber)
}

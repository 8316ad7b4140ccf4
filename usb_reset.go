package serial

import (
	"fmt"
	"os/exec"
	"time"
)

// ResetUSBDevice performs a USB-level reset of the device
// This can recover a board whose USB bridge hung mid-upload
//
// Requirements:
// - usbreset utility must be installed (from usbutils package)
// - Requires appropriate permissions (typically root/sudo)
func ResetUSBDevice(portPath string) error {
	info, err := GetPortInfo(portPath)
	if err != nil {
		return fmt.Errorf("failed to get port info: %w", err)
	}

	if info.BusNumber == "" || info.DeviceNumber == "" {
		return ErrUSBInfoNotAvailable
	}

	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	cmd := exec.Command("usbreset", formatUSBPath(info.BusNumber, info.DeviceNumber))
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("usbreset failed: %w (output: %s)", err, string(output))
	}

	// USB devices typically take 1-2 seconds to become available again
	time.Sleep(2 * time.Second)

	return nil
}

// formatUSBPath renders bus and device numbers the way usbreset expects (BBB/DDD)
func formatUSBPath(bus, device string) string {
	return zeroPad(bus) + "/" + zeroPad(device)
}

func zeroPad(s string) string {
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// IsUSBResetAvailable checks if usbreset utility is available in PATH
func IsUSBResetAvailable() bool {
	_, err := exec.LookPath("usbreset")
	return err == nil
}

// ResetUSBDeviceBySerial resets the USB device whose serial number is serialNumber
func ResetUSBDeviceBySerial(serialNumber string) error {
	portPath, err := FindPortBySerial(serialNumber)
	if err != nil {
		return err
	}
	return ResetUSBDevice(portPath)
}

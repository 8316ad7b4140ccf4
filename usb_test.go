package serial

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// withSysfsRoot points sysfs lookups at dir for the duration of the test
func withSysfsRoot(t *testing.T, dir string) {
	t.Helper()
	old := sysfsRoot
	sysfsRoot = dir
	t.Cleanup(func() { sysfsRoot = old })
}

// TestReadSysfsFile tests the sysfs file reading helper
func TestReadSysfsFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		expected string
		setup    func(string) error
	}{
		{
			name:     "normal file",
			expected: "1234",
			setup: func(path string) error {
				return os.WriteFile(path, []byte("1234\n"), 0644)
			},
		},
		{
			name:     "file with spaces",
			expected: "test value",
			setup: func(path string) error {
				return os.WriteFile(path, []byte("  test value  \n"), 0644)
			},
		},
		{
			name:     "nonexistent file",
			expected: "",
			setup:    func(path string) error { return nil },
		},
		{
			name:     "empty file",
			expected: "",
			setup: func(path string) error {
				return os.WriteFile(path, []byte(""), 0644)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testFile := filepath.Join(tmpDir, tt.name)
			if err := tt.setup(testFile); err != nil {
				t.Fatalf("Setup failed: %v", err)
			}

			result := readSysfsFile(testFile)
			if result != tt.expected {
				t.Errorf("readSysfsFile() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

// buildUSBSerialFixture mimics sysfs for a CH340 adapter behind ttyUSB0:
//
//	class/tty/ttyUSB0/device -> devices/usb5/5-2/5-2:1.0/ttyUSB0
//	devices/usb5/5-2/5-2:1.0/ttyUSB0/subsystem -> bus/usb-serial
func buildUSBSerialFixture(t *testing.T, root string) {
	t.Helper()

	devicePath := filepath.Join(root, "devices", "usb5", "5-2")
	interfacePath := filepath.Join(devicePath, "5-2:1.0")
	ttyPath := filepath.Join(interfacePath, "ttyUSB0")
	classTtyPath := filepath.Join(root, "class", "tty", "ttyUSB0")
	busPath := filepath.Join(root, "bus", "usb-serial")

	for _, dir := range []string{ttyPath, classTtyPath, busPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	deviceFiles := map[string]string{
		"idVendor":     "1a86",
		"idProduct":    "7523",
		"serial":       "CH340-0001",
		"manufacturer": "QinHeng Electronics",
		"product":      "USB Serial",
		"busnum":       "5",
		"devnum":       "7",
	}
	for filename, content := range deviceFiles {
		if err := os.WriteFile(filepath.Join(devicePath, filename), []byte(content+"\n"), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", filename, err)
		}
	}

	if err := os.WriteFile(filepath.Join(interfacePath, "bInterfaceNumber"), []byte("00\n"), 0644); err != nil {
		t.Fatalf("Failed to write interface number: %v", err)
	}
	if err := os.Symlink(busPath, filepath.Join(ttyPath, "subsystem")); err != nil {
		t.Fatalf("Failed to create subsystem symlink: %v", err)
	}
	if err := os.Symlink(ttyPath, filepath.Join(classTtyPath, "device")); err != nil {
		t.Fatalf("Failed to create device symlink: %v", err)
	}
}

// TestEnrichUSBInfo tests USB metadata extraction with a mock sysfs structure
func TestEnrichUSBInfo(t *testing.T) {
	tmpDir := t.TempDir()
	buildUSBSerialFixture(t, tmpDir)
	withSysfsRoot(t, tmpDir)

	info := &PortInfo{Name: "ttyUSB0", Path: "/dev/ttyUSB0"}
	enrichUSBInfo(info)

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Subsystem", info.Subsystem, "usb-serial"},
		{"VendorID", info.VendorID, "1a86"},
		{"ProductID", info.ProductID, "7523"},
		{"SerialNumber", info.SerialNumber, "CH340-0001"},
		{"InterfaceNumber", info.InterfaceNumber, "00"},
		{"BusNumber", info.BusNumber, "5"},
		{"DeviceNumber", info.DeviceNumber, "7"},
		{"Manufacturer", info.Manufacturer, "QinHeng Electronics"},
		{"Product", info.Product, "USB Serial"},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s = %q, expected %q", tt.name, tt.got, tt.expected)
		}
	}

	if !info.IsUSB() {
		t.Error("Expected enriched ttyUSB0 to be classified as USB")
	}
}

// TestEnrichUSBInfoCDCACM covers ttyACM, whose device link is the interface itself
func TestEnrichUSBInfoCDCACM(t *testing.T) {
	tmpDir := t.TempDir()
	withSysfsRoot(t, tmpDir)

	devicePath := filepath.Join(tmpDir, "devices", "usb1", "1-1")
	interfacePath := filepath.Join(devicePath, "1-1:1.0")
	classTtyPath := filepath.Join(tmpDir, "class", "tty", "ttyACM0")
	for _, dir := range []string{interfacePath, classTtyPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}
	os.WriteFile(filepath.Join(devicePath, "idVendor"), []byte("2341\n"), 0644)
	os.WriteFile(filepath.Join(devicePath, "idProduct"), []byte("0043\n"), 0644)
	os.WriteFile(filepath.Join(interfacePath, "bInterfaceNumber"), []byte("00\n"), 0644)
	if err := os.Symlink(interfacePath, filepath.Join(classTtyPath, "device")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	info := &PortInfo{Name: "ttyACM0", Path: "/dev/ttyACM0"}
	enrichUSBInfo(info)

	if info.VendorID != "2341" || info.ProductID != "0043" {
		t.Errorf("VID:PID = %s:%s, expected 2341:0043", info.VendorID, info.ProductID)
	}
	if info.Subsystem != "usb" {
		t.Errorf("Subsystem = %q, expected usb", info.Subsystem)
	}
}

// TestEnrichUSBInfoGracefulFailure tests that enrichUSBInfo handles missing files gracefully
func TestEnrichUSBInfoGracefulFailure(t *testing.T) {
	withSysfsRoot(t, t.TempDir())

	info := &PortInfo{
		Name: "ttyUSB999",
		Path: "/dev/ttyUSB999",
	}

	enrichUSBInfo(info)

	if info.VendorID != "" {
		t.Errorf("VendorID should be empty, got %q", info.VendorID)
	}
	if info.ProductID != "" {
		t.Errorf("ProductID should be empty, got %q", info.ProductID)
	}
	if info.Subsystem != "" {
		t.Errorf("Subsystem should be empty, got %q", info.Subsystem)
	}
}

// TestUSBResetFormatting tests the USB path formatting logic
func TestUSBResetFormatting(t *testing.T) {
	tests := []struct {
		bus      string
		device   string
		expected string
	}{
		{"5", "7", "005/007"},
		{"1", "2", "001/002"},
		{"123", "456", "123/456"},
		{"1", "10", "001/010"},
	}

	for _, tt := range tests {
		formatted := formatUSBPath(tt.bus, tt.device)
		if formatted != tt.expected {
			t.Errorf("formatUSBPath(%q, %q) = %q, expected %q",
				tt.bus, tt.device, formatted, tt.expected)
		}
	}
}

func TestResetUSBDeviceMissingPort(t *testing.T) {
	err := ResetUSBDevice("/dev/nonexistent")
	if err == nil {
		t.Fatal("Expected error for nonexistent port")
	}
	if !strings.Contains(err.Error(), "port info") {
		t.Errorf("Expected port info error, got: %v", err)
	}
}

// TestIsUSBResetAvailable tests the availability check
func TestIsUSBResetAvailable(t *testing.T) {
	available := IsUSBResetAvailable()
	t.Logf("usbreset available: %v", available)
}

// Package serial provides the serial device layer used by longboard: opening
// a board's USB serial port in raw mode, discovering connected boards, and
// recovering hung USB bridges.
//
// # Basic Usage
//
// Open a port with the defaults used for Arduino-class boards (9600 8N1,
// 100ms read timeout):
//
//	port, err := serial.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	buffer := make([]byte, 1024)
//	n, err := port.Read(buffer) // n == 0 after the read timeout
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	port, err := serial.Open("/dev/ttyACM0",
//	    serial.WithBaudRate(115200),
//	    serial.WithReadTimeout(200*time.Millisecond),
//	    serial.WithFlushOnOpen(),
//	)
//
// Ports are opened in exclusive mode (TIOCEXCL): a second Open of the same
// device by a non-root process fails with ErrDeviceInUse.
//
// # Port Discovery
//
// ListPorts returns every serial-looking character device under /dev.
// ListUSBPorts narrows that to USB-class interfaces using sysfs, which is
// where development boards appear:
//
//	ports, err := serial.ListUSBPorts()
//	for _, portPath := range ports {
//	    info, _ := serial.GetPortInfo(portPath)
//	    fmt.Printf("%s: %s (VID=%s PID=%s)\n",
//	        info.Path, info.Description, info.VendorID, info.ProductID)
//	}
//
// # Error Handling
//
// Open maps errno values onto sentinels usable with errors.Is:
//
//	if errors.Is(err, serial.ErrDeviceInUse) {
//	    // another monitor or an uploader holds the port
//	}
//
// # Platform Support
//
// Linux only. USB metadata and reset rely on sysfs and the usbreset utility.
package serial

package monitor

import "fmt"

// PortOpenError is reported when a monitor session cannot open its port.
// It is delivered as a serial-error event, never returned to a caller.
type PortOpenError struct {
	Port string
	Err  error
}

func (e *PortOpenError) Error() string {
	return fmt.Sprintf("could not open serial port %s: %v", e.Port, e.Err)
}

func (e *PortOpenError) Unwrap() error { return e.Err }

// Package serial opens the link to the stage firmware's console.
package serial

import (
	"io"
)

// Port is the serial connection to the firmware. The abstraction keeps
// the monitor testable against an in-memory pipe.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g. "/dev/ttyACM0", "COM3").
	Device string

	// Baud rate. USB CDC ignores it, but a real UART bridge does not.
	Baud int

	// Read timeout in milliseconds; 0 blocks, which is what a
	// line-tailing monitor wants.
	ReadTimeout int
}

// DefaultConfig returns the configuration matching the firmware's
// console settings.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 0,
	}
}

//go:build rp2040 && !bench

package main

import (
	"machine"

	"stagectl/core"
	"stagectl/tmc2209"
)

const (
	driverAddr    = 0    // MS1/MS2 both strapped low
	senseResistor = 0.11 // ohms, per the driver board silkscreen
)

func newMotorDriver(uart *machine.UART, en machine.Pin) core.MotorDriver {
	return tmc2209.New(tmc2209.Config{
		Bus:       uart,
		Enable:    en,
		Address:   driverAddr,
		SenseOhms: senseResistor,
	})
}

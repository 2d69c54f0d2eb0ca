//go:build rp2040

package main

import (
	"machine"
	"time"

	"stagectl/core"
)

// Board wiring. The TMC2209 hangs off UART0 with its PDN_UART pin tied to
// both TX and RX through the usual 1k resistor; EN has a dedicated GPIO.
const (
	uartTX = machine.GP0
	uartRX = machine.GP1
	enPin  = machine.GP2

	buttonPin core.GPIOPin      = 14 // joystick button, active low
	limitPin  core.GPIOPin      = 15 // lower limit switch, active low
	axisChan  core.ADCChannelID = 0  // joystick axis on GP26/ADC0
)

func main() {
	// Clear any watchdog state left over from a previous reset. The
	// firmware deliberately runs without one: a homing sequence that
	// never resolves must stay visibly stuck, not reboot-loop.
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	// Diagnostics go to the USB CDC console.
	core.SetDebugWriter(func(s string) { println(s) })
	core.DebugPrintln("stagectl: boot")

	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: 115200, TX: uartTX, RX: uartRX})

	en := enPin
	en.Configure(machine.PinConfig{Mode: machine.PinOutput})
	en.Set(true) // output stage off until the controller enables it

	core.SetGPIODriver(NewRPGPIODriver())
	core.SetADCDriver(NewRPADCDriver())

	drv := newMotorDriver(uart, en)

	ctrl, err := core.NewController(core.DefaultConfig(), drv, core.Pins{
		Axis:   axisChan,
		Button: buttonPin,
		Limit:  limitPin,
	})
	if err != nil {
		for {
			core.DebugPrintln("init: " + err.Error())
			time.Sleep(5 * time.Second)
		}
	}

	go debugPokeLoop()

	ctrl.Run()
}

// debugPokeLoop dumps the diagnostic event ring whenever any byte arrives
// on the USB console. Observational only; the control loop never reads
// console input.
func debugPokeLoop() {
	for {
		if machine.Serial.Buffered() > 0 {
			machine.Serial.ReadByte()
			core.DumpEventRing()
		}
		time.Sleep(100 * time.Millisecond)
	}
}

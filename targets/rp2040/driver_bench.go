//go:build rp2040 && bench

package main

import (
	"machine"
	"sync"
	"time"

	"tinygo.org/x/drivers/easystepper"

	"stagectl/core"
)

// Bench rig fallback: a four-coil stepper wired straight to GP6..GP9
// instead of the TMC2209 board, selected with -tags bench. easystepper
// owns the coil timing, so motion is emitted as one burst of steps per
// control period rather than a continuous rate. Coarse, but it exercises
// the whole control loop on a desk with no driver hardware.
type benchDriver struct {
	mu       sync.Mutex
	dev      *easystepper.Device
	stepRate uint32
	dir      core.Direction
	enabled  bool
}

func newMotorDriver(_ *machine.UART, _ machine.Pin) core.MotorDriver {
	return &benchDriver{}
}

func (d *benchDriver) Configure(_ uint16, _ uint16, _ bool) error {
	dev, err := easystepper.New(easystepper.DeviceConfig{
		Pin1: machine.GP6, Pin2: machine.GP7, Pin3: machine.GP8, Pin4: machine.GP9,
		StepCount: 200,
		RPM:       120,
		Mode:      easystepper.ModeFour,
	})
	if err != nil {
		return err
	}
	dev.Configure()
	d.dev = dev
	d.enabled = true
	go d.run()
	return nil
}

func (d *benchDriver) SetDirection(dir core.Direction) error {
	d.mu.Lock()
	d.dir = dir
	d.mu.Unlock()
	return nil
}

func (d *benchDriver) SetVelocity(stepRate uint32) error {
	d.mu.Lock()
	d.stepRate = stepRate
	d.mu.Unlock()
	return nil
}

func (d *benchDriver) SetEnabled(on bool) error {
	d.mu.Lock()
	d.enabled = on
	d.mu.Unlock()
	return nil
}

// run converts the commanded rate into a burst of steps per period.
func (d *benchDriver) run() {
	const periodMs = 50
	for {
		d.mu.Lock()
		rate, dir, on := d.stepRate, d.dir, d.enabled
		d.mu.Unlock()

		if !on || rate == 0 {
			time.Sleep(periodMs * time.Millisecond)
			continue
		}
		steps := int32(rate * periodMs / 1000)
		if dir == core.Down {
			steps = -steps
		}
		d.dev.Move(steps)
	}
}

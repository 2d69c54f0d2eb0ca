// Package tmc2209 drives a Trinamic TMC2209 stepper driver over its
// single-wire UART in velocity mode: the controller supplies a signed step
// rate through VACTUAL and the driver generates step pulses internally, so
// no step/dir signals leave the MCU. One register write per motion change
// is all the link ever carries.
package tmc2209

import (
	"errors"
	"math"
	"time"

	"stagectl/core"
)

const (
	syncByte  = 0x05
	writeFlag = 0x80
	// The driver addresses the host as 0xFF in read replies.
	masterAddr = 0xFF

	// fclk is the TMC2209 internal clock. VACTUAL is expressed in
	// fclk/2^24 increments, about 0.715 steps/s each.
	fclk = 12000000

	// replyAttempts bounds how long a register read waits for the
	// driver's reply, in ~1 ms polls.
	replyAttempts = 20
)

// Bus is the half-duplex UART the driver is attached to. machine.UART
// satisfies it on TinyGo targets. Because TX and RX share one wire, every
// transmission echoes back into the receive buffer and must be discarded.
type Bus interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Buffered() int
}

// OutputPin abstracts the dedicated enable line. EN is active low on the
// TMC2209: Set(false) energizes the output stage. machine.Pin satisfies
// this on TinyGo targets.
type OutputPin interface {
	Set(high bool)
}

// Config describes how the driver is wired.
type Config struct {
	Bus    Bus
	Enable OutputPin
	// Address is the MS1/MS2 strap address, 0..3.
	Address uint8
	// SenseOhms is the board's sense resistor value, needed to map a
	// current in mA onto the driver's 5-bit scale.
	SenseOhms float64
	// InvertDir flips the meaning of Up/Down for boards where the motor
	// is wired mirror-image.
	InvertDir bool
}

// Driver implements core.MotorDriver for the TMC2209.
type Driver struct {
	bus    Bus
	en     OutputPin
	addr   uint8
	senseR float64
	invert bool

	stepRate uint32
	dir      core.Direction
}

// New returns an unconfigured driver. Call Configure before use.
func New(cfg Config) *Driver {
	return &Driver{
		bus:    cfg.Bus,
		en:     cfg.Enable,
		addr:   cfg.Address,
		senseR: cfg.SenseOhms,
		invert: cfg.InvertDir,
	}
}

// Configure performs the one-time boot setup: UART ownership of the
// configuration, chopper mode, microstep resolution, run current, and a
// stopped VACTUAL. The IFCNT write counter is read back afterwards to
// verify the datagrams were accepted; a mismatch means the link or the
// driver is faulty and the stage must not run.
func (d *Driver) Configure(runCurrentMA uint16, microsteps uint16, stealth bool) error {
	// Keep the output stage off while configuring.
	d.en.Set(true)

	mres, err := mresFor(microsteps)
	if err != nil {
		return err
	}
	cs, vsense := currentScale(runCurrentMA, d.senseR)

	gconf := uint32(gconfPDNDisable | gconfMStepRegSelect | gconfMultistepFilt)
	if !stealth {
		gconf |= gconfEnSpreadCycle
	}
	if d.invert {
		gconf |= gconfShaft
	}

	chop := uint32(chopconfBase) | mres<<chopconfMResShift
	if vsense {
		chop |= chopconfVSense
	}

	// IHOLD at half IRUN: enough to hold the stage against gravity
	// without cooking the motor at standstill.
	ihold := cs / 2
	current := uint32(ihold)<<iholdShift |
		uint32(cs)<<irunShift |
		uint32(iholdDelayDefault)<<iholdDelayShift

	before, err := d.readReg(regIFCNT)
	if err != nil {
		return err
	}

	writes := []struct {
		reg uint8
		val uint32
	}{
		{regSLAVECONF, slaveconfSendDelay},
		{regGCONF, gconf},
		{regCHOPCONF, chop},
		{regIHOLDIRUN, current},
		{regTPOWERDOWN, tpowerdownDefault},
		{regVACTUAL, 0},
	}
	for _, w := range writes {
		if err := d.writeReg(w.reg, w.val); err != nil {
			return err
		}
	}

	after, err := d.readReg(regIFCNT)
	if err != nil {
		return err
	}
	if uint8(after-before) != uint8(len(writes)) {
		return errors.New("tmc2209: register writes not acknowledged")
	}
	return nil
}

// SetDirection selects the direction for subsequent motion. The TMC2209
// carries direction in the sign of VACTUAL, so a change while moving is
// re-committed immediately.
func (d *Driver) SetDirection(dir core.Direction) error {
	if d.dir == dir {
		return nil
	}
	d.dir = dir
	if d.stepRate == 0 {
		return nil
	}
	return d.writeVelocity()
}

// SetVelocity sets the continuous step rate in steps/s. Zero stops the
// motor.
func (d *Driver) SetVelocity(stepRate uint32) error {
	d.stepRate = stepRate
	return d.writeVelocity()
}

// SetEnabled switches the output stage on or off via the EN line.
func (d *Driver) SetEnabled(on bool) error {
	d.en.Set(!on)
	return nil
}

func (d *Driver) writeVelocity() error {
	v := int32(vactualFor(d.stepRate))
	if d.dir == core.Down {
		v = -v
	}
	return d.writeReg(regVACTUAL, uint32(v)&0xFFFFFF)
}

// vactualFor converts steps/s into VACTUAL units (fclk/2^24 per count).
func vactualFor(stepRate uint32) uint32 {
	return uint32(uint64(stepRate) * (1 << 24) / fclk)
}

// mresFor maps a microstep count onto the CHOPCONF MRES code
// (0=256 microsteps .. 8=full step).
func mresFor(microsteps uint16) (uint32, error) {
	for mres := uint32(0); mres <= 8; mres++ {
		if uint16(256>>mres) == microsteps {
			return mres, nil
		}
	}
	return 0, errors.New("tmc2209: unsupported microstep count")
}

// currentScale maps a run current in mA onto the 5-bit CS scale, choosing
// the high-sensitivity sense range when it fits for better resolution.
// I_rms = (CS+1)/32 * Vfs/(Rsense+0.02) / sqrt(2).
func currentScale(currentMA uint16, senseOhms float64) (cs uint8, vsense bool) {
	const (
		vfsHigh = 0.180 // vsense=1
		vfsLow  = 0.325 // vsense=0
	)
	amps := float64(currentMA) / 1000.0
	r := senseOhms + 0.02

	scale := func(vfs float64) int {
		return int(math.Ceil(32.0*amps*math.Sqrt2*r/vfs)) - 1
	}

	if v := scale(vfsHigh); v <= 31 {
		if v < 0 {
			v = 0
		}
		return uint8(v), true
	}
	v := scale(vfsLow)
	if v > 31 {
		v = 31
	}
	return uint8(v), false
}

// writeReg sends one 8-byte write datagram and discards its echo from the
// shared wire.
func (d *Driver) writeReg(reg uint8, value uint32) error {
	dg := [8]byte{
		syncByte,
		d.addr,
		reg | writeFlag,
		byte(value >> 24),
		byte(value >> 16),
		byte(value >> 8),
		byte(value),
		0,
	}
	dg[7] = crc8(dg[:7])

	if _, err := d.bus.Write(dg[:]); err != nil {
		return err
	}
	d.drain(len(dg))
	return nil
}

// readReg sends a 4-byte read request and parses the driver's 8-byte
// reply, skipping the request's own echo.
func (d *Driver) readReg(reg uint8) (uint32, error) {
	d.flush()

	req := [4]byte{syncByte, d.addr, reg, 0}
	req[3] = crc8(req[:3])
	if _, err := d.bus.Write(req[:]); err != nil {
		return 0, err
	}

	// Up to 4 echoed bytes may precede the 8-byte reply.
	var frame [12]byte
	got := 0
	for attempt := 0; attempt < replyAttempts && got < len(frame); attempt++ {
		if d.bus.Buffered() == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		n, err := d.bus.Read(frame[got:])
		if err != nil {
			return 0, err
		}
		got += n
	}

	// Locate the reply: sync byte addressed to the master.
	for i := 0; i+8 <= got; i++ {
		if frame[i] != syncByte || frame[i+1] != masterAddr {
			continue
		}
		reply := frame[i : i+8]
		if crc8(reply[:7]) != reply[7] {
			return 0, errors.New("tmc2209: reply crc mismatch")
		}
		if reply[2] != reg {
			return 0, errors.New("tmc2209: reply register mismatch")
		}
		return uint32(reply[3])<<24 | uint32(reply[4])<<16 |
			uint32(reply[5])<<8 | uint32(reply[6]), nil
	}
	return 0, errors.New("tmc2209: no reply")
}

// drain discards up to n echoed bytes after a transmission.
func (d *Driver) drain(n int) {
	var buf [16]byte
	got := 0
	for attempt := 0; attempt < replyAttempts && got < n; attempt++ {
		if d.bus.Buffered() == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		r, err := d.bus.Read(buf[:])
		if err != nil {
			return
		}
		got += r
	}
}

// flush discards whatever is sitting in the receive buffer.
func (d *Driver) flush() {
	var buf [16]byte
	for d.bus.Buffered() > 0 {
		if _, err := d.bus.Read(buf[:]); err != nil {
			return
		}
	}
}

// crc8 is the datasheet CRC (x^8 + x^2 + x + 1), fed LSB first.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		for i := 0; i < 8; i++ {
			if (crc>>7)^(b&1) != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
			b >>= 1
		}
	}
	return crc
}

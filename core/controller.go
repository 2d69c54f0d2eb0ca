package core

import "time"

// Pins describes where the controller's inputs are wired.
type Pins struct {
	Axis   ADCChannelID // joystick axis
	Button GPIOPin      // joystick button, active low
	Limit  GPIOPin      // limit switch, active low
}

// Controller owns the MotionState and runs the per-cycle control
// sequence: sample input, refresh power, map velocity, apply the safety
// interlock, commit to the driver, update the position estimate.
//
// Everything runs on one execution context; the homing sequencer is
// serviced by the same tick until it completes, and only then does the
// steady-state sequence start.
type Controller struct {
	cfg  Config
	drv  MotorDriver
	pins Pins

	state     MotionState
	sampler   *Sampler
	homing    *Homing
	interlock *Interlock
	power     *Power

	now   uint32 // ms since boot, advanced by Step
	homed bool

	// Last values written to the driver. The half-duplex command link is
	// only written when something changes, keeping it free for the
	// driver's own status traffic.
	lastDir      Direction
	lastVelocity uint32
	dirKnown     bool
	velKnown     bool
}

// NewController configures the input hardware and the motor driver and
// returns a controller ready to run. The MotionState starts in Manual
// mode, unhomed, at zero velocity; the homing sequencer runs to completion
// before any joystick input is serviced.
func NewController(cfg Config, drv MotorDriver, pins Pins) (*Controller, error) {
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := MustADC().Init(); err != nil {
		return nil, err
	}
	if err := MustADC().ConfigureChannel(pins.Axis); err != nil {
		return nil, err
	}
	if err := MustGPIO().ConfigureInputPullUp(pins.Button); err != nil {
		return nil, err
	}
	if err := MustGPIO().ConfigureInputPullUp(pins.Limit); err != nil {
		return nil, err
	}

	if err := drv.Configure(cfg.RunCurrentMA, cfg.Microsteps, cfg.StealthChop); err != nil {
		return nil, err
	}
	if err := drv.SetEnabled(true); err != nil {
		return nil, err
	}

	return &Controller{
		cfg:       cfg,
		drv:       drv,
		pins:      pins,
		sampler:   NewSampler(cfg, pins),
		homing:    NewHoming(cfg),
		interlock: NewInterlock(cfg),
		power:     NewPower(cfg),
	}, nil
}

// State returns a snapshot of the motion state.
func (c *Controller) State() MotionState {
	return c.state
}

// Homed reports whether the boot homing sequence has completed.
func (c *Controller) Homed() bool {
	return c.homed
}

// Now returns the controller's time in ms since boot.
func (c *Controller) Now() uint32 {
	return c.now
}

// Step runs one control cycle. dt is the elapsed time since the previous
// cycle in milliseconds: targets pass the loop period, tests advance
// simulated time.
func (c *Controller) Step(dt uint32) {
	c.now += dt

	// Limit switch is active low against a pull-up.
	limit := !MustGPIO().ReadPin(c.pins.Limit)

	if !c.homed {
		// Homing blocks all other duties: no joystick service, no
		// power management, and no interlock (the search phase drives
		// into the switch on purpose).
		req, done := c.homing.Tick(&c.state, limit, c.now, dt)
		c.commit(req)
		c.homed = done
		return
	}

	sample := c.sampler.Sample()
	interacted := c.sampler.Observe(sample, c.now)
	if c.sampler.UpdateButton(sample.ButtonPressed, dt) {
		c.toggleMode()
	}

	if !c.power.Update(c.drv, c.state.Mode, interacted, c.sampler.IdleFor(c.now), c.now) {
		// Driver idled: stop, skip mapping, freeze the estimate.
		c.commit(Request{Velocity: 0, Direction: c.state.Direction})
		return
	}

	intent := c.sampler.Intent(sample)
	req := MapVelocity(c.cfg, &c.state, sample, intent)
	req = c.interlock.Apply(&c.state, req, limit, c.now, dt)
	c.commit(req)
	Estimate(c.cfg, &c.state)
}

// Run drives the controller at the configured cadence. It never returns.
func (c *Controller) Run() {
	period := time.Duration(c.cfg.LoopPeriodMs) * time.Millisecond
	for {
		c.Step(c.cfg.LoopPeriodMs)
		time.Sleep(period)
	}
}

// commit writes the cycle's motion to the driver and records it in the
// MotionState. Direction is written before velocity so a direction change
// never applies to an in-flight rate.
func (c *Controller) commit(req Request) {
	if !c.dirKnown || req.Direction != c.lastDir {
		if err := c.drv.SetDirection(req.Direction); err != nil {
			DebugPrintln("driver: set direction: " + err.Error())
		}
		c.lastDir = req.Direction
		c.dirKnown = true
	}
	if !c.velKnown || req.Velocity != c.lastVelocity {
		if err := c.drv.SetVelocity(req.Velocity); err != nil {
			DebugPrintln("driver: set velocity: " + err.Error())
		}
		c.lastVelocity = req.Velocity
		c.velKnown = true
	}
	c.state.Velocity = req.Velocity
	c.state.Direction = req.Direction
}

func (c *Controller) toggleMode() {
	if c.state.Mode == Manual {
		c.state.Mode = FixedSpeed
	} else {
		c.state.Mode = Manual
	}
	RecordEvent(EvtModeToggle, c.now, int32(c.state.Mode))
	DebugPrintln("mode: " + c.state.Mode.String())
}

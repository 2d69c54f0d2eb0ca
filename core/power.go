package core

// Power manages the driver output stage based on operator activity. After
// the inactivity timeout the output stage is de-energized so the motor and
// driver do not sit at holding current indefinitely; FixedSpeed mode keeps
// the driver powered because the stage is moving without stick input.
type Power struct {
	cfg     Config
	enabled bool
}

// NewPower returns a Power manager. The driver starts enabled: homing runs
// immediately at boot and counts as activity.
func NewPower(cfg Config) *Power {
	return &Power{cfg: cfg, enabled: true}
}

// Enabled reports whether the output stage is currently energized.
func (p *Power) Enabled() bool {
	return p.enabled
}

// Update refreshes the output stage for this cycle. It returns false when
// the driver is idle: the caller must skip velocity computation and leave
// the position estimate frozen for the remainder of the cycle.
//
// A qualifying interaction re-enables the driver on the same cycle it is
// observed, so motion resumes without a dropped cycle.
func (p *Power) Update(drv MotorDriver, mode Mode, interacted bool, idleFor, now uint32) bool {
	if interacted && !p.enabled {
		p.enabled = true
		if err := drv.SetEnabled(true); err != nil {
			DebugPrintln("driver: enable failed: " + err.Error())
		}
		RecordEvent(EvtPowerUp, now, 0)
		DebugPrintln("power: driver re-enabled")
		return true
	}

	if p.enabled && mode != FixedSpeed && idleFor >= p.cfg.IdleTimeoutMs {
		p.enabled = false
		if err := drv.SetEnabled(false); err != nil {
			DebugPrintln("driver: disable failed: " + err.Error())
		}
		RecordEvent(EvtPowerDown, now, 0)
		DebugPrintln("power: idle timeout, driver disabled")
	}
	return p.enabled
}

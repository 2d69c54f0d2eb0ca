package core

import "errors"

// Config carries every tunable of the control core. Values that were bare
// numeric literals in earlier firmware revisions are named here; the
// defaults match the shipped stage hardware.
type Config struct {
	// LoopPeriodMs is the steady-state cycle period in milliseconds.
	// The default gives the ~20 Hz cadence the debounce and timeout
	// windows were tuned against.
	LoopPeriodMs uint32

	// Joystick dead-zone. The bounds are intentionally asymmetric around
	// the stick's ~512 resting point to match the installed hardware;
	// they are independent fields, not a mirrored pair.
	AxisMax            uint16
	AxisUpperThreshold uint16 // readings above this request Up
	AxisLowerThreshold uint16 // readings below this request Down

	// Velocity mapping range for manual control, in steps/s.
	MinStepRate uint32 // at the dead-zone edge
	MaxStepRate uint32 // at full deflection

	SearchStepRate  uint32 // homing: downward search velocity
	BackoffStepRate uint32 // homing: upward back-off velocity
	CreepStepRate   uint32 // FixedSpeed lowering velocity

	DebounceMs      uint32 // limit-switch debounce window
	ButtonConfirmMs uint32 // button press confirmation delay
	IdleTimeoutMs   uint32 // power manager inactivity timeout

	// SoftLimitSteps is the upward travel ceiling in estimated steps.
	// Downward travel has no numeric ceiling; the physical switch and
	// the homed-zero latch bound it instead.
	SoftLimitSteps int32

	// EstimateDivisor converts a committed step rate into estimate steps
	// per cycle. Equal to the loop rate in Hz when the estimate is in
	// true steps; calibrated on the shipped hardware.
	EstimateDivisor int32

	// One-time driver output stage setup.
	RunCurrentMA uint16
	Microsteps   uint16
	StealthChop  bool
}

// DefaultConfig returns the configuration for the shipped stage.
func DefaultConfig() Config {
	return Config{
		LoopPeriodMs:       50,
		AxisMax:            1023,
		AxisUpperThreshold: 650,
		AxisLowerThreshold: 510,
		MinStepRate:        200,
		MaxStepRate:        3200,
		SearchStepRate:     2400,
		BackoffStepRate:    800,
		CreepStepRate:      400,
		DebounceMs:         400,
		ButtonConfirmMs:    50,
		IdleTimeoutMs:      5000,
		SoftLimitSteps:     48000,
		EstimateDivisor:    20,
		RunCurrentMA:       800,
		Microsteps:         16,
		StealthChop:        true,
	}
}

// applyDefaults fills zero-valued fields from DefaultConfig so a partially
// specified Config behaves sensibly.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.LoopPeriodMs == 0 {
		cfg.LoopPeriodMs = def.LoopPeriodMs
	}
	if cfg.AxisMax == 0 {
		cfg.AxisMax = def.AxisMax
	}
	if cfg.AxisUpperThreshold == 0 {
		cfg.AxisUpperThreshold = def.AxisUpperThreshold
	}
	if cfg.AxisLowerThreshold == 0 {
		cfg.AxisLowerThreshold = def.AxisLowerThreshold
	}
	if cfg.MinStepRate == 0 {
		cfg.MinStepRate = def.MinStepRate
	}
	if cfg.MaxStepRate == 0 {
		cfg.MaxStepRate = def.MaxStepRate
	}
	if cfg.SearchStepRate == 0 {
		cfg.SearchStepRate = def.SearchStepRate
	}
	if cfg.BackoffStepRate == 0 {
		cfg.BackoffStepRate = def.BackoffStepRate
	}
	if cfg.CreepStepRate == 0 {
		cfg.CreepStepRate = def.CreepStepRate
	}
	if cfg.DebounceMs == 0 {
		cfg.DebounceMs = def.DebounceMs
	}
	if cfg.ButtonConfirmMs == 0 {
		cfg.ButtonConfirmMs = def.ButtonConfirmMs
	}
	if cfg.IdleTimeoutMs == 0 {
		cfg.IdleTimeoutMs = def.IdleTimeoutMs
	}
	if cfg.SoftLimitSteps == 0 {
		cfg.SoftLimitSteps = def.SoftLimitSteps
	}
	if cfg.EstimateDivisor == 0 {
		cfg.EstimateDivisor = def.EstimateDivisor
	}
	if cfg.RunCurrentMA == 0 {
		cfg.RunCurrentMA = def.RunCurrentMA
	}
	if cfg.Microsteps == 0 {
		cfg.Microsteps = def.Microsteps
	}
}

// Validate checks the configuration for internal consistency.
func (cfg *Config) Validate() error {
	if cfg.AxisLowerThreshold >= cfg.AxisUpperThreshold {
		return errors.New("config: dead-zone lower threshold must be below upper threshold")
	}
	if cfg.AxisUpperThreshold >= cfg.AxisMax {
		return errors.New("config: upper threshold must be below axis maximum")
	}
	if cfg.MinStepRate > cfg.MaxStepRate {
		return errors.New("config: min step rate exceeds max step rate")
	}
	if cfg.SoftLimitSteps < 0 {
		return errors.New("config: soft limit must not be negative")
	}
	if cfg.EstimateDivisor <= 0 {
		return errors.New("config: estimate divisor must be positive")
	}
	if cfg.DebounceMs < cfg.LoopPeriodMs {
		return errors.New("config: debounce window shorter than one loop period")
	}
	if !isPowerOfTwo(uint32(cfg.Microsteps)) || cfg.Microsteps > 256 {
		return errors.New("config: microsteps must be a power of two up to 256")
	}
	return nil
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

package core

// MotorDriver is the contract to the external velocity-mode stepper
// driver. The command link is a low-speed half-duplex channel owned
// exclusively by the control loop, which is single-threaded, so no locking
// is required around it.
//
// None of the returned errors feed control decisions: the controller
// reports failures on the debug channel and keeps running.
type MotorDriver interface {
	// Configure performs the one-time boot setup of the output stage:
	// motor run current, microstep resolution, and chopper mode.
	Configure(runCurrentMA uint16, microsteps uint16, stealth bool) error

	// SetDirection selects the direction for subsequent motion.
	SetDirection(dir Direction) error

	// SetVelocity sets the continuous step rate in steps/s. Zero stops
	// the motor; the driver free-runs at the given rate otherwise.
	SetVelocity(stepRate uint32) error

	// SetEnabled switches the driver output stage on or off.
	SetEnabled(on bool) error
}

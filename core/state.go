package core

// Motion state for the linear stage.
// All mutable control state lives in one MotionState owned by the
// Controller and touched only from the control loop; the update logic is
// split into small functions over that state so it can be exercised
// without hardware.

// Direction of stage travel. Up moves the carriage away from the limit
// switch, Down moves it toward the lower hard stop.
type Direction uint8

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Mode selects how joystick input is interpreted.
type Mode uint8

const (
	// Manual maps joystick deflection to velocity.
	Manual Mode = iota
	// FixedSpeed ignores the axis and lowers the stage at a constant
	// creep rate until cancelled or the interlock trips.
	FixedSpeed
)

func (m Mode) String() string {
	if m == FixedSpeed {
		return "fixed-speed"
	}
	return "manual"
}

// Intent is the operator's direction request derived from the axis reading
// and the configured dead-zone.
type Intent uint8

const (
	IntentNeutral Intent = iota
	IntentUp
	IntentDown
)

// JoystickSample is one cycle's raw input reading. A fresh sample is
// produced every cycle and never retained.
type JoystickSample struct {
	AxisRaw       uint16 // 0..Config.AxisMax
	ButtonPressed bool
}

// MotionState is the motion state of the stage, constructed once at boot
// and mutated every cycle for the life of the program.
type MotionState struct {
	Velocity     uint32 // committed step rate, steps/s
	Direction    Direction
	StepEstimate int32 // open-loop position estimate, steps above zero
	Mode         Mode

	// HomedZero latches when the stage has contacted the lower hard
	// stop. While set, Down requests produce no motion; the latch clears
	// when the operator requests Up or returns the stick to neutral.
	HomedZero bool
}

// Debounce accumulates how long a raw condition has held continuously.
// An explicit elapsed counter is used instead of a "zero timestamp means
// unset" sentinel, so a legitimate tick value of zero is unambiguous.
type Debounce struct {
	elapsed uint32 // ms the condition has held so far
}

// Advance adds dt while the condition holds and reports whether the
// accumulated time has reached the window. Any single cycle where the
// condition does not hold resets the accumulator.
func (d *Debounce) Advance(held bool, dt, window uint32) bool {
	if !held {
		d.elapsed = 0
		return false
	}
	d.elapsed += dt
	return d.elapsed >= window
}

// Reset clears the accumulator.
func (d *Debounce) Reset() {
	d.elapsed = 0
}

package core

import "testing"

const (
	testAxisChan  ADCChannelID = 0
	testButtonPin GPIOPin      = 14
	testLimitPin  GPIOPin      = 15
)

// fakeGPIO serves pin reads from a level map. Unset pins read high, the
// pull-up idle level, so buttons and switches start released.
type fakeGPIO struct {
	levels map[GPIOPin]bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{levels: make(map[GPIOPin]bool)}
}

func (g *fakeGPIO) ConfigureOutput(GPIOPin) error      { return nil }
func (g *fakeGPIO) ConfigureInputPullUp(GPIOPin) error { return nil }
func (g *fakeGPIO) SetPin(pin GPIOPin, v bool) error {
	g.levels[pin] = v
	return nil
}
func (g *fakeGPIO) GetPin(pin GPIOPin) (bool, error) { return g.ReadPin(pin), nil }
func (g *fakeGPIO) ReadPin(pin GPIOPin) bool {
	v, ok := g.levels[pin]
	if !ok {
		return true
	}
	return v
}

// Active-low helpers.
func (g *fakeGPIO) press(pin GPIOPin)   { g.levels[pin] = false }
func (g *fakeGPIO) release(pin GPIOPin) { g.levels[pin] = true }

type fakeADC struct {
	value ADCValue
	err   error
}

func (a *fakeADC) Init() error                         { return nil }
func (a *fakeADC) ConfigureChannel(ADCChannelID) error { return nil }
func (a *fakeADC) ReadRaw(ADCChannelID) (ADCValue, error) {
	return a.value, a.err
}

type fakeDriver struct {
	configured bool
	enabled    bool
	dirs       []Direction
	vels       []uint32
	enables    []bool
}

func (d *fakeDriver) Configure(uint16, uint16, bool) error {
	d.configured = true
	return nil
}
func (d *fakeDriver) SetDirection(dir Direction) error {
	d.dirs = append(d.dirs, dir)
	return nil
}
func (d *fakeDriver) SetVelocity(stepRate uint32) error {
	d.vels = append(d.vels, stepRate)
	return nil
}
func (d *fakeDriver) SetEnabled(on bool) error {
	d.enabled = on
	d.enables = append(d.enables, on)
	return nil
}

func (d *fakeDriver) lastVelocity() uint32 {
	if len(d.vels) == 0 {
		return 0
	}
	return d.vels[len(d.vels)-1]
}

func newTestController(t *testing.T) (*Controller, *fakeGPIO, *fakeADC, *fakeDriver) {
	t.Helper()
	gpio := newFakeGPIO()
	adc := &fakeADC{value: 512}
	drv := &fakeDriver{}
	SetGPIODriver(gpio)
	SetADCDriver(adc)
	ClearEventRing()

	ctrl, err := NewController(DefaultConfig(), drv, Pins{
		Axis:   testAxisChan,
		Button: testButtonPin,
		Limit:  testLimitPin,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl, gpio, adc, drv
}

const tick = 50 // default loop period in ms

// runHoming drives the boot homing sequence to completion: a few search
// cycles, the switch held closed through the debounce window, then held
// open through the window again.
func runHoming(t *testing.T, ctrl *Controller, gpio *fakeGPIO) {
	t.Helper()
	for i := 0; i < 4; i++ {
		ctrl.Step(tick)
	}
	gpio.press(testLimitPin)
	for i := 0; i < 8; i++ {
		ctrl.Step(tick)
	}
	gpio.release(testLimitPin)
	for i := 0; i < 8; i++ {
		ctrl.Step(tick)
	}
	if !ctrl.Homed() {
		t.Fatal("homing did not complete")
	}
}

func TestBootHoming(t *testing.T) {
	ctrl, gpio, _, drv := newTestController(t)

	cfg := DefaultConfig()
	seen := map[uint32]bool{}

	for i := 0; i < 4; i++ {
		ctrl.Step(tick)
	}
	if ctrl.Homed() {
		t.Fatal("homed before the switch was ever seen")
	}
	gpio.press(testLimitPin)
	for i := 0; i < 8; i++ {
		ctrl.Step(tick)
	}
	gpio.release(testLimitPin)
	for i := 0; i < 8; i++ {
		ctrl.Step(tick)
	}

	if !ctrl.Homed() {
		t.Fatal("homing did not complete")
	}
	st := ctrl.State()
	if st.StepEstimate != 0 {
		t.Errorf("estimate after homing = %d, want 0", st.StepEstimate)
	}
	if st.HomedZero {
		t.Error("latch should be clear after homing")
	}
	if st.Velocity != 0 {
		t.Errorf("velocity after homing = %d, want 0", st.Velocity)
	}
	for _, v := range drv.vels {
		seen[v] = true
	}
	if !seen[cfg.SearchStepRate] || !seen[cfg.BackoffStepRate] {
		t.Errorf("driver never saw search/backoff rates: %v", drv.vels)
	}
	if drv.lastVelocity() != 0 {
		t.Errorf("last committed velocity = %d, want 0", drv.lastVelocity())
	}
}

func TestHomingSkipsSearchOnClosedSwitch(t *testing.T) {
	ctrl, gpio, _, drv := newTestController(t)
	cfg := DefaultConfig()

	// Carriage resting on the switch at power-up.
	gpio.press(testLimitPin)
	ctrl.Step(tick)

	for _, v := range drv.vels {
		if v == cfg.SearchStepRate {
			t.Fatal("search velocity commanded with the switch already closed")
		}
	}
	if drv.lastVelocity() != cfg.BackoffStepRate {
		t.Errorf("first command = %d, want back-off rate %d",
			drv.lastVelocity(), cfg.BackoffStepRate)
	}
}

// Scenario: full upward deflection below the soft limit runs at maximum
// rate and the estimate climbs every cycle.
func TestFullUpDeflection(t *testing.T) {
	ctrl, gpio, adc, _ := newTestController(t)
	runHoming(t, ctrl, gpio)
	cfg := DefaultConfig()

	adc.value = 1023
	prev := ctrl.State().StepEstimate
	for i := 0; i < 10; i++ {
		ctrl.Step(tick)
		st := ctrl.State()
		if st.Velocity != cfg.MaxStepRate {
			t.Fatalf("cycle %d: velocity = %d, want %d", i, st.Velocity, cfg.MaxStepRate)
		}
		if st.Direction != Up {
			t.Fatalf("cycle %d: direction = %v, want up", i, st.Direction)
		}
		if st.StepEstimate <= prev {
			t.Fatalf("cycle %d: estimate %d did not increase from %d", i, st.StepEstimate, prev)
		}
		prev = st.StepEstimate
	}
}

// Scenario: neutral stick holds at zero velocity with the driver enabled
// while inside the inactivity timeout.
func TestNeutralHold(t *testing.T) {
	ctrl, gpio, adc, drv := newTestController(t)
	runHoming(t, ctrl, gpio)

	// The interaction clock runs from boot and homing has already used
	// 1 s of it, so stay just inside the 5 s timeout.
	adc.value = 512
	for i := 0; i < 75; i++ {
		ctrl.Step(tick)
	}
	st := ctrl.State()
	if st.Velocity != 0 {
		t.Errorf("velocity = %d, want 0 at neutral", st.Velocity)
	}
	if !drv.enabled {
		t.Error("driver disabled before the inactivity timeout")
	}
}

// Scenario: full downward deflection runs at maximum rate until the limit
// switch holds through the debounce window, then the stage stops and the
// homed-zero latch sets.
func TestDownToHardStop(t *testing.T) {
	ctrl, gpio, adc, _ := newTestController(t)
	runHoming(t, ctrl, gpio)
	cfg := DefaultConfig()

	adc.value = 0
	ctrl.Step(tick)
	st := ctrl.State()
	if st.Velocity != cfg.MaxStepRate || st.Direction != Down {
		t.Fatalf("motion = (%d, %v), want (%d, down)", st.Velocity, st.Direction, cfg.MaxStepRate)
	}

	gpio.press(testLimitPin)
	for i := 0; i < 7; i++ {
		ctrl.Step(tick)
		if ctrl.State().Velocity == 0 {
			t.Fatalf("stopped %d cycles into the debounce window", i+1)
		}
	}
	ctrl.Step(tick) // window complete
	st = ctrl.State()
	if st.Velocity != 0 {
		t.Errorf("velocity after trip = %d, want 0", st.Velocity)
	}
	if !st.HomedZero {
		t.Error("latch not set after trip")
	}

	// Latch holds against continued down deflection.
	for i := 0; i < 5; i++ {
		ctrl.Step(tick)
		if ctrl.State().Velocity != 0 {
			t.Fatal("down motion produced while latched")
		}
	}

	// Returning to neutral releases the latch.
	adc.value = 512
	ctrl.Step(tick)
	if ctrl.State().HomedZero {
		t.Error("latch not cleared by neutral stick")
	}
}

// Scenario: a two-second button hold toggles into FixedSpeed exactly once;
// after release the creep persists until the interlock trips, which also
// cancels the mode.
func TestFixedSpeedLowering(t *testing.T) {
	ctrl, gpio, adc, _ := newTestController(t)
	runHoming(t, ctrl, gpio)
	cfg := DefaultConfig()

	adc.value = 512
	gpio.press(testButtonPin)
	for i := 0; i < 40; i++ { // 2 s hold
		ctrl.Step(tick)
	}
	if got := ctrl.State().Mode; got != FixedSpeed {
		t.Fatalf("mode after hold = %v, want fixed-speed", got)
	}
	gpio.release(testButtonPin)

	for i := 0; i < 20; i++ {
		ctrl.Step(tick)
		st := ctrl.State()
		if st.Mode != FixedSpeed {
			t.Fatal("mode did not persist after release")
		}
		if st.Velocity != cfg.CreepStepRate || st.Direction != Down {
			t.Fatalf("creep motion = (%d, %v), want (%d, down)", st.Velocity, st.Direction, cfg.CreepStepRate)
		}
	}

	gpio.press(testLimitPin)
	for i := 0; i < 8; i++ {
		ctrl.Step(tick)
	}
	st := ctrl.State()
	if st.Velocity != 0 {
		t.Errorf("velocity after trip = %d, want 0", st.Velocity)
	}
	if st.Mode != Manual {
		t.Errorf("mode after trip = %v, want manual", st.Mode)
	}
	if !st.HomedZero {
		t.Error("latch not set after trip")
	}
}

func TestIdleTimeoutAndResume(t *testing.T) {
	ctrl, gpio, adc, drv := newTestController(t)
	runHoming(t, ctrl, gpio)
	cfg := DefaultConfig()

	adc.value = 512
	for i := 0; i < 101; i++ { // past the 5 s timeout
		ctrl.Step(tick)
	}
	if drv.enabled {
		t.Fatal("driver still enabled after the inactivity timeout")
	}
	frozen := ctrl.State().StepEstimate

	// Idle cycles leave the estimate untouched.
	for i := 0; i < 10; i++ {
		ctrl.Step(tick)
	}
	if got := ctrl.State().StepEstimate; got != frozen {
		t.Errorf("estimate advanced while idle: %d -> %d", frozen, got)
	}

	// A deflection re-enables the driver and resumes motion on the same
	// cycle.
	adc.value = 1023
	ctrl.Step(tick)
	if !drv.enabled {
		t.Error("driver not re-enabled on interaction")
	}
	if got := ctrl.State().Velocity; got != cfg.MaxStepRate {
		t.Errorf("velocity on resume = %d, want %d", got, cfg.MaxStepRate)
	}
}

// The half-duplex command link is written only when the committed motion
// changes.
func TestCommitOnChangeOnly(t *testing.T) {
	ctrl, gpio, adc, drv := newTestController(t)
	runHoming(t, ctrl, gpio)

	adc.value = 512
	ctrl.Step(tick)
	vels, dirs := len(drv.vels), len(drv.dirs)
	for i := 0; i < 20; i++ {
		ctrl.Step(tick)
	}
	if len(drv.vels) != vels || len(drv.dirs) != dirs {
		t.Errorf("driver written with unchanged motion: %d->%d velocity writes, %d->%d direction writes",
			vels, len(drv.vels), dirs, len(drv.dirs))
	}
}

package tmc2209

// TMC2209 register addresses (datasheet rev 1.09).
const (
	regGCONF      = 0x00 // global configuration flags
	regGSTAT      = 0x01 // global status flags
	regIFCNT      = 0x02 // UART write counter, increments per accepted write
	regSLAVECONF  = 0x03 // UART reply delay
	regIOIN       = 0x06 // input pin states
	regIHOLDIRUN  = 0x10 // hold/run current control
	regTPOWERDOWN = 0x11 // delay before standstill current reduction
	regTSTEP      = 0x12 // measured time between steps (read only)
	regTPWMTHRS   = 0x13 // StealthChop upper velocity threshold
	regVACTUAL    = 0x22 // velocity mode step rate, signed 24 bit
	regCHOPCONF   = 0x6C // chopper configuration
	regDRVSTATUS  = 0x6F // driver status flags (read only)
	regPWMCONF    = 0x70 // StealthChop PWM configuration
)

// GCONF bits.
const (
	gconfEnSpreadCycle  = 1 << 2 // SpreadCycle instead of StealthChop
	gconfShaft          = 1 << 3 // invert motor direction
	gconfPDNDisable     = 1 << 6 // PDN_UART pin is UART, not powerdown input
	gconfMStepRegSelect = 1 << 7 // microstep resolution from MSTEP register
	gconfMultistepFilt  = 1 << 8 // filter step frequency
)

// SLAVECONF: SENDDELAY in bits 8..11. A couple of bit times keeps the
// driver's reply clear of our own transmission on the shared wire.
const slaveconfSendDelay = 2 << 8

// IHOLD_IRUN field shifts and defaults.
const (
	iholdShift        = 0  // standstill current, 0..31
	irunShift         = 8  // run current, 0..31
	iholdDelayShift   = 16 // IHOLDDELAY field position
	iholdDelayDefault = 8  // ramp-down cycles to hold current
)

// CHOPCONF fields. chopconfBase carries the conservative chopper timing
// (TOFF=3, HSTRT=5, HEND=0, TBL=2) with microstep interpolation enabled.
const (
	chopconfBase      = 3 | 5<<4 | 2<<15 | 1<<28
	chopconfVSense    = 1 << 17 // high-sensitivity current sensing
	chopconfMResShift = 24      // microstep resolution, 0=256 .. 8=full step
)

// TPOWERDOWN delay before dropping to hold current, in units of 2^18
// driver clocks.
const tpowerdownDefault = 20

package spi

import (
	"log"
)

// Bus exchanges one byte with the device selected on the SPI bus.
type Bus interface {
	// Exchange clocks out tx and returns the byte clocked in.
	Exchange(tx byte) (rx byte)
}

// Line is a discrete output signal.
type Line interface {
	SetLevel(high bool)
}

// Logger receives guest diagnostics.
type Logger interface {
	Printf(format string, args ...any)
}

type unconnected struct{}

func (unconnected) SetLevel(high bool) {}

type idleBus struct{}

func (idleBus) Exchange(tx byte) byte { return 0 }

// Controller is the G233 SPI controller register state.
type Controller struct {
	Verbose bool   // If set, traces register accesses.
	Log     Logger // Guest diagnostic sink, log.Default() if nil.

	bus   Bus
	lines [LINE_COUNT]Line

	// Registers
	cr1    uint32
	cr2    uint32
	sr     uint32
	dr     uint32
	csctrl uint32

	// Internal state
	rxData byte
	spe    bool
	mstr   bool
	cs0En  bool
	cs0Act bool
	cs1En  bool
	cs1Act bool
}

// NewController creates a controller attached to a bus, and resets it.
// The lines are, in order, CS0, CS1 and IRQ. Missing or nil lines are
// left unconnected.
func NewController(bus Bus, lines ...Line) (ctl *Controller) {
	ctl = &Controller{
		bus: bus,
	}

	if ctl.bus == nil {
		ctl.bus = idleBus{}
	}

	for n := range ctl.lines {
		ctl.lines[n] = unconnected{}
		if n < len(lines) && lines[n] != nil {
			ctl.lines[n] = lines[n]
		}
	}

	ctl.Reset()

	return
}

func (ctl *Controller) logf(format string, args ...any) {
	sink := ctl.Log
	if sink == nil {
		sink = log.Default()
	}
	sink.Printf("%v", f(format, args...))
}

// Reset returns the controller to its power-on state, and drives the
// outputs to match. The raw CSCTRL and DR mirrors are left as they were;
// the decoded chip-select flags are cleared.
func (ctl *Controller) Reset() {
	if ctl.Verbose {
		log.Printf("g233-spi: reset")
	}

	ctl.cr1 = 0
	ctl.cr2 = 0
	ctl.sr = SR_TXE

	ctl.rxData = 0
	ctl.spe = false
	ctl.mstr = false
	ctl.cs0En = false
	ctl.cs0Act = false
	ctl.cs1En = false
	ctl.cs1Act = false

	ctl.updateChipSelect()
	ctl.updateInterrupt()
}

// decode maps an offset to a register, without narrowing the offset first.
func decode(offset uint64) (reg Register, ok bool) {
	for _, reg = range Registers() {
		if offset == uint64(reg) {
			ok = true
			return
		}
	}
	return
}

// Read returns the value of the register at offset.
// Reading the data register acknowledges the received byte.
func (ctl *Controller) Read(offset uint64, size uint) (value uint64) {
	reg, ok := decode(offset)
	if !ok {
		ctl.logf("g233-spi: %v", &ErrAddress{Op: "read", Offset: offset})
		return
	}

	switch reg {
	case REG_CR1:
		value = uint64(ctl.cr1)
	case REG_CR2:
		value = uint64(ctl.cr2)
	case REG_SR:
		value = uint64(ctl.sr)
	case REG_DR:
		value = uint64(ctl.rxData)
		ctl.sr &^= SR_RXNE | SR_OVR
		ctl.updateInterrupt()
	case REG_CSCTRL:
		value = uint64(ctl.csctrl)
	}

	if ctl.Verbose {
		log.Printf("g233-spi: read %v => 0x%08x", reg, value)
	}

	return
}

// Write stores value into the register at offset.
// Writing the data register starts a transfer when one is permitted.
func (ctl *Controller) Write(offset uint64, value uint64, size uint) {
	val := uint32(value)

	reg, ok := decode(offset)
	if !ok {
		ctl.logf("g233-spi: %v", &ErrAddress{Op: "write", Offset: offset, Value: uint64(val)})
		return
	}

	if ctl.Verbose {
		log.Printf("g233-spi: write %v <= 0x%08x", reg, val)
	}

	switch reg {
	case REG_CR1:
		ctl.cr1 = val
		ctl.spe = (val & CR1_SPE) != 0
		ctl.mstr = (val & CR1_MSTR) != 0
	case REG_CR2:
		ctl.cr2 = val
		ctl.updateInterrupt()
	case REG_SR:
		// Read-only.
	case REG_DR:
		ctl.dr = val & 0xff
		if ctl.Permitted() {
			ctl.transfer(byte(ctl.dr))
		}
	case REG_CSCTRL:
		ctl.csctrl = val
		ctl.cs0En = (val & CS0_ENABLE) != 0
		ctl.cs1En = (val & CS1_ENABLE) != 0
		ctl.cs0Act = (val & CS0_ACTIVE) != 0
		ctl.cs1Act = (val & CS1_ACTIVE) != 0
		ctl.updateChipSelect()
	}
}

// Permitted is true when a data register write would start a transfer:
// enabled, master mode, and exactly one chip-select asserted.
func (ctl *Controller) Permitted() bool {
	cs0 := ctl.cs0En && ctl.cs0Act
	cs1 := ctl.cs1En && ctl.cs1Act
	return ctl.spe && ctl.mstr && (cs0 != cs1)
}

// transfer performs one blocking byte exchange. No other access can
// observe the intermediate BSY state.
func (ctl *Controller) transfer(tx byte) {
	ctl.sr &^= SR_TXE
	ctl.sr |= SR_BSY

	rx := ctl.bus.Exchange(tx)

	if (ctl.sr & SR_RXNE) != 0 {
		ctl.sr |= SR_OVR
	}
	ctl.rxData = rx

	ctl.sr |= SR_RXNE | SR_TXE
	ctl.sr &^= SR_BSY

	if ctl.Verbose {
		log.Printf("g233-spi: xfer 0x%02x -> 0x%02x sr=0x%02x", tx, rx, ctl.sr)
	}

	ctl.updateInterrupt()
}

// Status returns the status register without side effects.
func (ctl *Controller) Status() uint32 {
	return ctl.sr
}

// Peek returns a register value without read side effects. Unknown
// offsets peek as zero.
func (ctl *Controller) Peek(reg Register) (value uint32) {
	switch reg {
	case REG_CR1:
		value = ctl.cr1
	case REG_CR2:
		value = ctl.cr2
	case REG_SR:
		value = ctl.sr
	case REG_DR:
		value = uint32(ctl.rxData)
	case REG_CSCTRL:
		value = ctl.csctrl
	}
	return
}

// Package driver is a guest-side driver for the G233 SPI controller. It
// programs the controller through its MMIO registers, the way firmware
// running on the emulated machine would, and presents the result as a
// TinyGo drivers.SPI bus.
package driver

import (
	"log"

	"tinygo.org/x/drivers"

	"github.com/ezrec/g233spi/spi"
)

const (
	DEFAULT_POLL_LIMIT = 1000 // Status polls before a transfer times out.
)

// MMIO is the guest view of the memory bus.
type MMIO interface {
	Read32(addr uint64) uint32
	Write32(addr uint64, value uint32)
}

// Config selects the controller interrupt sources.
type Config struct {
	TxInterrupt    bool // Interrupt while the transmitter is empty.
	RxInterrupt    bool // Interrupt while a received byte is pending.
	ErrorInterrupt bool // Interrupt on overrun.
}

// Driver drives one controller.
type Driver struct {
	Verbose   bool
	Bus       MMIO
	Base      uint64 // Address of the register window.
	PollLimit int    // Status polls per wait, DEFAULT_POLL_LIMIT if zero.

	csctrl uint32
}

var _ drivers.SPI = (*Driver)(nil)

// New creates a driver for the controller at base.
func New(bus MMIO, base uint64) *Driver {
	return &Driver{
		Bus:  bus,
		Base: base,
	}
}

func (drv *Driver) read(reg spi.Register) uint32 {
	return drv.Bus.Read32(drv.Base + uint64(reg))
}

func (drv *Driver) write(reg spi.Register, value uint32) {
	drv.Bus.Write32(drv.Base+uint64(reg), value)
}

// Configure enables the controller in master mode with the chip-selects
// released.
func (drv *Driver) Configure(cfg Config) {
	var cr2 uint32
	if cfg.TxInterrupt {
		cr2 |= spi.CR2_TXEIE
	}
	if cfg.RxInterrupt {
		cr2 |= spi.CR2_RXNEIE
	}
	if cfg.ErrorInterrupt {
		cr2 |= spi.CR2_ERRIE
	}

	drv.Deselect()
	drv.write(spi.REG_CR2, cr2)
	drv.write(spi.REG_CR1, spi.CR1_SPE|spi.CR1_MSTR)

	// Drain any stale received byte.
	drv.read(spi.REG_DR)

	if drv.Verbose {
		log.Printf("driver: configured cr2=0x%02x", cr2)
	}
}

// Disable turns the controller off.
func (drv *Driver) Disable() {
	drv.write(spi.REG_CR1, 0)
	drv.write(spi.REG_CR2, 0)
}

// Select asserts exactly one chip-select.
func (drv *Driver) Select(cs int) (err error) {
	switch cs {
	case 0:
		drv.csctrl = spi.CS0_ENABLE | spi.CS0_ACTIVE
	case 1:
		drv.csctrl = spi.CS1_ENABLE | spi.CS1_ACTIVE
	default:
		err = &ErrChipSelect{CS: cs}
		return
	}

	drv.write(spi.REG_CSCTRL, drv.csctrl)
	return
}

// Deselect releases both chip-selects.
func (drv *Driver) Deselect() {
	drv.csctrl = 0
	drv.write(spi.REG_CSCTRL, drv.csctrl)
}

// Interrupts returns the pending interrupt conditions, as status bits
// masked by the enabled sources.
func (drv *Driver) Interrupts() (pending uint32) {
	cr2 := drv.read(spi.REG_CR2)
	sr := drv.read(spi.REG_SR)

	if (cr2 & spi.CR2_TXEIE) != 0 {
		pending |= sr & spi.SR_TXE
	}
	if (cr2 & spi.CR2_RXNEIE) != 0 {
		pending |= sr & spi.SR_RXNE
	}
	if (cr2 & spi.CR2_ERRIE) != 0 {
		pending |= sr & spi.SR_ERROR_MASK
	}
	return
}

func (drv *Driver) wait(bit uint32) (sr uint32, err error) {
	limit := drv.PollLimit
	if limit == 0 {
		limit = DEFAULT_POLL_LIMIT
	}

	for range limit {
		sr = drv.read(spi.REG_SR)
		if (sr & bit) != 0 {
			return
		}
	}

	err = &ErrTimeout{Status: sr, Wait: bit}
	return
}

// Transfer clocks one byte out and returns the byte clocked in.
func (drv *Driver) Transfer(b byte) (rx byte, err error) {
	_, err = drv.wait(spi.SR_TXE)
	if err != nil {
		return
	}

	drv.write(spi.REG_DR, uint32(b))

	sr, err := drv.wait(spi.SR_RXNE)
	if err != nil {
		return
	}

	rx = byte(drv.read(spi.REG_DR))

	if (sr & spi.SR_OVR) != 0 {
		err = ErrOverrun
	}

	if drv.Verbose {
		log.Printf("driver: 0x%02x -> 0x%02x", b, rx)
	}

	return
}

// Tx clocks out w while reading into r. Either may be nil; when both are
// given they must be the same length.
func (drv *Driver) Tx(w, r []byte) (err error) {
	count := len(w)
	if w == nil {
		count = len(r)
	} else if r != nil && len(r) != len(w) {
		err = ErrLength
		return
	}

	for n := range count {
		var tx byte
		if w != nil {
			tx = w[n]
		}
		var rx byte
		rx, err = drv.Transfer(tx)
		if err != nil {
			return
		}
		if r != nil {
			r[n] = rx
		}
	}

	return
}

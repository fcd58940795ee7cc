// Package ssi provides the synchronous serial bus that the SPI controller
// drives: the in-process device bus with its attached flash devices, and
// backends that forward exchanges to real hardware.
package ssi

import (
	"log"

	"github.com/ezrec/g233spi/spi"
)

const (
	CS_COUNT = 2 // Chip-select wires on the bus.
)

// Peripheral is a device attached to the bus behind a chip-select.
type Peripheral interface {
	// Select is called when the chip-select wire changes.
	Select(selected bool)
	// Transfer exchanges a byte while selected.
	Transfer(tx byte) (rx byte)
}

// Bus connects up to CS_COUNT peripherals. MISO is a wired-OR of every
// selected peripheral; nothing selected reads as zero.
type Bus struct {
	Verbose bool

	devices [CS_COUNT]Peripheral
	wires   [CS_COUNT]*wire
}

var _ spi.Bus = (*Bus)(nil)

// wire is an active-low chip-select input.
type wire struct {
	bus      *Bus
	index    int
	selected bool
}

func (w *wire) SetLevel(high bool) {
	selected := !high
	if selected == w.selected {
		return
	}
	w.selected = selected

	if w.bus.Verbose {
		log.Printf("ssi: cs%d %v", w.index, selectName(selected))
	}

	dev := w.bus.devices[w.index]
	if dev != nil {
		dev.Select(selected)
	}
}

func selectName(selected bool) string {
	if selected {
		return "select"
	}
	return "deselect"
}

// NewBus creates an empty bus with every chip-select deasserted.
func NewBus() (bus *Bus) {
	bus = &Bus{}
	for n := range bus.wires {
		bus.wires[n] = &wire{bus: bus, index: n}
	}
	return
}

// Attach places a peripheral behind chip-select cs.
func (bus *Bus) Attach(cs int, dev Peripheral) (err error) {
	if cs < 0 || cs >= CS_COUNT {
		err = &ErrChipSelect{CS: cs, Err: ErrChipSelectInvalid}
		return
	}
	if bus.devices[cs] != nil {
		err = &ErrChipSelect{CS: cs, Err: ErrChipSelectBusy}
		return
	}

	bus.devices[cs] = dev
	if bus.wires[cs].selected {
		dev.Select(true)
	}

	return
}

// Device returns the peripheral behind chip-select cs, if any.
func (bus *Bus) Device(cs int) (dev Peripheral) {
	if cs >= 0 && cs < CS_COUNT {
		dev = bus.devices[cs]
	}
	return
}

// CS returns the chip-select input wire for index cs.
func (bus *Bus) CS(cs int) spi.Line {
	return bus.wires[cs]
}

// Selected reports whether chip-select cs is asserted.
func (bus *Bus) Selected(cs int) bool {
	return bus.wires[cs].selected
}

// Exchange clocks a byte to every selected peripheral.
func (bus *Bus) Exchange(tx byte) (rx byte) {
	for n, dev := range bus.devices {
		if dev == nil || !bus.wires[n].selected {
			continue
		}
		rx |= dev.Transfer(tx)
	}

	if bus.Verbose {
		log.Printf("ssi: 0x%02x -> 0x%02x", tx, rx)
	}

	return
}

// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/g233spi/gpio"
	"github.com/ezrec/g233spi/internal"
	"github.com/ezrec/g233spi/spi"
	"github.com/ezrec/g233spi/ssi"
)

const (
	SPI_BASE = 0x1001_8000 // Default controller window.
)

// Emulator state. SPI controller + bus + lines, behind an MMIO window.
type Emulator struct {
	Verbose bool   // If set, enables verbose logging.
	Base    uint64 // Address of the controller window.

	*spi.Controller // Reference to the controller model.

	Bus     spi.Bus                  // Bus the controller exchanges on.
	Devices *ssi.Bus                 // In-process device bus, nil with an external bus.
	Flash   [ssi.CS_COUNT]*ssi.Flash // Flashes on the in-process bus.
	CS      [ssi.CS_COUNT]*gpio.Line // Chip-select outputs.
	IRQ     *gpio.Line               // Interrupt output.

	csWires [ssi.CS_COUNT]spi.Line
}

// NewEmulator creates an emulator with a W25Q16 on CS0 and a W25Q32 on
// CS1.
func NewEmulator() (emu *Emulator) {
	devices := ssi.NewBus()

	emu = newEmulator(devices, devices.CS(0), devices.CS(1))
	emu.Devices = devices

	for n, jedec := range []uint32{ssi.JEDEC_W25Q16, ssi.JEDEC_W25Q32} {
		flash, err := ssi.NewFlash(fmt.Sprintf("flash%d", n), jedec, ssi.FlashSize(jedec))
		if err != nil {
			panic(err)
		}
		emu.Flash[n] = flash
		if err := devices.Attach(n, flash); err != nil {
			panic(err)
		}
	}

	return
}

// NewEmulatorWithBus creates an emulator whose controller drives an
// external bus. The chip-select wires are forwarded to the bus.
func NewEmulatorWithBus(bus spi.Bus, cs ...spi.Line) (emu *Emulator) {
	return newEmulator(bus, cs...)
}

func newEmulator(bus spi.Bus, cs ...spi.Line) (emu *Emulator) {
	emu = &Emulator{
		Base: SPI_BASE,
		Bus:  bus,
		IRQ:  gpio.NewLine("irq", false),
	}

	for n := range emu.CS {
		emu.CS[n] = gpio.NewLine(fmt.Sprintf("cs%d", n), true)
		if n < len(cs) {
			emu.csWires[n] = cs[n]
		}
		wire := emu.csWires[n]
		emu.CS[n].Notify = func(high bool) {
			if wire != nil {
				wire.SetLevel(high)
			}
		}
	}

	emu.Controller = spi.NewController(bus, emu.CS[0], emu.CS[1], emu.IRQ)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	seqs := []iter.Seq2[string, string]{
		maps.All(map[string]string{
			"SPI_BASE":    fmt.Sprintf("0x%x", emu.Base),
			"SPI_SIZE":    fmt.Sprintf("0x%x", spi.REGION_SIZE),
			"ACCESS_SIZE": fmt.Sprintf("%d", spi.ACCESS_SIZE),
		}),
		spi.Defines(),
	}
	if emu.Flash[0] != nil {
		seqs = append(seqs, emu.Flash[0].Defines())
	}
	return internal.Concat(seqs...)
}

// SetVerbose sets the verbosity of the emulator and every model in it.
func (emu *Emulator) SetVerbose(verbose bool) {
	emu.Verbose = verbose
	emu.Controller.Verbose = verbose
	emu.IRQ.Verbose = verbose
	for _, line := range emu.CS {
		line.Verbose = verbose
	}
	if emu.Devices != nil {
		emu.Devices.Verbose = verbose
	}
	for _, flash := range emu.Flash {
		if flash != nil {
			flash.Verbose = verbose
		}
	}
}

// Reset the system: the controller, the attached flashes, and the line
// histories.
func (emu *Emulator) Reset() {
	if emu.Verbose {
		log.Printf("emulator: reset")
	}

	for _, flash := range emu.Flash {
		if flash != nil {
			flash.Reset()
		}
	}

	emu.Controller.Reset()

	emu.IRQ.Reset()
	for _, line := range emu.CS {
		line.Reset()
	}
}

// decode checks an access against the controller window.
func (emu *Emulator) decode(op string, addr uint64, size uint) (offset uint64, err error) {
	if addr < emu.Base || addr >= emu.Base+spi.REGION_SIZE {
		err = &ErrAccess{Op: op, Addr: addr, Size: size, Err: ErrUnmapped}
		return
	}

	offset = addr - emu.Base
	if size != spi.ACCESS_SIZE || (offset%spi.ACCESS_SIZE) != 0 {
		err = &ErrAccess{Op: op, Addr: addr, Size: size, Err: ErrAccessSize}
		return
	}

	return
}

// Load performs a sized guest read. Rejected accesses read as zero.
func (emu *Emulator) Load(addr uint64, size uint) (value uint64, err error) {
	offset, err := emu.decode("read", addr, size)
	if err != nil {
		log.Printf("emulator: %v", err)
		return
	}

	value = emu.Controller.Read(offset, size)
	return
}

// Store performs a sized guest write. Rejected accesses are dropped.
func (emu *Emulator) Store(addr uint64, value uint64, size uint) (err error) {
	offset, err := emu.decode("write", addr, size)
	if err != nil {
		log.Printf("emulator: %v", err)
		return
	}

	emu.Controller.Write(offset, value, size)
	return
}

// Read32 is a word guest read.
func (emu *Emulator) Read32(addr uint64) uint32 {
	value, _ := emu.Load(addr, spi.ACCESS_SIZE)
	return uint32(value)
}

// Write32 is a word guest write.
func (emu *Emulator) Write32(addr uint64, value uint32) {
	emu.Store(addr, uint64(value), spi.ACCESS_SIZE)
}

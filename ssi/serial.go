package ssi

import (
	"io"
	"log"
	"time"

	"github.com/tarm/serial"

	"github.com/ezrec/g233spi/spi"
)

// Serial bridge opcodes. Every request is two bytes, [op][arg], and is
// answered with exactly one byte.
const (
	BRIDGE_OP_XFER   = 'x' // arg is clocked out, reply is the byte clocked in.
	BRIDGE_OP_SELECT = 's' // arg is the asserted chip-select mask, reply echoes it.
)

// SerialConfig describes the serial port of an SPI bridge.
type SerialConfig struct {
	Device      string // Device path (e.g., "/dev/ttyACM0", "COM3")
	Baud        int
	ReadTimeout int // Milliseconds, 0 blocks.
}

// DefaultSerialConfig returns the bridge defaults for a device.
func DefaultSerialConfig(device string) *SerialConfig {
	return &SerialConfig{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// SerialBus forwards exchanges to a microcontroller that owns the real
// SPI bus, over a serial link.
type SerialBus struct {
	Verbose bool

	name  string
	port  io.ReadWriteCloser
	mask  byte
	wires [CS_COUNT]*serialWire
}

var _ spi.Bus = (*SerialBus)(nil)

type serialWire struct {
	bus   *SerialBus
	index int
}

func (w *serialWire) SetLevel(high bool) {
	mask := w.bus.mask
	if high {
		mask &^= 1 << w.index
	} else {
		mask |= 1 << w.index
	}
	if mask == w.bus.mask {
		return
	}
	w.bus.mask = mask

	reply, err := w.bus.request(BRIDGE_OP_SELECT, mask)
	if err == nil && reply != mask {
		err = ErrBridge
	}
	if err != nil {
		log.Printf("ssi: %v", &ErrDevice{Device: w.bus.name, Err: err})
	}
}

// OpenSerial opens the serial port of a bridge.
func OpenSerial(cfg *SerialConfig) (bus *SerialBus, err error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		err = &ErrDevice{Device: cfg.Device, Err: err}
		return
	}

	bus = NewSerialBus(cfg.Device, port)
	return
}

// NewSerialBus creates a bridge bus on an already open stream.
func NewSerialBus(name string, port io.ReadWriteCloser) (bus *SerialBus) {
	bus = &SerialBus{
		name: name,
		port: port,
	}
	for n := range bus.wires {
		bus.wires[n] = &serialWire{bus: bus, index: n}
	}
	return
}

// CS returns the chip-select wire for index cs.
func (bus *SerialBus) CS(cs int) spi.Line {
	return bus.wires[cs]
}

func (bus *SerialBus) request(op byte, arg byte) (reply byte, err error) {
	_, err = bus.port.Write([]byte{op, arg})
	if err != nil {
		return
	}

	var one [1]byte
	n, err := io.ReadFull(bus.port, one[:])
	if err != nil {
		return
	}
	if n != 1 {
		err = ErrShortExchange
		return
	}

	reply = one[0]
	return
}

// Exchange clocks one byte through the bridge. Link failures read back as
// an idle bus (0xff).
func (bus *SerialBus) Exchange(tx byte) (rx byte) {
	rx, err := bus.request(BRIDGE_OP_XFER, tx)
	if err != nil {
		log.Printf("ssi: %v", &ErrDevice{Device: bus.name, Err: err})
		rx = 0xff
		return
	}

	if bus.Verbose {
		log.Printf("ssi: %v: 0x%02x -> 0x%02x", bus.name, tx, rx)
	}

	return
}

// Close releases the serial port.
func (bus *SerialBus) Close() (err error) {
	if bus.port != nil {
		err = bus.port.Close()
	}
	return
}

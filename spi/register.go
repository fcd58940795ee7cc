package spi

import (
	"fmt"
	"iter"
	"maps"
)

// Register is the offset of a controller register within the MMIO window.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_CR1    = Register(0x00) // cr1
	REG_CR2    = Register(0x04) // cr2
	REG_SR     = Register(0x08) // sr
	REG_DR     = Register(0x0c) // dr
	REG_CSCTRL = Register(0x10) // csctrl
)

const (
	REGION_SIZE = 0x1000 // Size of the MMIO window.
	ACCESS_SIZE = 4      // Only word accesses are decoded.
)

// Control register 1 bits.
const (
	CR1_MSTR = uint32(1 << 2) // Master mode.
	CR1_SPE  = uint32(1 << 6) // SPI enable.
)

// Control register 2 bits (interrupt enables).
const (
	CR2_ERRIE  = uint32(1 << 5) // Error interrupt enable.
	CR2_RXNEIE = uint32(1 << 6) // Receive-not-empty interrupt enable.
	CR2_TXEIE  = uint32(1 << 7) // Transmit-empty interrupt enable.
)

// Status register bits.
const (
	SR_RXNE = uint32(1 << 0) // Receive not empty.
	SR_TXE  = uint32(1 << 1) // Transmit empty.
	SR_UDR  = uint32(1 << 2) // Underrun.
	SR_OVR  = uint32(1 << 3) // Overrun.
	SR_BSY  = uint32(1 << 7) // Busy.

	SR_ERROR_MASK = SR_UDR | SR_OVR
	SR_MASK       = SR_RXNE | SR_TXE | SR_UDR | SR_OVR | SR_BSY
)

// Chip-select control register bits.
const (
	CS0_ENABLE = uint32(1 << 0)
	CS1_ENABLE = uint32(1 << 1)
	CS0_ACTIVE = uint32(1 << 4)
	CS1_ACTIVE = uint32(1 << 5)
)

// Output line indexes.
const (
	LINE_CS0 = 0
	LINE_CS1 = 1
	LINE_IRQ = 2

	LINE_COUNT = 3
)

var _spi_defines = map[string]string{
	"REG_CR1":    fmt.Sprintf("0x%02x", int(REG_CR1)),
	"REG_CR2":    fmt.Sprintf("0x%02x", int(REG_CR2)),
	"REG_SR":     fmt.Sprintf("0x%02x", int(REG_SR)),
	"REG_DR":     fmt.Sprintf("0x%02x", int(REG_DR)),
	"REG_CSCTRL": fmt.Sprintf("0x%02x", int(REG_CSCTRL)),

	"CR1_MSTR": fmt.Sprintf("0x%02x", CR1_MSTR),
	"CR1_SPE":  fmt.Sprintf("0x%02x", CR1_SPE),

	"CR2_ERRIE":  fmt.Sprintf("0x%02x", CR2_ERRIE),
	"CR2_RXNEIE": fmt.Sprintf("0x%02x", CR2_RXNEIE),
	"CR2_TXEIE":  fmt.Sprintf("0x%02x", CR2_TXEIE),

	"SR_RXNE": fmt.Sprintf("0x%02x", SR_RXNE),
	"SR_TXE":  fmt.Sprintf("0x%02x", SR_TXE),
	"SR_UDR":  fmt.Sprintf("0x%02x", SR_UDR),
	"SR_OVR":  fmt.Sprintf("0x%02x", SR_OVR),
	"SR_BSY":  fmt.Sprintf("0x%02x", SR_BSY),

	"CS0_ENABLE": fmt.Sprintf("0x%02x", CS0_ENABLE),
	"CS1_ENABLE": fmt.Sprintf("0x%02x", CS1_ENABLE),
	"CS0_ACTIVE": fmt.Sprintf("0x%02x", CS0_ACTIVE),
	"CS1_ACTIVE": fmt.Sprintf("0x%02x", CS1_ACTIVE),
}

// Defines returns an iterator over the register and bit names.
func Defines() iter.Seq2[string, string] {
	return maps.All(_spi_defines)
}

// Registers returns all of the decoded registers, in offset order.
func Registers() []Register {
	return []Register{REG_CR1, REG_CR2, REG_SR, REG_DR, REG_CSCTRL}
}

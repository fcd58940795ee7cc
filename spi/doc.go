// Package spi implements the register model of the G233 SPI controller.
//
// The controller is a single-master, byte-wide SPI block with five 32-bit
// registers: two control registers, a status register, a data register and
// a chip-select control register. A write to the data register loads the
// transmit byte and, when the controller is enabled in master mode with
// exactly one chip-select asserted, performs a blocking exchange with the
// attached bus.
//
// Three outputs are derived from the register state after every mutation
// that can affect them: two active-low chip-select lines and one
// active-high interrupt line.
package spi

//go:build !linux

package ssi

import (
	"github.com/ezrec/g233spi/spi"
)

// Spidev is only available on Linux.
type Spidev struct {
	Verbose bool
}

var _ spi.Bus = (*Spidev)(nil)

// OpenSpidev always fails off Linux.
func OpenSpidev(path string, speedHz uint32) (dev *Spidev, err error) {
	err = &ErrDevice{Device: path, Err: ErrUnsupported}
	return
}

func (dev *Spidev) CS() spi.Line {
	return nil
}

func (dev *Spidev) Exchange(tx byte) (rx byte) {
	return 0xff
}

func (dev *Spidev) Close() (err error) {
	return
}

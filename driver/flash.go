package driver

import (
	"tinygo.org/x/drivers"
)

// SPI NOR command bytes used by the helpers.
const (
	cmdReadID = 0x9f
	cmdRead   = 0x03
)

// ReadJEDEC returns the 24-bit JEDEC identification of the selected flash.
// A bus with nothing on it reads all zeros or all ones, which is reported
// as ErrNoFlash.
func ReadJEDEC(bus drivers.SPI) (id uint32, err error) {
	var rx [4]byte
	err = bus.Tx([]byte{cmdReadID, 0, 0, 0}, rx[:])
	if err != nil {
		return
	}

	id = uint32(rx[1])<<16 | uint32(rx[2])<<8 | uint32(rx[3])
	if id == 0 || id == 0xffffff {
		err = ErrNoFlash
	}

	return
}

// ReadFlash reads len(buf) bytes of the selected flash from addr.
func ReadFlash(bus drivers.SPI, addr uint32, buf []byte) (err error) {
	err = bus.Tx([]byte{cmdRead, byte(addr >> 16), byte(addr >> 8), byte(addr)}, nil)
	if err != nil {
		return
	}

	return bus.Tx(nil, buf)
}

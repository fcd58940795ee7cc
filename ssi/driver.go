package ssi

import (
	"log"

	"tinygo.org/x/drivers"

	"github.com/ezrec/g233spi/spi"
)

// DriverBus adapts a TinyGo drivers.SPI bus, so the controller can be
// attached to anything that implements it.
type DriverBus struct {
	Name string
	SPI  drivers.SPI
}

var _ spi.Bus = (*DriverBus)(nil)

// Exchange clocks one byte. Failures read back as an idle bus (0xff).
func (db *DriverBus) Exchange(tx byte) (rx byte) {
	rx, err := db.SPI.Transfer(tx)
	if err != nil {
		log.Printf("ssi: %v", &ErrDevice{Device: db.Name, Err: err})
		rx = 0xff
	}
	return
}

package driver

import (
	"errors"

	"github.com/ezrec/g233spi/translate"
)

var f = translate.From

var (
	ErrOverrun = errors.New(f("receive overrun"))
	ErrLength  = errors.New(f("transmit and receive length differ"))
	ErrNoFlash = errors.New(f("no flash responding"))
)

// ErrChipSelect is returned when selecting a chip-select the controller
// does not have.
type ErrChipSelect struct {
	CS int
}

func (err *ErrChipSelect) Error() string {
	return f("chip-select %d invalid", err.CS)
}

// ErrTimeout is returned when a status bit never sets.
type ErrTimeout struct {
	Status uint32 // Last status seen.
	Wait   uint32 // Bit waited for.
}

func (err *ErrTimeout) Error() string {
	return f("timeout waiting for sr 0x%02x, last 0x%02x", err.Wait, err.Status)
}

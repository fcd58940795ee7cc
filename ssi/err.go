package ssi

import (
	"errors"

	"github.com/ezrec/g233spi/translate"
)

var f = translate.From

var (
	// Bus errors
	ErrChipSelectInvalid = errors.New(f("chip-select invalid"))
	ErrChipSelectBusy    = errors.New(f("chip-select in use"))

	// Flash errors
	ErrFlashSize  = errors.New(f("flash size invalid"))
	ErrFlashImage = errors.New(f("flash image too large"))

	// Backend errors
	ErrShortExchange = errors.New(f("short exchange"))
	ErrBridge        = errors.New(f("bridge protocol"))
	ErrUnsupported   = errors.New(f("not supported on this platform"))
)

// ErrChipSelect reports the chip-select an attach failed on.
type ErrChipSelect struct {
	CS  int
	Err error
}

func (err *ErrChipSelect) Error() string {
	return f("cs%d: %v", err.CS, err.Err)
}

func (err *ErrChipSelect) Unwrap() error {
	return err.Err
}

// ErrDevice reports a hardware backend failure.
type ErrDevice struct {
	Device string
	Err    error
}

func (err *ErrDevice) Error() string {
	return f("%v: %v", err.Device, err.Err)
}

func (err *ErrDevice) Unwrap() error {
	return err.Err
}

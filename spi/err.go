package spi

import (
	"errors"

	"github.com/ezrec/g233spi/translate"
)

var f = translate.From

var (
	// Guest access errors
	ErrInvalidAddress = errors.New(f("invalid address"))

	// Snapshot errors
	ErrStateVersion = errors.New(f("state version unsupported"))
	ErrStateField   = errors.New(f("state field out of range"))
)

// ErrAddress reports a guest access to an offset outside the register map.
type ErrAddress struct {
	Op     string // "read" or "write"
	Offset uint64
	Value  uint64
}

func (err *ErrAddress) Error() string {
	if err.Op == "write" {
		return f("bad %v offset 0x%x val=0x%x", err.Op, err.Offset, err.Value)
	}
	return f("bad %v offset 0x%x", err.Op, err.Offset)
}

func (err *ErrAddress) Unwrap() error {
	return ErrInvalidAddress
}

// ErrState reports which snapshot field could not be restored.
type ErrState struct {
	Field string
	Err   error
}

func (err *ErrState) Error() string {
	return f("state %v: %v", err.Field, err.Err)
}

func (err *ErrState) Unwrap() error {
	return err.Err
}

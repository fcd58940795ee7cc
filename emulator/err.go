package emulator

import (
	"errors"

	"github.com/ezrec/g233spi/translate"
)

var f = translate.From

var (
	// Bus access errors
	ErrUnmapped   = errors.New(f("unmapped address"))
	ErrAccessSize = errors.New(f("unsupported access size"))

	// Snapshot errors
	ErrSnapshotDevice = errors.New(f("snapshot is for another device"))
	ErrSnapshotKeys   = errors.New(f("snapshot has unknown keys"))
	ErrSnapshotBase   = errors.New(f("snapshot base is not window aligned"))

	// Script errors
	ErrScriptArgument = errors.New(f("bad argument"))
)

// ErrAccess reports a rejected guest access.
type ErrAccess struct {
	Op   string
	Addr uint64
	Size uint
	Err  error
}

func (err *ErrAccess) Error() string {
	return f("%v 0x%x/%v: %v", err.Op, err.Addr, err.Size, err.Err)
}

func (err *ErrAccess) Unwrap() error {
	return err.Err
}

// ErrRuntime indicates the location of a script runtime error.
type ErrRuntime struct {
	Script string
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("%v:%v %v", err.Script, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrSnapshot reports a snapshot that cannot be loaded.
type ErrSnapshot struct {
	Err    error
	Detail string
}

func (err *ErrSnapshot) Error() string {
	return f("snapshot: %v: %v", err.Err, err.Detail)
}

func (err *ErrSnapshot) Unwrap() error {
	return err.Err
}

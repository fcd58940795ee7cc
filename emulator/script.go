package emulator

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/g233spi/spi"
)

// Script is a guest driver program, written in Starlark, run against the
// emulator's MMIO window.
type Script struct {
	Name   string    // Script name for error messages.
	Source any       // Source text: string, []byte or io.Reader.
	Output io.Writer // Destination of print(), discarded if nil.
}

// Predeclared returns the script environment: every define as an int,
// plus the bus builtins.
func (emu *Emulator) Predeclared() (pred starlark.StringDict) {
	pred = starlark.StringDict{}

	for key, str := range emu.Defines() {
		value, err := strconv.ParseInt(str, 0, 64)
		if err != nil {
			// Ignore non-integer defines.
			continue
		}
		pred[key] = starlark.MakeInt64(value)
	}

	builtins := []*starlark.Builtin{
		starlark.NewBuiltin("read", emu.builtinRead),
		starlark.NewBuiltin("write", emu.builtinWrite),
		starlark.NewBuiltin("load", emu.builtinLoad),
		starlark.NewBuiltin("store", emu.builtinStore),
		starlark.NewBuiltin("irq", emu.builtinIrq),
		starlark.NewBuiltin("cs", emu.builtinCs),
		starlark.NewBuiltin("reset", emu.builtinReset),
		starlark.NewBuiltin("log", emu.builtinLog),
	}
	for _, builtin := range builtins {
		pred[builtin.Name()] = builtin
	}

	return
}

// Run executes a script, returning its globals.
func (emu *Emulator) Run(script *Script) (globals starlark.StringDict, err error) {
	output := script.Output
	if output == nil {
		output = io.Discard
	}

	thread := &starlark.Thread{
		Name: script.Name,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(output, msg)
		},
	}
	opts := syntax.FileOptions{
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
	}

	if emu.Verbose {
		log.Printf("emulator: run %v", script.Name)
	}

	globals, err = starlark.ExecFileOptions(&opts, thread, script.Name, script.Source, emu.Predeclared())
	if err != nil {
		err = &ErrRuntime{Script: script.Name, LineNo: scriptLine(err), Err: err}
	}

	return
}

// scriptLine finds the innermost script line of an error.
func scriptLine(err error) int {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		for n := len(evalErr.CallStack) - 1; n >= 0; n-- {
			if line := evalErr.CallStack[n].Pos.Line; line > 0 {
				return int(line)
			}
		}
	}

	var syntaxErr syntax.Error
	if errors.As(err, &syntaxErr) {
		return int(syntaxErr.Pos.Line)
	}

	return 0
}

func asUint64(fn string, name string, value starlark.Int) (out uint64, err error) {
	out, ok := value.Uint64()
	if !ok {
		err = fmt.Errorf("%v: %v: %w", fn, name, ErrScriptArgument)
	}
	return
}

// asUint32 accepts only values that fit a register.
func asUint32(fn string, name string, value starlark.Int) (out uint32, err error) {
	wide, err := asUint64(fn, name, value)
	if err != nil {
		return
	}
	if wide > math.MaxUint32 {
		err = fmt.Errorf("%v: %v: %w", fn, name, ErrScriptArgument)
		return
	}
	out = uint32(wide)
	return
}

func (emu *Emulator) builtinRead(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addrV starlark.Int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "addr", &addrV); err != nil {
		return nil, err
	}
	addr, err := asUint64(b.Name(), "addr", addrV)
	if err != nil {
		return nil, err
	}

	return starlark.MakeUint64(uint64(emu.Read32(addr))), nil
}

func (emu *Emulator) builtinWrite(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addrV, valueV starlark.Int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "addr", &addrV, "value", &valueV); err != nil {
		return nil, err
	}
	addr, err := asUint64(b.Name(), "addr", addrV)
	if err != nil {
		return nil, err
	}
	value, err := asUint32(b.Name(), "value", valueV)
	if err != nil {
		return nil, err
	}

	emu.Write32(addr, value)
	return starlark.None, nil
}

// load(addr, size=4) returns None when the access is rejected.
func (emu *Emulator) builtinLoad(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addrV starlark.Int
	size := spi.ACCESS_SIZE
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "addr", &addrV, "size?", &size); err != nil {
		return nil, err
	}
	addr, err := asUint64(b.Name(), "addr", addrV)
	if err != nil {
		return nil, err
	}

	value, err := emu.Load(addr, uint(size))
	if err != nil {
		return starlark.None, nil
	}
	return starlark.MakeUint64(value), nil
}

// store(addr, value, size=4) returns False when the access is rejected.
func (emu *Emulator) builtinStore(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addrV, valueV starlark.Int
	size := spi.ACCESS_SIZE
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "addr", &addrV, "value", &valueV, "size?", &size); err != nil {
		return nil, err
	}
	addr, err := asUint64(b.Name(), "addr", addrV)
	if err != nil {
		return nil, err
	}
	value, err := asUint32(b.Name(), "value", valueV)
	if err != nil {
		return nil, err
	}

	err = emu.Store(addr, uint64(value), uint(size))
	return starlark.Bool(err == nil), nil
}

func (emu *Emulator) builtinIrq(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	return starlark.Bool(emu.IRQ.Asserted()), nil
}

func (emu *Emulator) builtinCs(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var index int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n", &index); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(emu.CS) {
		return nil, fmt.Errorf("%v: n: %w", b.Name(), ErrScriptArgument)
	}
	return starlark.Bool(emu.CS[index].Asserted()), nil
}

func (emu *Emulator) builtinReset(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	emu.Reset()
	return starlark.None, nil
}

func (emu *Emulator) builtinLog(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var msg string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "msg", &msg); err != nil {
		return nil, err
	}
	log.Printf("%v: %v", thread.Name, msg)
	return starlark.None, nil
}

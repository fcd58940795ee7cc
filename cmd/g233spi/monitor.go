package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/ezrec/g233spi/driver"
	"github.com/ezrec/g233spi/emulator"
	"github.com/ezrec/g233spi/spi"
)

func init() {
	rootCmd.AddCommand(monitorCmd)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poke at the controller interactively",
	Long:  `Read commands from standard input and apply them to the controller window.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		h, err := openHost(cmd)
		if err != nil {
			return
		}
		defer h.Close()

		mon := &monitor{Emulator: h.Emulator, Out: cmd.OutOrStdout(), Prompt: "> "}
		return mon.Loop(cmd.InOrStdin())
	},
}

var monitorHelp = `commands:
  r <reg|addr>            read a word
  w <reg|addr> <value>    write a word
  status                  show every register and output line
  reset                   reset the controller and the bus
  jedec                   probe the flash JEDEC IDs, leaves the controller disabled
  save <file>             save a controller snapshot
  load <file>             restore a controller snapshot
  run <file>              run a guest script
  quit
`

// monitor applies command lines to an emulator.
type monitor struct {
	*emulator.Emulator

	Out    io.Writer
	Prompt string
}

// Loop executes lines until quit or end of input.
func (mon *monitor) Loop(in io.Reader) (err error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(mon.Out, mon.Prompt)
		if !scanner.Scan() {
			break
		}
		quit, err := mon.Exec(scanner.Text())
		if err != nil {
			fmt.Fprintf(mon.Out, "error: %v\n", err)
		}
		if quit {
			break
		}
	}

	err = scanner.Err()
	return
}

// Exec executes a single command line.
func (mon *monitor) Exec(line string) (quit bool, err error) {
	words, err := shlex.Split(line)
	if err != nil || len(words) == 0 {
		return
	}

	cmd, args := words[0], words[1:]
	want := func(count int) bool {
		if len(args) != count {
			err = fmt.Errorf("%v: %w", cmd, errUsage)
			return false
		}
		return true
	}

	switch cmd {
	case "q", "quit", "exit":
		quit = true
	case "h", "help", "?":
		fmt.Fprint(mon.Out, monitorHelp)
	case "r", "read":
		if !want(1) {
			return
		}
		var addr uint64
		addr, err = mon.register(args[0])
		if err != nil {
			return
		}
		var value uint64
		value, err = mon.Load(addr, spi.ACCESS_SIZE)
		if err != nil {
			return
		}
		fmt.Fprintf(mon.Out, "0x%08x: 0x%08x\n", addr, value)
	case "w", "write":
		if !want(2) {
			return
		}
		var addr, value uint64
		addr, err = mon.register(args[0])
		if err != nil {
			return
		}
		value, err = strconv.ParseUint(args[1], 0, 32)
		if err != nil {
			return
		}
		err = mon.Store(addr, value, spi.ACCESS_SIZE)
	case "status":
		if !want(0) {
			return
		}
		mon.status()
	case "reset":
		if !want(0) {
			return
		}
		mon.Reset()
	case "jedec":
		if !want(0) {
			return
		}
		err = probe(driver.New(mon.Emulator, mon.Base), []int{0, 1}, mon.Out)
	case "save":
		if !want(1) {
			return
		}
		err = saveSnapshot(mon.Emulator, args[0])
	case "load":
		if !want(1) {
			return
		}
		err = loadSnapshot(mon.Emulator, args[0])
	case "run":
		if !want(1) {
			return
		}
		err = mon.run(args[0])
	default:
		err = fmt.Errorf("%v: %w", cmd, errCommand)
	}

	return
}

func (mon *monitor) register(arg string) (addr uint64, err error) {
	for _, reg := range spi.Registers() {
		if strings.EqualFold(arg, reg.String()) {
			addr = mon.Base + uint64(reg)
			return
		}
	}

	addr, err = strconv.ParseUint(arg, 0, 64)
	return
}

func (mon *monitor) status() {
	for _, reg := range spi.Registers() {
		fmt.Fprintf(mon.Out, "%-6v 0x%08x\n", reg, mon.Peek(reg))
	}
	for n, line := range mon.CS {
		fmt.Fprintf(mon.Out, "cs%d    %v\n", n, levelName(line.High()))
	}
	fmt.Fprintf(mon.Out, "irq    %v\n", levelName(mon.IRQ.High()))
}

func levelName(high bool) string {
	if high {
		return "high"
	}
	return "low"
}

func (mon *monitor) run(path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	_, err = mon.Run(&emulator.Script{Name: path, Source: inf, Output: mon.Out})
	return
}

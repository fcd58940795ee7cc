package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/g233spi/emulator"
)

func init() {
	runCmd.Flags().StringVarP(&runOpts.Load, "load", "l", "", "restore a controller snapshot before running")
	runCmd.Flags().StringVarP(&runOpts.Save, "save", "s", "", "save a controller snapshot after running")
	rootCmd.AddCommand(runCmd)
}

var (
	runCmd = &cobra.Command{
		Use:   "run [flags] <script.star>",
		Short: "Run a guest script",
		Long: `Run a Starlark guest script against the controller window.

The script sees read(addr), write(addr, value), load(addr, size), store(addr, value, size),
irq(), cs(n), reset() and log(msg), and every register and bit name as an int.`,
		Args:                  cobra.ExactArgs(1),
		RunE:                  run,
		DisableFlagsInUseLine: true,
	}
	runOpts = struct {
		Load string
		Save string
	}{}
)

func run(cmd *cobra.Command, args []string) (err error) {
	h, err := openHost(cmd)
	if err != nil {
		return
	}
	defer h.Close()

	if runOpts.Load != "" {
		err = loadSnapshot(h.Emulator, runOpts.Load)
		if err != nil {
			return
		}
	}

	inf, err := os.Open(args[0])
	if err != nil {
		return
	}
	defer inf.Close()

	_, err = h.Run(&emulator.Script{
		Name:   args[0],
		Source: inf,
		Output: cmd.OutOrStdout(),
	})
	if err != nil {
		return
	}

	if runOpts.Save != "" {
		err = saveSnapshot(h.Emulator, runOpts.Save)
	}

	return
}

func loadSnapshot(emu *emulator.Emulator, path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return emu.LoadState(inf)
}

func saveSnapshot(emu *emulator.Emulator, path string) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}

	err = emu.SaveState(ouf)
	if cerr := ouf.Close(); err == nil {
		err = cerr
	}
	return
}

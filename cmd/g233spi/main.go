// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// A host for the G233 SPI controller model.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "g233spi",
	Short: "g233spi hosts the G233 SPI controller model",
	Long:  "g233spi runs guest drivers against the G233 SPI controller model, on a model, spidev or serial bridge bus",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var rootOpts = struct {
	ConfigFile string
	Verbose    bool
	Bus        string
	Base       string
	Spidev     string
	Speed      int
	Serial     string
	Baud       int
	Flash      [2]string
}{}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootOpts.ConfigFile, "config", "c", "", "configuration file (json)")
	flags.BoolVarP(&rootOpts.Verbose, "verbose", "v", false, "verbose logging")
	flags.StringVarP(&rootOpts.Bus, "bus", "b", "", "bus backend: model, spidev or serial")
	flags.StringVar(&rootOpts.Base, "base", "", "controller window address")
	flags.StringVar(&rootOpts.Spidev, "spidev", "", "spidev node for the spidev bus")
	flags.IntVar(&rootOpts.Speed, "speed", 0, "spidev clock in Hz")
	flags.StringVar(&rootOpts.Serial, "serial", "", "serial port of the bridge bus")
	flags.IntVar(&rootOpts.Baud, "baud", 0, "serial bridge baud rate")
	flags.StringVar(&rootOpts.Flash[0], "flash0", "", "image file for the cs0 flash of the model bus")
	flags.StringVar(&rootOpts.Flash[1], "flash1", "", "image file for the cs1 flash of the model bus")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func logErr(cmd *cobra.Command, err error) {
	fmt.Fprintf(os.Stderr, "g233spi %s: %s\n", cmd.Name(), err)
}

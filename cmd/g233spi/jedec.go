package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ezrec/g233spi/driver"
	"github.com/ezrec/g233spi/ssi"
)

func init() {
	jedecCmd.Flags().IntSliceVar(&jedecOpts.CS, "cs", []int{0, 1}, "chip-selects to probe")
	rootCmd.AddCommand(jedecCmd)
}

var (
	jedecCmd = &cobra.Command{
		Use:   "jedec [flags]",
		Short: "Read flash JEDEC IDs",
		Long:  `Probe each chip-select with the guest driver and print the JEDEC ID of the flash found there.`,
		Args:  cobra.NoArgs,
		RunE:  jedec,
	}
	jedecOpts = struct {
		CS []int
	}{}
)

func jedec(cmd *cobra.Command, args []string) (err error) {
	h, err := openHost(cmd)
	if err != nil {
		return
	}
	defer h.Close()

	drv := driver.New(h, h.Base)
	drv.Verbose = h.Verbose

	return probe(drv, jedecOpts.CS, cmd.OutOrStdout())
}

// probe prints the JEDEC ID on each chip-select. A missing flash is
// reported, not fatal.
func probe(drv *driver.Driver, css []int, out io.Writer) (err error) {
	drv.Configure(driver.Config{})
	defer drv.Disable()

	for _, cs := range css {
		err = drv.Select(cs)
		if err != nil {
			return
		}

		id, jerr := driver.ReadJEDEC(drv)
		drv.Deselect()

		switch {
		case jerr == nil:
			fmt.Fprintf(out, "cs%d: 0x%06x %s\n", cs, id, partName(id))
		default:
			fmt.Fprintf(out, "cs%d: %v\n", cs, jerr)
		}
	}

	return
}

func partName(id uint32) string {
	switch id {
	case ssi.JEDEC_W25Q16:
		return "W25Q16"
	case ssi.JEDEC_W25Q32:
		return "W25Q32"
	case ssi.JEDEC_W25Q64:
		return "W25Q64"
	}
	return "unknown"
}

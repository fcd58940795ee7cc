package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"golang.org/x/text/language"

	"github.com/ezrec/g233spi/emulator"
	"github.com/ezrec/g233spi/ssi"
	"github.com/ezrec/g233spi/translate"
)

// Backend names for the bus key.
const (
	BUS_MODEL  = "model"
	BUS_SPIDEV = "spidev"
	BUS_SERIAL = "serial"
)

func defaultConfig() map[string]any {
	return map[string]any{
		"verbose": false,
		"locale":  "",
		"bus":     BUS_MODEL,
		"base":    fmt.Sprintf("0x%x", emulator.SPI_BASE),
		"spidev": map[string]any{
			"path":  "/dev/spidev0.0",
			"speed": 1000000,
		},
		"serial": map[string]any{
			"device": "/dev/ttyACM0",
			"baud":   115200,
		},
		"flash": map[string]any{
			"cs0": "",
			"cs1": "",
		},
	}
}

// setKey stores a value under a dotted key in a nested map.
func setKey(m map[string]any, key string, value any) {
	path := strings.Split(key, ".")
	for _, name := range path[:len(path)-1] {
		sub, ok := m[name].(map[string]any)
		if !ok {
			sub = map[string]any{}
			m[name] = sub
		}
		m = sub
	}
	m[path[len(path)-1]] = value
}

// flagOverrides collects the command line flags that were set.
func flagOverrides(cmd *cobra.Command) (overrides map[string]any) {
	overrides = map[string]any{}

	flags := cmd.Flags()
	set := func(flag string, key string, value any) {
		if flags.Changed(flag) {
			setKey(overrides, key, value)
		}
	}

	set("config", "config.file", rootOpts.ConfigFile)
	set("verbose", "verbose", rootOpts.Verbose)
	set("bus", "bus", rootOpts.Bus)
	set("base", "base", rootOpts.Base)
	set("spidev", "spidev.path", rootOpts.Spidev)
	set("speed", "spidev.speed", rootOpts.Speed)
	set("serial", "serial.device", rootOpts.Serial)
	set("baud", "serial.baud", rootOpts.Baud)
	set("flash0", "flash.cs0", rootOpts.Flash[0])
	set("flash1", "flash.cs1", rootOpts.Flash[1])

	return
}

// loadConfig layers the flags over the environment, the config file and
// the defaults.
func loadConfig(overrides map[string]any) *config.Config {
	def := dict.New(dict.WithMap(defaultConfig()))
	cfg := config.New(
		dict.New(dict.WithMap(overrides)),
		env.New(env.WithEnvPrefix("G233SPI_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "g233spi.json", json.NewDecoder()))
	cfg = cfg.GetConfig("", config.WithMust())
	return cfg
}

// host is an emulator and whatever backs its bus.
type host struct {
	*emulator.Emulator

	closer io.Closer
}

func (h *host) Close() (err error) {
	if h.closer != nil {
		err = h.closer.Close()
	}
	return
}

// newHost builds the emulator for the configured bus backend.
func newHost(cfg *config.Config) (h *host, err error) {
	if locale := cfg.MustGet("locale").String(); locale != "" {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, err
		}
		translate.Use(tag)
	}

	base, err := strconv.ParseUint(cfg.MustGet("base").String(), 0, 64)
	if err != nil {
		return
	}

	h = &host{}

	bus := cfg.MustGet("bus").String()
	switch bus {
	case BUS_MODEL:
		h.Emulator = emulator.NewEmulator()
		for n, key := range []string{"flash.cs0", "flash.cs1"} {
			path := cfg.MustGet(key).String()
			if path == "" {
				continue
			}
			err = loadFlash(h.Flash[n], path)
			if err != nil {
				return nil, err
			}
		}
	case BUS_SPIDEV:
		var dev *ssi.Spidev
		dev, err = ssi.OpenSpidev(cfg.MustGet("spidev.path").String(), uint32(cfg.MustGet("spidev.speed").Int()))
		if err != nil {
			return nil, err
		}
		h.closer = dev
		h.Emulator = emulator.NewEmulatorWithBus(dev, dev.CS())
	case BUS_SERIAL:
		serialCfg := ssi.DefaultSerialConfig(cfg.MustGet("serial.device").String())
		serialCfg.Baud = int(cfg.MustGet("serial.baud").Int())
		var bridge *ssi.SerialBus
		bridge, err = ssi.OpenSerial(serialCfg)
		if err != nil {
			return nil, err
		}
		h.closer = bridge
		h.Emulator = emulator.NewEmulatorWithBus(bridge, bridge.CS(0), bridge.CS(1))
	default:
		return nil, fmt.Errorf("bus %q: %w", bus, errBus)
	}

	h.Base = base
	h.SetVerbose(cfg.MustGet("verbose").Bool())

	if h.Verbose {
		log.Printf("g233spi: %v bus, controller at 0x%x", bus, h.Base)
	}

	return
}

func loadFlash(flash *ssi.Flash, path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return flash.Load(inf)
}

// openHost is the common setup of every subcommand.
func openHost(cmd *cobra.Command) (*host, error) {
	return newHost(loadConfig(flagOverrides(cmd)))
}

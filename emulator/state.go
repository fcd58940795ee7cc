package emulator

import (
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/g233spi/spi"
)

const DEVICE_NAME = "g233-spi"

// Snapshot is the on-disk form of the emulator state.
type Snapshot struct {
	Device     string    `toml:"device"`
	Base       uint64    `toml:"base"`
	Controller spi.State `toml:"controller"`
}

// SaveState writes the controller state as TOML.
func (emu *Emulator) SaveState(w io.Writer) (err error) {
	snap := Snapshot{
		Device:     DEVICE_NAME,
		Base:       emu.Base,
		Controller: emu.Controller.Save(),
	}

	err = toml.NewEncoder(w).Encode(snap)
	return
}

// LoadState restores the controller state from TOML. The snapshot is
// fully decoded and checked before anything is changed. A snapshot
// without a base keeps the current window.
func (emu *Emulator) LoadState(r io.Reader) (err error) {
	var snap Snapshot
	meta, err := toml.NewDecoder(r).Decode(&snap)
	if err != nil {
		return
	}

	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for n, key := range undecoded {
			keys[n] = key.String()
		}
		err = &ErrSnapshot{Err: ErrSnapshotKeys, Detail: strings.Join(keys, ", ")}
		return
	}

	if snap.Device != DEVICE_NAME {
		err = &ErrSnapshot{Err: ErrSnapshotDevice, Detail: snap.Device}
		return
	}

	base := emu.Base
	if meta.IsDefined("base") {
		base = snap.Base
		if base%spi.REGION_SIZE != 0 || base > math.MaxUint64-spi.REGION_SIZE {
			err = &ErrSnapshot{Err: ErrSnapshotBase, Detail: fmt.Sprintf("0x%x", base)}
			return
		}
	}

	err = emu.Controller.Restore(snap.Controller)
	if err != nil {
		return
	}

	emu.Base = base

	if emu.Verbose {
		log.Printf("emulator: restored sr=0x%02x", emu.Controller.Status())
	}

	return
}

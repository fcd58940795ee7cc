package ssi

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
)

// SPI NOR flash commands.
const (
	FLASH_CMD_PP   = 0x02 // Page program.
	FLASH_CMD_READ = 0x03 // Read data.
	FLASH_CMD_WRDI = 0x04 // Write disable.
	FLASH_CMD_RDSR = 0x05 // Read status register.
	FLASH_CMD_WREN = 0x06 // Write enable.
	FLASH_CMD_SE   = 0x20 // Sector (4KiB) erase.
	FLASH_CMD_CE   = 0xc7 // Chip erase.
	FLASH_CMD_CE2  = 0x60 // Chip erase (alternate).
	FLASH_CMD_RDID = 0x9f // Read JEDEC identification.
)

// Flash status register bits.
const (
	FLASH_SR_WIP = 1 << 0 // Write in progress (never set, operations are instant).
	FLASH_SR_WEL = 1 << 1 // Write enable latch.
)

const (
	FLASH_PAGE_SIZE   = 256
	FLASH_SECTOR_SIZE = 4096
	FLASH_ADDR_BYTES  = 3
	FLASH_ERASED      = 0xff
)

// Well-known parts.
const (
	JEDEC_W25Q16 = 0xef4015 // Winbond 16Mbit
	JEDEC_W25Q32 = 0xef4016 // Winbond 32Mbit
	JEDEC_W25Q64 = 0xef4017 // Winbond 64Mbit
)

var _flash_defines = map[string]string{
	"FLASH_CMD_PP":   fmt.Sprintf("0x%02x", FLASH_CMD_PP),
	"FLASH_CMD_READ": fmt.Sprintf("0x%02x", FLASH_CMD_READ),
	"FLASH_CMD_WRDI": fmt.Sprintf("0x%02x", FLASH_CMD_WRDI),
	"FLASH_CMD_RDSR": fmt.Sprintf("0x%02x", FLASH_CMD_RDSR),
	"FLASH_CMD_WREN": fmt.Sprintf("0x%02x", FLASH_CMD_WREN),
	"FLASH_CMD_SE":   fmt.Sprintf("0x%02x", FLASH_CMD_SE),
	"FLASH_CMD_CE":   fmt.Sprintf("0x%02x", FLASH_CMD_CE),
	"FLASH_CMD_RDID": fmt.Sprintf("0x%02x", FLASH_CMD_RDID),
	"FLASH_SR_WIP":   fmt.Sprintf("0x%02x", FLASH_SR_WIP),
	"FLASH_SR_WEL":   fmt.Sprintf("0x%02x", FLASH_SR_WEL),
}

// Flash is a JEDEC SPI NOR flash device. Every command completes
// instantly; a command sequence is terminated by deselecting the device.
type Flash struct {
	Verbose bool
	Name    string
	JEDEC   uint32 // Manufacturer, memory type, capacity.
	Data    []byte

	selected bool
	cmd      byte
	count    int // Bytes clocked since the command byte.
	addr     uint32
	wel      bool
	written  bool // A program or erase consumed the write enable latch.
}

var _ Peripheral = (*Flash)(nil)

// FlashSize is the capacity in bytes encoded in the JEDEC ID.
func FlashSize(jedec uint32) int {
	return 1 << (jedec & 0xff)
}

// NewFlash creates an erased flash of size bytes.
func NewFlash(name string, jedec uint32, size int) (flash *Flash, err error) {
	if size <= 0 || (size%FLASH_SECTOR_SIZE) != 0 || size > (1<<(8*FLASH_ADDR_BYTES)) {
		err = &ErrDevice{Device: name, Err: ErrFlashSize}
		return
	}

	flash = &Flash{
		Name:  name,
		JEDEC: jedec,
		Data:  make([]byte, size),
	}
	flash.erase(0, size)

	return
}

// Defines returns an iter of the flash command names.
func (flash *Flash) Defines() iter.Seq2[string, string] {
	return maps.All(_flash_defines)
}

// Reset deselects the flash and clears the write enable latch.
func (flash *Flash) Reset() {
	flash.selected = false
	flash.wel = false
	flash.idle()
}

func (flash *Flash) idle() {
	flash.cmd = 0
	flash.count = 0
	flash.addr = 0
	if flash.written {
		flash.wel = false
		flash.written = false
	}
}

// Status returns the flash status register.
func (flash *Flash) Status() (sr byte) {
	if flash.wel {
		sr |= FLASH_SR_WEL
	}
	return
}

// Select starts or terminates a command sequence.
func (flash *Flash) Select(selected bool) {
	flash.selected = selected
	flash.idle()
}

// Transfer clocks one byte of the current command sequence.
func (flash *Flash) Transfer(tx byte) (rx byte) {
	rx = FLASH_ERASED

	if !flash.selected {
		return
	}

	defer func() { flash.count++ }()

	if flash.count == 0 {
		flash.command(tx)
		return
	}

	switch flash.cmd {
	case FLASH_CMD_RDID:
		index := flash.count - 1
		if index < 3 {
			rx = byte(flash.JEDEC >> (8 * (2 - index)))
		} else {
			rx = 0
		}
	case FLASH_CMD_RDSR:
		rx = flash.Status()
	case FLASH_CMD_READ:
		if flash.address(tx) {
			rx = flash.Data[flash.addr]
			flash.addr = (flash.addr + 1) % uint32(len(flash.Data))
		}
	case FLASH_CMD_PP:
		if flash.address(tx) {
			flash.program(tx)
		}
	case FLASH_CMD_SE:
		if flash.address(tx) || flash.count != FLASH_ADDR_BYTES {
			break
		}
		if flash.wel {
			base := int(flash.addr) &^ (FLASH_SECTOR_SIZE - 1)
			flash.erase(base, base+FLASH_SECTOR_SIZE)
			flash.written = true
		}
	}

	return
}

// address collects the address phase. Returns true once the data phase
// has been reached.
func (flash *Flash) address(tx byte) (data bool) {
	if flash.count <= FLASH_ADDR_BYTES {
		flash.addr = (flash.addr << 8) | uint32(tx)
		if flash.count == FLASH_ADDR_BYTES {
			flash.addr %= uint32(len(flash.Data))
		}
		return
	}
	return true
}

func (flash *Flash) command(cmd byte) {
	flash.cmd = cmd

	if flash.Verbose {
		log.Printf("ssi: %v: command 0x%02x", flash.Name, cmd)
	}

	switch cmd {
	case FLASH_CMD_WREN:
		flash.wel = true
	case FLASH_CMD_WRDI:
		flash.wel = false
	case FLASH_CMD_CE, FLASH_CMD_CE2:
		if flash.wel {
			flash.erase(0, len(flash.Data))
			flash.written = true
		}
	}
}

// program ANDs a byte into the current page, wrapping at the page end.
func (flash *Flash) program(tx byte) {
	if !flash.wel {
		return
	}

	page := flash.addr &^ (FLASH_PAGE_SIZE - 1)
	flash.Data[flash.addr] &= tx
	flash.addr = page | ((flash.addr + 1) & (FLASH_PAGE_SIZE - 1))
	flash.written = true
}

func (flash *Flash) erase(from, to int) {
	if flash.Verbose {
		log.Printf("ssi: %v: erase 0x%06x..0x%06x", flash.Name, from, to)
	}
	for n := from; n < to; n++ {
		flash.Data[n] = FLASH_ERASED
	}
}

// Load replaces the flash contents with an image. Bytes past the end of
// the image are erased.
func (flash *Flash) Load(r io.Reader) (err error) {
	image, err := io.ReadAll(io.LimitReader(r, int64(len(flash.Data))+1))
	if err != nil {
		return
	}
	if len(image) > len(flash.Data) {
		err = &ErrDevice{Device: flash.Name, Err: ErrFlashImage}
		return
	}

	copy(flash.Data, image)
	flash.erase(len(image), len(flash.Data))

	return
}

// Save writes the flash contents.
func (flash *Flash) Save(w io.Writer) (err error) {
	_, err = w.Write(flash.Data)
	return
}

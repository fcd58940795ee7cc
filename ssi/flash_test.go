package ssi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// sequence selects the flash, clocks tx, and deselects it.
func sequence(flash *Flash, tx ...byte) (rx []byte) {
	flash.Select(true)
	for _, b := range tx {
		rx = append(rx, flash.Transfer(b))
	}
	flash.Select(false)
	return
}

func newTestFlash(t *testing.T) *Flash {
	flash, err := NewFlash("flash0", JEDEC_W25Q16, 64*1024)
	assert.NoError(t, err)
	return flash
}

func TestFlash_New(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		size int
		ok   bool
	}){
		{0, false},
		{-4096, false},
		{1000, false},
		{4096, true},
		{16 << 20, true},
		{32 << 20, false},
	}

	for _, entry := range table {
		flash, err := NewFlash("flash", JEDEC_W25Q32, entry.size)
		if entry.ok {
			assert.NoError(err, "%d", entry.size)
			assert.Len(flash.Data, entry.size)
			assert.Equal(byte(FLASH_ERASED), flash.Data[entry.size-1])
		} else {
			assert.ErrorIs(err, ErrFlashSize, "%d", entry.size)
		}
	}
}

func TestFlashSize(t *testing.T) {
	table := [](struct {
		jedec uint32
		size  int
	}){
		{JEDEC_W25Q16, 2 * 1024 * 1024},
		{JEDEC_W25Q32, 4 * 1024 * 1024},
		{JEDEC_W25Q64, 8 * 1024 * 1024},
	}

	for _, entry := range table {
		assert.Equal(t, entry.size, FlashSize(entry.jedec), "0x%06x", entry.jedec)
	}
}

func TestFlash_ReadID(t *testing.T) {
	assert := assert.New(t)

	flash := newTestFlash(t)

	rx := sequence(flash, FLASH_CMD_RDID, 0, 0, 0, 0)
	assert.Equal([]byte{0xff, 0xef, 0x40, 0x15, 0x00}, rx)

	// Not selected, nothing is driven.
	assert.Equal(byte(0xff), flash.Transfer(FLASH_CMD_RDID))
	assert.Equal(byte(0xff), flash.Transfer(0))
}

func TestFlash_ProgramRead(t *testing.T) {
	assert := assert.New(t)

	flash := newTestFlash(t)

	// Without WREN, program is ignored.
	sequence(flash, FLASH_CMD_PP, 0x00, 0x01, 0x00, 0x12, 0x34)
	assert.Equal([]byte{0xff, 0xff}, flash.Data[0x100:0x102])

	rx := sequence(flash, FLASH_CMD_WREN)
	assert.Equal([]byte{0xff}, rx)
	rx = sequence(flash, FLASH_CMD_RDSR, 0, 0)
	assert.Equal([]byte{0xff, FLASH_SR_WEL, FLASH_SR_WEL}, rx)

	sequence(flash, FLASH_CMD_PP, 0x00, 0x01, 0x00, 0x12, 0x34)
	assert.Equal([]byte{0x12, 0x34}, flash.Data[0x100:0x102])

	// WEL is consumed by the program.
	assert.Equal(byte(0), flash.Status())

	rx = sequence(flash, FLASH_CMD_READ, 0x00, 0x01, 0x00, 0, 0, 0)
	assert.Equal([]byte{0xff, 0xff, 0xff, 0xff, 0x12, 0x34, 0xff}, rx)

	// Programming only clears bits.
	sequence(flash, FLASH_CMD_WREN)
	sequence(flash, FLASH_CMD_PP, 0x00, 0x01, 0x00, 0xf0)
	assert.Equal(byte(0x10), flash.Data[0x100])
}

func TestFlash_ProgramPageWrap(t *testing.T) {
	assert := assert.New(t)

	flash := newTestFlash(t)

	sequence(flash, FLASH_CMD_WREN)
	sequence(flash, FLASH_CMD_PP, 0x00, 0x02, 0xff, 0xa0, 0xa1, 0xa2)

	assert.Equal(byte(0xa0), flash.Data[0x2ff])
	assert.Equal(byte(0xa1), flash.Data[0x200])
	assert.Equal(byte(0xa2), flash.Data[0x201])
	assert.Equal(byte(0xff), flash.Data[0x300])
}

func TestFlash_Erase(t *testing.T) {
	assert := assert.New(t)

	flash := newTestFlash(t)
	for n := range flash.Data {
		flash.Data[n] = 0
	}

	// Needs WREN.
	sequence(flash, FLASH_CMD_SE, 0x00, 0x10, 0x20)
	assert.Equal(byte(0), flash.Data[0x1000])

	sequence(flash, FLASH_CMD_WREN)
	sequence(flash, FLASH_CMD_SE, 0x00, 0x10, 0x20)
	assert.Equal(byte(0), flash.Data[0x0fff])
	assert.Equal(byte(0xff), flash.Data[0x1000])
	assert.Equal(byte(0xff), flash.Data[0x1fff])
	assert.Equal(byte(0), flash.Data[0x2000])
	assert.Equal(byte(0), flash.Status())

	sequence(flash, FLASH_CMD_WREN)
	sequence(flash, FLASH_CMD_CE)
	assert.Equal(bytes.Repeat([]byte{0xff}, len(flash.Data)), flash.Data)
}

func TestFlash_WriteDisable(t *testing.T) {
	assert := assert.New(t)

	flash := newTestFlash(t)
	sequence(flash, FLASH_CMD_WREN)
	sequence(flash, FLASH_CMD_WRDI)
	assert.Equal(byte(0), flash.Status())

	sequence(flash, FLASH_CMD_WREN)
	flash.Reset()
	assert.Equal(byte(0), flash.Status())
}

func TestFlash_LoadSave(t *testing.T) {
	assert := assert.New(t)

	flash, err := NewFlash("flash1", JEDEC_W25Q16, 4096)
	assert.NoError(err)

	err = flash.Load(bytes.NewReader([]byte{1, 2, 3}))
	assert.NoError(err)
	assert.Equal([]byte{1, 2, 3, 0xff}, flash.Data[:4])

	out := &bytes.Buffer{}
	err = flash.Save(out)
	assert.NoError(err)
	assert.Equal(flash.Data, out.Bytes())

	err = flash.Load(bytes.NewReader(make([]byte, 4097)))
	assert.ErrorIs(err, ErrFlashImage)
	assert.Equal([]byte{1, 2, 3, 0xff}, flash.Data[:4])
}

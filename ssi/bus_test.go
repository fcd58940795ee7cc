package ssi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/g233spi/spi"
)

type echoDevice struct {
	Reply    byte
	Got      []byte
	Selects  []bool
	selected bool
}

func (ed *echoDevice) Select(selected bool) {
	ed.selected = selected
	ed.Selects = append(ed.Selects, selected)
}

func (ed *echoDevice) Transfer(tx byte) byte {
	ed.Got = append(ed.Got, tx)
	return ed.Reply
}

func TestBus_Attach(t *testing.T) {
	assert := assert.New(t)

	bus := NewBus()
	assert.NoError(bus.Attach(0, &echoDevice{}))
	assert.NoError(bus.Attach(1, &echoDevice{}))
	assert.ErrorIs(bus.Attach(1, &echoDevice{}), ErrChipSelectBusy)
	assert.ErrorIs(bus.Attach(2, &echoDevice{}), ErrChipSelectInvalid)
	assert.ErrorIs(bus.Attach(-1, &echoDevice{}), ErrChipSelectInvalid)
	assert.Nil(bus.Device(2))
	assert.NotNil(bus.Device(1))
}

func TestBus_Exchange(t *testing.T) {
	assert := assert.New(t)

	dev0 := &echoDevice{Reply: 0x0f}
	dev1 := &echoDevice{Reply: 0x30}

	bus := NewBus()
	bus.Attach(0, dev0)
	bus.Attach(1, dev1)

	// Nothing selected.
	assert.Equal(byte(0), bus.Exchange(0x11))
	assert.Empty(dev0.Got)
	assert.Empty(dev1.Got)

	// Chip-selects are active low.
	bus.CS(0).SetLevel(false)
	assert.True(bus.Selected(0))
	assert.Equal(byte(0x0f), bus.Exchange(0x22))

	bus.CS(1).SetLevel(false)
	assert.Equal(byte(0x3f), bus.Exchange(0x33))

	bus.CS(0).SetLevel(true)
	bus.CS(0).SetLevel(true)
	assert.Equal(byte(0x30), bus.Exchange(0x44))

	assert.Equal([]byte{0x22, 0x33}, dev0.Got)
	assert.Equal([]byte{0x33, 0x44}, dev1.Got)
	assert.Equal([]bool{true, false}, dev0.Selects)
	assert.Equal([]bool{true}, dev1.Selects)
}

func TestBus_AttachSelected(t *testing.T) {
	assert := assert.New(t)

	bus := NewBus()
	bus.CS(1).SetLevel(false)

	dev := &echoDevice{}
	bus.Attach(1, dev)
	assert.True(dev.selected)
}

func TestBus_Controller(t *testing.T) {
	assert := assert.New(t)

	bus := NewBus()
	flash0, err := NewFlash("flash0", JEDEC_W25Q16, 4096)
	assert.NoError(err)
	flash1, err := NewFlash("flash1", JEDEC_W25Q32, 4096)
	assert.NoError(err)
	bus.Attach(0, flash0)
	bus.Attach(1, flash1)

	ctl := spi.NewController(bus, bus.CS(0), bus.CS(1))

	write := func(reg spi.Register, value uint32) {
		ctl.Write(uint64(reg), uint64(value), spi.ACCESS_SIZE)
	}
	read := func(reg spi.Register) uint32 {
		return uint32(ctl.Read(uint64(reg), spi.ACCESS_SIZE))
	}
	jedec := func(cs uint32) (id uint32) {
		write(spi.REG_CSCTRL, cs)
		write(spi.REG_DR, FLASH_CMD_RDID)
		read(spi.REG_DR)
		for range 3 {
			write(spi.REG_DR, 0)
			id = (id << 8) | read(spi.REG_DR)
		}
		write(spi.REG_CSCTRL, 0)
		return
	}

	write(spi.REG_CR1, spi.CR1_SPE|spi.CR1_MSTR)

	assert.Equal(uint32(JEDEC_W25Q16), jedec(spi.CS0_ENABLE|spi.CS0_ACTIVE))
	assert.Equal(uint32(JEDEC_W25Q32), jedec(spi.CS1_ENABLE|spi.CS1_ACTIVE))
	assert.False(bus.Selected(0))
	assert.False(bus.Selected(1))
}

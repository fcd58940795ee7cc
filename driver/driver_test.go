package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/g233spi/gpio"
	"github.com/ezrec/g233spi/spi"
	"github.com/ezrec/g233spi/ssi"
)

const testBase = 0x1001_8000

type testMMIO struct {
	ctl    *spi.Controller
	writes int
}

func (tm *testMMIO) Read32(addr uint64) uint32 {
	return uint32(tm.ctl.Read(addr-testBase, spi.ACCESS_SIZE))
}

func (tm *testMMIO) Write32(addr uint64, value uint32) {
	tm.writes++
	tm.ctl.Write(addr-testBase, uint64(value), spi.ACCESS_SIZE)
}

type testRig struct {
	bus    *ssi.Bus
	flash  [2]*ssi.Flash
	irq    *gpio.Line
	mmio   *testMMIO
	driver *Driver
}

func newTestRig(t *testing.T) (rig *testRig) {
	rig = &testRig{
		bus: ssi.NewBus(),
		irq: gpio.NewLine("irq", false),
	}

	for n, jedec := range []uint32{ssi.JEDEC_W25Q16, ssi.JEDEC_W25Q32} {
		flash, err := ssi.NewFlash("flash", jedec, 8192)
		assert.NoError(t, err)
		assert.NoError(t, rig.bus.Attach(n, flash))
		rig.flash[n] = flash
	}

	ctl := spi.NewController(rig.bus, rig.bus.CS(0), rig.bus.CS(1), rig.irq)
	rig.mmio = &testMMIO{ctl: ctl}
	rig.driver = New(rig.mmio, testBase)
	return
}

func TestDriver_ReadJEDEC(t *testing.T) {
	assert := assert.New(t)

	rig := newTestRig(t)
	drv := rig.driver
	drv.Configure(Config{})

	for n, expect := range []uint32{ssi.JEDEC_W25Q16, ssi.JEDEC_W25Q32} {
		assert.NoError(drv.Select(n))
		id, err := ReadJEDEC(drv)
		assert.NoError(err)
		assert.Equal(expect, id)
		drv.Deselect()
	}

	assert.False(rig.bus.Selected(0))
	assert.False(rig.bus.Selected(1))
}

func TestDriver_ReadFlash(t *testing.T) {
	assert := assert.New(t)

	rig := newTestRig(t)
	copy(rig.flash[1].Data[0x123:], []byte("hello"))

	drv := rig.driver
	drv.Configure(Config{})
	assert.NoError(drv.Select(1))

	buf := make([]byte, 5)
	err := ReadFlash(drv, 0x123, buf)
	assert.NoError(err)
	assert.Equal([]byte("hello"), buf)

	drv.Deselect()
}

func TestDriver_NotSelected(t *testing.T) {
	assert := assert.New(t)

	rig := newTestRig(t)
	drv := rig.driver
	drv.PollLimit = 3
	drv.Configure(Config{})

	_, err := drv.Transfer(0x9f)
	var errTimeout *ErrTimeout
	assert.ErrorAs(err, &errTimeout)
	assert.Equal(spi.SR_RXNE, errTimeout.Wait)
	assert.Equal(spi.SR_TXE, errTimeout.Status)

	assert.ErrorAs(drv.Select(2), new(*ErrChipSelect))
}

func TestDriver_Disabled(t *testing.T) {
	assert := assert.New(t)

	rig := newTestRig(t)
	drv := rig.driver
	drv.PollLimit = 1
	drv.Configure(Config{})
	drv.Disable()
	drv.Select(0)

	_, err := ReadJEDEC(drv)
	assert.Error(err)
}

func TestDriver_Overrun(t *testing.T) {
	assert := assert.New(t)

	rig := newTestRig(t)
	drv := rig.driver
	drv.Configure(Config{ErrorInterrupt: true})
	drv.Select(0)

	// Another agent leaves a byte unread.
	rig.mmio.Write32(testBase+uint64(spi.REG_DR), cmdReadID)
	assert.False(rig.irq.High())

	_, err := drv.Transfer(0)
	assert.ErrorIs(err, ErrOverrun)

	// Reading the data register acknowledged the overrun.
	assert.False(rig.irq.High())
	assert.Equal([]bool{true, false}, rig.irq.Edges)
}

func TestDriver_Interrupts(t *testing.T) {
	assert := assert.New(t)

	rig := newTestRig(t)
	drv := rig.driver
	drv.Configure(Config{TxInterrupt: true, RxInterrupt: true})

	assert.Equal(spi.SR_TXE, drv.Interrupts())
	assert.True(rig.irq.High())

	drv.Select(0)
	rig.mmio.Write32(testBase+uint64(spi.REG_DR), cmdReadID)
	assert.Equal(spi.SR_TXE|spi.SR_RXNE, drv.Interrupts())

	drv.Configure(Config{})
	assert.Equal(uint32(0), drv.Interrupts())
	assert.False(rig.irq.High())
}

func TestDriver_Tx(t *testing.T) {
	assert := assert.New(t)

	rig := newTestRig(t)
	drv := rig.driver
	drv.Configure(Config{})
	drv.Select(0)

	assert.ErrorIs(drv.Tx([]byte{1, 2}, make([]byte, 1)), ErrLength)

	r := make([]byte, 4)
	assert.NoError(drv.Tx([]byte{cmdReadID, 0, 0, 0}, r))
	assert.Equal([]byte{0xff, 0xef, 0x40, 0x15}, r)
}

package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/g233spi/spi"
)

var _ spi.Line = (*Line)(nil)

func TestLine_Idle(t *testing.T) {
	assert := assert.New(t)

	cs := NewLine("cs0", true)
	assert.True(cs.High())
	assert.False(cs.Asserted())

	irq := NewLine("irq", false)
	assert.False(irq.High())
	assert.False(irq.Asserted())
}

func TestLine_SetLevel(t *testing.T) {
	assert := assert.New(t)

	var notified []bool
	line := NewLine("cs1", true)
	line.Notify = func(high bool) { notified = append(notified, high) }

	line.SetLevel(true) // unchanged
	line.SetLevel(false)
	line.SetLevel(false) // unchanged
	line.SetLevel(true)

	assert.Equal(4, line.Sets())
	assert.Equal([]bool{false, true}, line.Edges)
	assert.Equal([]bool{false, true}, notified)
	assert.True(line.High())
	assert.False(line.Asserted())
}

func TestLine_Next(t *testing.T) {
	assert := assert.New(t)

	line := NewLine("irq", false)

	high, ok := line.Next()
	assert.False(ok)
	assert.False(high)

	line.SetLevel(true)
	line.SetLevel(false)

	high, ok = line.Next()
	assert.True(ok)
	assert.True(high)
	assert.Len(line.Edges, 1)

	high, ok = line.Next()
	assert.True(ok)
	assert.False(high)
	assert.Len(line.Edges, 0)
}

func TestLine_Reset(t *testing.T) {
	assert := assert.New(t)

	line := NewLine("irq", false)
	line.SetLevel(true)
	line.Reset()

	assert.Nil(line.Edges)
	assert.Equal(0, line.Sets())
	assert.True(line.High())
	assert.True(line.Asserted())
}

func TestLine_Controller(t *testing.T) {
	assert := assert.New(t)

	cs0 := NewLine("cs0", true)
	cs1 := NewLine("cs1", true)
	irq := NewLine("irq", false)

	ctl := spi.NewController(nil, cs0, cs1, irq)
	ctl.Write(uint64(spi.REG_CSCTRL), uint64(spi.CS0_ENABLE|spi.CS0_ACTIVE), spi.ACCESS_SIZE)
	ctl.Write(uint64(spi.REG_CR2), uint64(spi.CR2_TXEIE), spi.ACCESS_SIZE)

	assert.True(cs0.Asserted())
	assert.False(cs1.Asserted())
	assert.True(irq.Asserted())
	assert.Equal([]bool{false}, cs0.Edges)
	assert.Empty(cs1.Edges)
	assert.Equal([]bool{true}, irq.Edges)
}

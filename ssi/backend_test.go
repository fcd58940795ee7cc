package ssi

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// bridgeStub answers bridge requests like the firmware would.
type bridgeStub struct {
	requests []byte
	pending  bytes.Buffer
	device   byte // XOR applied to transferred bytes.
	broken   bool
	closed   bool
}

func (bs *bridgeStub) Write(p []byte) (n int, err error) {
	bs.requests = append(bs.requests, p...)
	for len(bs.requests) >= 2 {
		op, arg := bs.requests[0], bs.requests[1]
		bs.requests = bs.requests[2:]
		switch op {
		case BRIDGE_OP_XFER:
			bs.pending.WriteByte(arg ^ bs.device)
		case BRIDGE_OP_SELECT:
			if bs.broken {
				arg = ^arg
			}
			bs.pending.WriteByte(arg)
		}
	}
	return len(p), nil
}

func (bs *bridgeStub) Read(p []byte) (n int, err error) {
	if bs.pending.Len() == 0 {
		return 0, io.EOF
	}
	return bs.pending.Read(p)
}

func (bs *bridgeStub) Close() error {
	bs.closed = true
	return nil
}

func TestSerialBus_Exchange(t *testing.T) {
	assert := assert.New(t)

	stub := &bridgeStub{device: 0x5a}
	bus := NewSerialBus("stub", stub)

	bus.CS(0).SetLevel(false)
	assert.Equal(byte(0x01), bus.mask)
	assert.Equal(byte(0x5a^0x12), bus.Exchange(0x12))

	bus.CS(0).SetLevel(false) // unchanged, no request
	bus.CS(0).SetLevel(true)
	assert.Equal(byte(0), bus.mask)

	assert.NoError(bus.Close())
	assert.True(stub.closed)
}

func TestSerialBus_Failure(t *testing.T) {
	assert := assert.New(t)

	stub := &bridgeStub{broken: true}
	bus := NewSerialBus("stub", stub)

	// A bad select echo is logged, not fatal.
	bus.CS(1).SetLevel(false)
	assert.Equal(byte(0x02), bus.mask)

	// No reply at all reads as an idle bus.
	stub.pending.Reset()
	_, err := bus.request(BRIDGE_OP_SELECT, 0)
	assert.NoError(err)
	bus.port = readFailure{}
	assert.Equal(byte(0xff), bus.Exchange(0x00))
}

type readFailure struct{}

func (readFailure) Read(p []byte) (int, error)  { return 0, errors.New("gone") }
func (readFailure) Write(p []byte) (int, error) { return len(p), nil }
func (readFailure) Close() error                { return nil }

type driverStub struct {
	fail bool
}

func (ds *driverStub) Tx(w, r []byte) error {
	for n := range r {
		r[n] = ^w[n]
	}
	return nil
}

func (ds *driverStub) Transfer(b byte) (byte, error) {
	if ds.fail {
		return 0, errors.New("stub failure")
	}
	return ^b, nil
}

func TestDriverBus_Exchange(t *testing.T) {
	assert := assert.New(t)

	stub := &driverStub{}
	bus := &DriverBus{Name: "stub", SPI: stub}
	assert.Equal(byte(0xf0), bus.Exchange(0x0f))

	stub.fail = true
	assert.Equal(byte(0xff), bus.Exchange(0x0f))
}

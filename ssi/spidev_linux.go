//go:build linux

package ssi

import (
	"log"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ezrec/g233spi/spi"
)

const (
	spiIocMagic = 'k'

	// SPI_IOC_MESSAGE(1): _IOW('k', 0, char[32])
	spiIocMessage1 = (1 << 30) | (32 << 16) | (spiIocMagic << 8) | 0
	// SPI_IOC_WR_MAX_SPEED_HZ: _IOW('k', 4, __u32)
	spiIocWrMaxSpeedHz = (1 << 30) | (4 << 16) | (spiIocMagic << 8) | 4
)

// spiIocTransfer mirrors struct spi_ioc_transfer.
type spiIocTransfer struct {
	txBuf       uint64
	rxBuf       uint64
	length      uint32
	speedHz     uint32
	delayUsecs  uint16
	bitsPerWord uint8
	csChange    uint8
	txNbits     uint8
	rxNbits     uint8
	wordDelay   uint8
	pad         uint8
}

// Spidev exchanges bytes with a device behind a Linux spidev node. The
// kernel owns the single chip-select of the node; it is held asserted
// between exchanges until the CS wire is released.
type Spidev struct {
	Verbose bool

	path    string
	fd      int
	speedHz uint32
	cs      *spidevWire
	tx, rx  []byte // Transfer buffers, pinned for the length of a message.
}

var _ spi.Bus = (*Spidev)(nil)

type spidevWire struct {
	dev      *Spidev
	selected bool
}

func (w *spidevWire) SetLevel(high bool) {
	selected := !high
	if selected == w.selected {
		return
	}
	w.selected = selected

	if !selected {
		// An empty message without cs_change releases the chip-select.
		xfer := spiIocTransfer{speedHz: w.dev.speedHz, bitsPerWord: 8}
		err := w.dev.message(&xfer)
		if err != nil {
			log.Printf("ssi: %v", &ErrDevice{Device: w.dev.path, Err: err})
		}
	}
}

// OpenSpidev opens a spidev node, such as /dev/spidev0.0.
func OpenSpidev(path string, speedHz uint32) (dev *Spidev, err error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		err = &ErrDevice{Device: path, Err: err}
		return
	}

	dev = &Spidev{
		path:    path,
		fd:      fd,
		speedHz: speedHz,
		tx:      make([]byte, 1),
		rx:      make([]byte, 1),
	}
	dev.cs = &spidevWire{dev: dev}

	if speedHz != 0 {
		err = dev.ioctl(spiIocWrMaxSpeedHz, unsafe.Pointer(&speedHz))
		if err != nil {
			unix.Close(fd)
			dev = nil
			err = &ErrDevice{Device: path, Err: err}
			return
		}
	}

	return
}

// CS returns the chip-select wire of the node.
func (dev *Spidev) CS() spi.Line {
	return dev.cs
}

func (dev *Spidev) ioctl(req uintptr, arg unsafe.Pointer) (err error) {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(dev.fd), req, uintptr(arg))
	if errno != 0 {
		err = errno
	}
	return
}

func (dev *Spidev) message(xfer *spiIocTransfer) error {
	return dev.ioctl(spiIocMessage1, unsafe.Pointer(xfer))
}

// Exchange clocks one byte. Failures read back as an idle bus (0xff).
func (dev *Spidev) Exchange(tx byte) (rx byte) {
	dev.tx[0] = tx
	dev.rx[0] = 0xff

	var pinner runtime.Pinner
	pinner.Pin(&dev.tx[0])
	pinner.Pin(&dev.rx[0])

	xfer := spiIocTransfer{
		txBuf:       uint64(uintptr(unsafe.Pointer(&dev.tx[0]))),
		rxBuf:       uint64(uintptr(unsafe.Pointer(&dev.rx[0]))),
		length:      1,
		speedHz:     dev.speedHz,
		bitsPerWord: 8,
		csChange:    1,
	}

	err := dev.message(&xfer)
	pinner.Unpin()
	if err != nil {
		log.Printf("ssi: %v", &ErrDevice{Device: dev.path, Err: err})
		rx = 0xff
		return
	}

	rx = dev.rx[0]

	if dev.Verbose {
		log.Printf("ssi: %v: 0x%02x -> 0x%02x", dev.path, tx, rx)
	}

	return
}

// Close releases the spidev node.
func (dev *Spidev) Close() (err error) {
	if dev.fd >= 0 {
		err = unix.Close(dev.fd)
		dev.fd = -1
	}
	return
}

package i2c

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/mklimuk/proxlight"
	"github.com/mklimuk/proxlight/snsctx"
)

// I2C_SLAVE request from linux/i2c-dev.h
const ioctlI2CSlave = 0x0703

var _ proxlight.I2CBusCloser = &DevBus{}

type devFile interface {
	io.ReadWriteCloser
	Fd() uintptr
}

type bindFunc func(fd uintptr, address byte) error

// DevBus drives an i2c-dev character device directly. Plain read(2) and
// write(2) are used so the caller sees exactly how many bytes went over the
// wire. It is the default bus of the cli because GenericBus goes through
// periph's Tx, which only reports success or failure, so a truncated block
// read could not be told apart from a complete one.
type DevBus struct {
	mx    sync.Mutex
	path  string
	file  devFile
	bind  bindFunc
	bound int
}

// NewDevBus opens the i2c-dev character device at path for exclusive use.
func NewDevBus(path string) (*DevBus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", proxlight.ErrBusOpen, err)
	}
	return newDevBus(path, f, bindAddress), nil
}

func newDevBus(path string, f devFile, bind bindFunc) *DevBus {
	return &DevBus{
		path:  path,
		file:  f,
		bind:  bind,
		bound: -1,
	}
}

func bindAddress(fd uintptr, address byte) error {
	return unix.IoctlSetInt(int(fd), ioctlI2CSlave, int(address))
}

func (b *DevBus) selectAddr(address byte) error {
	if b.bound == int(address) {
		return nil
	}
	err := b.bind(b.file.Fd(), address)
	if err != nil {
		return fmt.Errorf("could not bind %s to address %x: %w", b.path, address, err)
	}
	b.bound = int(address)
	return nil
}

func (b *DevBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	err := b.selectAddr(address)
	if err != nil {
		return 0, err
	}
	n, err := b.file.Read(buffer)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("could not read from %s at %x: %w", b.path, address, err)
	}
	snsctx.Trace(ctx, "read", address, buffer[:n])
	return n, nil
}

func (b *DevBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	err := b.selectAddr(address)
	if err != nil {
		return 0, err
	}
	snsctx.Trace(ctx, "write", address, buffer)
	n, err := b.file.Write(buffer)
	if err != nil {
		return n, fmt.Errorf("could not write to %s at %x: %w", b.path, address, err)
	}
	return n, nil
}

// Release forgets the bound address so the next transaction binds again.
func (b *DevBus) Release(ctx context.Context) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.bound = -1
	return nil
}

func (b *DevBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.file.Close()
}

package i2c

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"gobot.io/x/gobot/v2/platforms/raspi"

	"github.com/mklimuk/proxlight"
	"github.com/mklimuk/proxlight/snsctx"
)

var _ proxlight.I2CBusCloser = &GobotBus{}

type dialFunc func(address byte) (io.ReadWriteCloser, error)

// GobotBus uses the gobot Raspberry Pi adaptor. One gobot connection is
// kept per device address for the lifetime of the bus.
type GobotBus struct {
	mx       sync.Mutex
	dial     dialFunc
	finalize func() error
	conns    map[byte]io.ReadWriteCloser
}

func NewGobotBus(dev string) (*GobotBus, error) {
	number, err := BusNumber(dev)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", proxlight.ErrBusOpen, err)
	}
	adaptor := raspi.NewAdaptor()
	err = adaptor.Connect()
	if err != nil {
		return nil, fmt.Errorf("%w: adaptor connect error: %w", proxlight.ErrBusOpen, err)
	}
	dial := func(address byte) (io.ReadWriteCloser, error) {
		conn, err := adaptor.GetI2cConnection(int(address), number)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return newGobotBus(dial, adaptor.Finalize), nil
}

func newGobotBus(dial dialFunc, finalize func() error) *GobotBus {
	return &GobotBus{
		dial:     dial,
		finalize: finalize,
		conns:    make(map[byte]io.ReadWriteCloser),
	}
}

func (b *GobotBus) conn(address byte) (io.ReadWriteCloser, error) {
	if c, ok := b.conns[address]; ok {
		return c, nil
	}
	c, err := b.dial(address)
	if err != nil {
		return nil, fmt.Errorf("could not get connection to %x: %w", address, err)
	}
	b.conns[address] = c
	return c, nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	c, err := b.conn(address)
	if err != nil {
		return 0, err
	}
	n, err := c.Read(buffer)
	if err != nil {
		return n, fmt.Errorf("read error at %x: %w", address, err)
	}
	snsctx.Trace(ctx, "read", address, buffer[:n])
	return n, nil
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	c, err := b.conn(address)
	if err != nil {
		return 0, err
	}
	snsctx.Trace(ctx, "write", address, buffer)
	n, err := c.Write(buffer)
	if err != nil {
		return n, fmt.Errorf("write error at %x: %w", address, err)
	}
	return n, nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

// Close closes all device connections and finalizes the adaptor.
func (b *GobotBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var errs []error
	for address, c := range b.conns {
		err := c.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("could not close connection to %x: %w", address, err))
		}
		delete(b.conns, address)
	}
	if b.finalize != nil {
		err := b.finalize()
		if err != nil {
			errs = append(errs, fmt.Errorf("adaptor finalize error: %w", err))
		}
	}
	return errors.Join(errs...)
}

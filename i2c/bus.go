// Package i2c provides proxlight.I2CBus implementations for Linux hosts.
package i2c

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/mklimuk/proxlight"
	"github.com/mklimuk/proxlight/snsctx"
)

var _ proxlight.I2CBusCloser = &GenericBus{}

// GenericBus talks to the bus through periph's host drivers. periph only
// reports success or failure, so a successful transaction always moves the
// whole buffer.
type GenericBus struct {
	bus i2c.BusCloser
}

type GenericBusOpts struct {
	Speed physic.Frequency
}

type GenericBusOpt func(*GenericBusOpts)

func WithSpeed(speed physic.Frequency) GenericBusOpt {
	return func(o *GenericBusOpts) {
		o.Speed = speed
	}
}

// NewGenericBus initializes periph and opens the bus behind the given device
// path (e.g. /dev/i2c-1).
func NewGenericBus(dev string, opts ...GenericBusOpt) (*GenericBus, error) {
	var config GenericBusOpts
	for _, opt := range opts {
		opt(&config)
	}
	number, err := BusNumber(dev)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", proxlight.ErrBusOpen, err)
	}
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("%w: could not init host: %w", proxlight.ErrBusOpen, err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("periph driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(strconv.Itoa(number))
	if err != nil {
		return nil, fmt.Errorf("%w: could not open i2c bus %s: %w", proxlight.ErrBusOpen, dev, err)
	}
	if config.Speed > 0 {
		err = bus.SetSpeed(config.Speed)
		if err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("%w: could not set bus speed to %s: %w", proxlight.ErrBusOpen, config.Speed, err)
		}
	}
	return WrapBus(bus), nil
}

// WrapBus adapts an already opened periph bus.
func WrapBus(bus i2c.BusCloser) *GenericBus {
	return &GenericBus{
		bus: bus,
	}
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return 0, fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	snsctx.Trace(ctx, "read", address, buffer)
	return len(buffer), nil
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	snsctx.Trace(ctx, "write", address, buffer)
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return 0, fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return len(buffer), nil
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}

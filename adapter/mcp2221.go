// Package adapter contains USB bridges exposing an I2C bus to the host.
package adapter

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/proxlight"
	"github.com/mklimuk/proxlight/snsctx"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

const reportSize = 64

// HID command codes
const (
	cmdStatusSetParameters byte = 0x10
	cmdI2CWriteData        byte = 0x90
	cmdI2CReadData         byte = 0x91
	cmdI2CGetData          byte = 0x40
)

const (
	statusCancelTransfer byte = 0x10
	responseBusy         byte = 0x01
	responseReadError    byte = 0x41
	readCountError       byte = 127
)

var ErrCommandFailed = errors.New("command failed")

var _ proxlight.I2CBusCloser = &MCP2221{}

// MCP2221 is a Microchip MCP2221 USB to I2C bridge.
type MCP2221 struct {
	mx           sync.Mutex
	dev          io.ReadWriteCloser
	request      []byte
	response     []byte
	responseWait time.Duration
}

type MCP2221Status struct {
	I2CDataBufferCounter   int    `yaml:"i2c_data_buffer_counter"`
	I2CSpeedDivider        int    `yaml:"i2c_speed_divider"`
	I2CTimeout             int    `yaml:"i2c_timeout"`
	CurrentAddress         string `yaml:"current_address"`
	LastWriteRequestedSize uint16 `yaml:"last_write_requested_size"`
	LastWriteSentSize      uint16 `yaml:"last_write_sent_size"`
	ReadPending            int    `yaml:"read_pending"`
}

// OpenMCP2221 opens the single MCP2221 attached to the host.
func OpenMCP2221() (*MCP2221, error) {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) == 0 {
		return nil, fmt.Errorf("%w: MCP2221 device not found", proxlight.ErrBusOpen)
	}
	if len(devs) > 1 {
		return nil, fmt.Errorf("%w: ambiguous device identification (%d MCP2221 devices)", proxlight.ErrBusOpen, len(devs))
	}
	dev, err := devs[0].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: error opening device: %w", proxlight.ErrBusOpen, err)
	}
	return newMCP2221(dev, 50*time.Millisecond), nil
}

func newMCP2221(dev io.ReadWriteCloser, responseWait time.Duration) *MCP2221 {
	return &MCP2221{
		dev:          dev,
		request:      make([]byte, reportSize),
		response:     make([]byte, reportSize),
		responseWait: responseWait,
	}
}

func (d *MCP2221) WriteToAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	if len(buffer) > reportSize-4 {
		return 0, fmt.Errorf("write to %x failed: %d bytes do not fit in a single report", address, len(buffer))
	}
	d.resetBuffers()
	d.request[0] = cmdI2CWriteData
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address << 1
	copy(d.request[4:], buffer)
	err := d.send(ctx)
	if err != nil {
		return 0, fmt.Errorf("write to %x failed: %w", address, err)
	}
	if d.response[1] == responseBusy {
		return 0, proxlight.ErrBusBusy
	}
	return len(buffer), nil
}

// ReadFromAddr reads into buffer and returns the number of bytes the bridge
// reports to have received from the device.
func (d *MCP2221) ReadFromAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdI2CReadData
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address<<1 + 1
	err := d.send(ctx)
	if err != nil {
		return 0, fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	if d.response[1] == responseBusy {
		return 0, proxlight.ErrBusBusy
	}
	d.resetBuffers()
	d.request[0] = cmdI2CGetData
	err = d.send(ctx)
	if err != nil {
		return 0, fmt.Errorf("error getting read data from adapter: %w", err)
	}
	if d.response[1] == responseReadError {
		return 0, fmt.Errorf("error reading the I2C slave data from the I2C engine: %w", ErrCommandFailed)
	}
	if d.response[3] == readCountError {
		return 0, fmt.Errorf("invalid data size byte reported for %x: %w", address, ErrCommandFailed)
	}
	n := min(int(d.response[3]), len(buffer), reportSize-4)
	copy(buffer, d.response[4:4+n])
	return n, nil
}

func (d *MCP2221) Status(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatusSetParameters
	err := d.send(ctx)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func bufferToStatus(buffer []byte) *MCP2221Status {
	/*
		9-10:  requested I2C transfer length (LE)
		11-12: already transferred number of bytes (LE)
		13:    internal I2C data buffer counter
		14:    current I2C communication speed divider value
		15:    current I2C timeout value
		16-17: I2C address being used
		25:    read pending
	*/
	return &MCP2221Status{
		I2CDataBufferCounter:   int(buffer[13]),
		I2CSpeedDivider:        int(buffer[14]),
		I2CTimeout:             int(buffer[15]),
		ReadPending:            int(buffer[25]),
		CurrentAddress:         hex.EncodeToString(buffer[16:18]),
		LastWriteRequestedSize: binary.LittleEndian.Uint16(buffer[9:11]),
		LastWriteSentSize:      binary.LittleEndian.Uint16(buffer[11:13]),
	}
}

// Release cancels any pending transfer and frees the bridge's I2C engine.
func (d *MCP2221) Release(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatusSetParameters
	d.request[2] = statusCancelTransfer
	err := d.send(ctx)
	if err != nil {
		return fmt.Errorf("cancel transfer request failed: %w", err)
	}
	return nil
}

func (d *MCP2221) Close() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.dev.Close()
}

func (d *MCP2221) send(ctx context.Context) error {
	snsctx.Trace(ctx, "hid request", d.request[0], d.request)
	n, err := d.dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short write: %d", n)
	}
	time.Sleep(d.responseWait)
	n, err = d.dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short read: %d", n)
	}
	snsctx.Trace(ctx, "hid response", d.response[0], d.response)
	return nil
}

func (d *MCP2221) resetBuffers() {
	clear(d.request)
	clear(d.response)
}

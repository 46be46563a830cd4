package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/proxlight"
)

// fakeHID records every request report and answers with queued responses
type fakeHID struct {
	requests  [][]byte
	responses [][]byte
	writeErr  error
	closed    bool
}

func (f *fakeHID) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.requests = append(f.requests, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeHID) Read(p []byte) (int, error) {
	if len(f.responses) == 0 {
		return 0, errors.New("no response queued")
	}
	resp := make([]byte, reportSize)
	copy(resp, f.responses[0])
	f.responses = f.responses[1:]
	return copy(p, resp), nil
}

func (f *fakeHID) Close() error {
	f.closed = true
	return nil
}

func TestMCP2221_WriteToAddr(t *testing.T) {
	dev := &fakeHID{responses: [][]byte{{cmdI2CWriteData, 0x00}}}
	a := newMCP2221(dev, 0)

	n, err := a.WriteToAddr(context.Background(), 0x39, []byte{0xA0, 0x0F})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, dev.requests, 1)
	assert.Equal(t, []byte{cmdI2CWriteData, 0x02, 0x00, 0x72, 0xA0, 0x0F}, dev.requests[0][:6])
}

func TestMCP2221_WriteBusy(t *testing.T) {
	dev := &fakeHID{responses: [][]byte{{cmdI2CWriteData, responseBusy}}}
	a := newMCP2221(dev, 0)

	_, err := a.WriteToAddr(context.Background(), 0x39, []byte{0xB4})
	assert.ErrorIs(t, err, proxlight.ErrBusBusy)
}

func TestMCP2221_ReadFromAddr(t *testing.T) {
	tests := []struct {
		name     string
		count    byte
		expected int
	}{
		{name: "complete", count: 6, expected: 6},
		{name: "short", count: 4, expected: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeHID{responses: [][]byte{
				{cmdI2CReadData, 0x00},
				{cmdI2CGetData, 0x00, 0x00, tt.count, 0xE8, 0x03, 0xC8, 0x00, 0x34, 0x12},
			}}
			a := newMCP2221(dev, 0)

			buf := make([]byte, 6)
			n, err := a.ReadFromAddr(context.Background(), 0x39, buf)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
			assert.Equal(t, []byte{0xE8, 0x03, 0xC8, 0x00, 0x34, 0x12}[:n], buf[:n])
			require.Len(t, dev.requests, 2)
			assert.Equal(t, []byte{cmdI2CReadData, 0x06, 0x00, 0x73}, dev.requests[0][:4])
			assert.Equal(t, cmdI2CGetData, dev.requests[1][0])
		})
	}
}

func TestMCP2221_ReadEngineError(t *testing.T) {
	dev := &fakeHID{responses: [][]byte{
		{cmdI2CReadData, 0x00},
		{cmdI2CGetData, responseReadError},
	}}
	a := newMCP2221(dev, 0)

	_, err := a.ReadFromAddr(context.Background(), 0x39, make([]byte, 6))
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestMCP2221_StatusAndRelease(t *testing.T) {
	status := make([]byte, reportSize)
	status[0] = cmdStatusSetParameters
	status[9], status[10] = 0x02, 0x00
	status[11], status[12] = 0x02, 0x00
	status[13] = 3
	status[14] = 118
	status[15] = 0
	status[16], status[17] = 0x72, 0x00
	dev := &fakeHID{responses: [][]byte{status, {cmdStatusSetParameters}}}
	a := newMCP2221(dev, 0)
	ctx := context.Background()

	s, err := a.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, &MCP2221Status{
		I2CDataBufferCounter:   3,
		I2CSpeedDivider:        118,
		CurrentAddress:         "7200",
		LastWriteRequestedSize: 2,
		LastWriteSentSize:      2,
	}, s)

	require.NoError(t, a.Release(ctx))
	assert.Equal(t, statusCancelTransfer, dev.requests[1][2])

	require.NoError(t, a.Close())
	assert.True(t, dev.closed)
}

func TestMCP2221_SendError(t *testing.T) {
	dev := &fakeHID{writeErr: errors.New("device disconnected")}
	a := newMCP2221(dev, 0)

	_, err := a.WriteToAddr(context.Background(), 0x39, []byte{0xB4})
	assert.ErrorContains(t, err, "device disconnected")
}

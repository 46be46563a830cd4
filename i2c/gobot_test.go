package i2c

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	bytes.Buffer
	closed bool
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestGobotBus_ReusesConnection(t *testing.T) {
	conns := map[byte]*fakeConn{}
	dial := func(address byte) (io.ReadWriteCloser, error) {
		c := &fakeConn{}
		conns[address] = c
		return c, nil
	}
	finalized := false
	bus := newGobotBus(dial, func() error {
		finalized = true
		return nil
	})
	ctx := context.Background()

	n, err := bus.WriteToAddr(ctx, 0x39, []byte{0xA0, 0x0F})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = bus.WriteToAddr(ctx, 0x39, []byte{0xB4})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, conns, 1)

	buf := make([]byte, 6)
	n, err = bus.ReadFromAddr(ctx, 0x39, buf)
	require.NoError(t, err)
	// the fake connection echoes what was written
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0xA0, 0x0F, 0xB4}, buf[:n])

	require.NoError(t, bus.Close())
	assert.True(t, conns[0x39].closed)
	assert.True(t, finalized)
}

func TestGobotBus_DialError(t *testing.T) {
	bus := newGobotBus(func(address byte) (io.ReadWriteCloser, error) {
		return nil, errors.New("no such device")
	}, nil)

	_, err := bus.ReadFromAddr(context.Background(), 0x39, make([]byte, 6))
	assert.ErrorContains(t, err, "no such device")
	assert.NoError(t, bus.Close())
}

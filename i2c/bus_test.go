package i2c

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestGenericBus_Transactions(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x39, W: []byte{0xA0, 0x0F}},
			{Addr: 0x39, R: []byte{0x01, 0x02, 0x03}},
		},
		DontPanic: true,
	}
	bus := WrapBus(pb)
	ctx := context.Background()

	n, err := bus.WriteToAddr(ctx, 0x39, []byte{0xA0, 0x0F})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	buf := make([]byte, 3)
	n, err = bus.ReadFromAddr(ctx, 0x39, buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf)

	assert.NoError(t, bus.Release(ctx))
	assert.NoError(t, bus.Close())
}

func TestGenericBus_TxError(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x39, W: []byte{0xB4}}},
		DontPanic: true,
	}
	bus := WrapBus(pb)

	n, err := bus.WriteToAddr(context.Background(), 0x29, []byte{0xB4})
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

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

// fakeDevFile records writes and serves reads from a fixed buffer,
// optionally truncated to simulate a short transfer
type fakeDevFile struct {
	written  bytes.Buffer
	readData []byte
	readErr  error
	writeMax int
	closed   bool
}

func (f *fakeDevFile) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	if len(f.readData) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.readData)
	f.readData = f.readData[n:]
	return n, nil
}

func (f *fakeDevFile) Write(p []byte) (int, error) {
	if f.writeMax > 0 && len(p) > f.writeMax {
		f.written.Write(p[:f.writeMax])
		return f.writeMax, io.ErrShortWrite
	}
	return f.written.Write(p)
}

func (f *fakeDevFile) Close() error {
	f.closed = true
	return nil
}

func (f *fakeDevFile) Fd() uintptr {
	return 42
}

type bindRecorder struct {
	addresses []byte
	err       error
}

func (r *bindRecorder) bind(fd uintptr, address byte) error {
	if r.err != nil {
		return r.err
	}
	r.addresses = append(r.addresses, address)
	return nil
}

func TestDevBus_BindsOncePerAddress(t *testing.T) {
	f := &fakeDevFile{}
	rec := &bindRecorder{}
	bus := newDevBus(DefaultBus, f, rec.bind)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		n, err := bus.WriteToAddr(ctx, 0x39, []byte{0xA0, 0x0F})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}
	assert.Equal(t, []byte{0x39}, rec.addresses)

	require.NoError(t, bus.Release(ctx))
	_, err := bus.WriteToAddr(ctx, 0x39, []byte{0xB4})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x39, 0x39}, rec.addresses)
	assert.Equal(t, []byte{0xA0, 0x0F, 0xA0, 0x0F, 0xA0, 0x0F, 0xB4}, f.written.Bytes())
}

func TestDevBus_ReadReportsCount(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected int
	}{
		{name: "full", data: []byte{1, 2, 3, 4, 5, 6}, expected: 6},
		{name: "short", data: []byte{1, 2, 3, 4}, expected: 4},
		{name: "empty", data: nil, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeDevFile{readData: tt.data}
			rec := &bindRecorder{}
			bus := newDevBus(DefaultBus, f, rec.bind)

			buf := make([]byte, 6)
			n, err := bus.ReadFromAddr(context.Background(), 0x39, buf)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
			assert.True(t, bytes.Equal(tt.data, buf[:n]))
		})
	}
}

func TestDevBus_Errors(t *testing.T) {
	ctx := context.Background()

	bus := newDevBus(DefaultBus, &fakeDevFile{}, (&bindRecorder{err: errors.New("EBUSY")}).bind)
	_, err := bus.WriteToAddr(ctx, 0x39, []byte{0xB4})
	assert.ErrorContains(t, err, "EBUSY")

	f := &fakeDevFile{writeMax: 1}
	bus = newDevBus(DefaultBus, f, (&bindRecorder{}).bind)
	n, err := bus.WriteToAddr(ctx, 0x39, []byte{0xA0, 0x0F})
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 1, n)

	f = &fakeDevFile{readErr: errors.New("remote I/O error")}
	bus = newDevBus(DefaultBus, f, (&bindRecorder{}).bind)
	_, err = bus.ReadFromAddr(ctx, 0x39, make([]byte, 6))
	assert.ErrorContains(t, err, "remote I/O error")

	require.NoError(t, bus.Close())
	assert.True(t, f.closed)
}

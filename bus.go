package proxlight

import (
	"context"
	"io"
)

// AddressableReader reads len(buffer) bytes from the device at address and
// reports how many bytes the bus actually delivered.
type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) (int, error)
}

// AddressableWriter writes buffer to the device at address and reports how
// many bytes were accepted.
type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) (int, error)
	Release(ctx context.Context) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// I2CBusCloser is an I2CBus owned by a single caller that must be closed
// when the session ends.
type I2CBusCloser interface {
	I2CBus
	io.Closer
}

package proxlight

import "errors"

var ErrBusBusy = errors.New("I2C engine is busy (command not completed)")

var (
	// ErrBusOpen is returned when the bus handle could not be acquired.
	ErrBusOpen = errors.New("could not open bus")
	// ErrShortRead is returned when a block read delivered fewer bytes than requested.
	ErrShortRead = errors.New("input/output error")
	// ErrWrite is returned when a write transaction failed or was truncated.
	ErrWrite = errors.New("write transaction failed")
)

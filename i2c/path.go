package i2c

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBus is the character device of the first user-accessible bus on a Raspberry Pi.
const DefaultBus = "/dev/i2c-1"

const devicePrefix = "/dev/i2c-"

// BusNumber extracts the adapter number from a /dev/i2c-N path. A bare number is accepted too.
func BusNumber(dev string) (int, error) {
	number, err := strconv.Atoi(strings.TrimPrefix(dev, devicePrefix))
	if err != nil || number < 0 {
		return 0, fmt.Errorf("invalid i2c bus %q", dev)
	}
	return number, nil
}

package i2c

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusNumber(t *testing.T) {
	tests := []struct {
		given    string
		expected int
		wantErr  bool
	}{
		{given: DefaultBus, expected: 1},
		{given: "/dev/i2c-0", expected: 0},
		{given: "/dev/i2c-22", expected: 22},
		{given: "3", expected: 3},
		{given: "/dev/spidev0.0", wantErr: true},
		{given: "/dev/i2c--1", wantErr: true},
		{given: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.given, func(t *testing.T) {
			number, err := BusNumber(tt.given)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, number)
		})
	}
}

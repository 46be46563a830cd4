package environment

import (
	"encoding/binary"
	"fmt"

	"github.com/mklimuk/proxlight"
)

// RawSample holds the three little-endian counters of the TMD2771 data block.
type RawSample struct {
	Channel0  uint16
	Channel1  uint16
	Proximity uint16
}

// DecodeSample interprets the 6-byte data block. Any other length is a short read.
func DecodeSample(data []byte) (RawSample, error) {
	if len(data) != tmd2771SampleSize {
		return RawSample{}, fmt.Errorf("%w: got %d of %d bytes", proxlight.ErrShortRead, len(data), tmd2771SampleSize)
	}
	return RawSample{
		Channel0:  binary.LittleEndian.Uint16(data[0:2]),
		Channel1:  binary.LittleEndian.Uint16(data[2:4]),
		Proximity: binary.LittleEndian.Uint16(data[4:6]),
	}, nil
}

// Bytes encodes the sample the way the sensor lays it out on the wire.
func (r RawSample) Bytes() []byte {
	buf := make([]byte, tmd2771SampleSize)
	binary.LittleEndian.PutUint16(buf[0:2], r.Channel0)
	binary.LittleEndian.PutUint16(buf[2:4], r.Channel1)
	binary.LittleEndian.PutUint16(buf[4:6], r.Proximity)
	return buf
}

// Reading is a converted TMD2771 measurement.
type Reading struct {
	Lux       float64
	Proximity float64
}

func NewReading(sample RawSample) Reading {
	return Reading{
		Lux:       Luminance(sample.Channel0, sample.Channel1),
		Proximity: float64(sample.Proximity),
	}
}

// Luminance picks between the two vendor lux equations. The winner has to be
// positive and strictly greater than the other one, otherwise it is 0.
func Luminance(channel0, channel1 uint16) float64 {
	c0, c1 := float64(channel0), float64(channel1)
	// the explicit conversions stop the products from being fused into the subtraction
	lux1 := (float64(1.0*c0) - float64(2.0*c1)) / CountsPerLux
	lux2 := (float64(0.6*c0) - float64(1.0*c1)) / CountsPerLux
	switch {
	case lux1 > 0 && lux1 > lux2:
		return lux1
	case lux2 > 0 && lux2 > lux1:
		return lux2
	default:
		return 0.0
	}
}

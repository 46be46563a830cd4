package environment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mklimuk/proxlight"
)

// TMD2771Address is the fixed 7-bit bus address of the TMD2771.
const TMD2771Address = 0x39

// The command bit has to be set on every register pointer write.
const tmd2771CommandBit byte = 0xA0

// Register map
const (
	tmd2771RegEnable  byte = 0x00
	tmd2771RegATime   byte = 0x01
	tmd2771RegPTime   byte = 0x02
	tmd2771RegWTime   byte = 0x03
	tmd2771RegPPulse  byte = 0x0E
	tmd2771RegControl byte = 0x0F
	tmd2771RegID      byte = 0x12
	tmd2771RegStatus  byte = 0x13
	// CH0 low byte, followed by CH0 high, CH1 low/high and PDATA low/high
	tmd2771RegData byte = 0x14
)

// ENABLE register bits
const (
	tmd2771EnablePON byte = 0x01
	tmd2771EnableAEN byte = 0x02
	tmd2771EnablePEN byte = 0x04
	tmd2771EnableWEN byte = 0x08
)

// STATUS register bits
const (
	tmd2771StatusAValid byte = 0x01
	tmd2771StatusPValid byte = 0x02
	tmd2771StatusAInt   byte = 0x10
	tmd2771StatusPInt   byte = 0x20
)

const (
	// 256 - 0xDB = 37 cycles of 2.72ms
	tmd2771ATime101ms      byte = 0xDB
	tmd2771PTime2ms72      byte = 0xFF
	tmd2771WTime2ms72      byte = 0xFF
	tmd2771ProximityPulses byte = 0x04
	// 100% LED drive, proximity on CH1 diode, 1x proximity gain, 1x ALS gain
	tmd2771ControlDefault byte = 0x20
)

// ALS settings applied by the init sequence. CountsPerLux and SettleDelay
// are derived from them and must stay in sync with ATIME and CONTROL.
const (
	alsIntegrationTime = 101 * time.Millisecond
	alsGain            = 1.0
	alsDeviceFactor    = 24.0
	settleCycles       = 10
)

// CountsPerLux normalizes raw channel counts for the configured integration time and gain.
const CountsPerLux = float64(alsIntegrationTime/time.Millisecond) * alsGain / alsDeviceFactor

// SettleDelay is the pause after configuration before the first data read.
const SettleDelay = settleCycles * alsIntegrationTime

const tmd2771SampleSize = 6

// RegisterWrite is a single register configuration transaction.
type RegisterWrite struct {
	Register byte
	Value    byte
}

// Bytes returns the wire form of the write: command pointer followed by the value.
func (w RegisterWrite) Bytes() []byte {
	return []byte{tmd2771CommandBit | w.Register, w.Value}
}

var tmd2771InitSequence = []RegisterWrite{
	{tmd2771RegEnable, tmd2771EnablePON | tmd2771EnableAEN | tmd2771EnablePEN | tmd2771EnableWEN},
	{tmd2771RegATime, tmd2771ATime101ms},
	{tmd2771RegPTime, tmd2771PTime2ms72},
	{tmd2771RegWTime, tmd2771WTime2ms72},
	{tmd2771RegPPulse, tmd2771ProximityPulses},
	{tmd2771RegControl, tmd2771ControlDefault},
}

// TMD2771InitSequence returns the ordered register writes issued by Configure.
func TMD2771InitSequence() []RegisterWrite {
	seq := make([]RegisterWrite, len(tmd2771InitSequence))
	copy(seq, tmd2771InitSequence)
	return seq
}

func tmd2771RegisterName(reg byte) string {
	switch reg {
	case tmd2771RegEnable:
		return "ENABLE"
	case tmd2771RegATime:
		return "ATIME"
	case tmd2771RegPTime:
		return "PTIME"
	case tmd2771RegWTime:
		return "WTIME"
	case tmd2771RegPPulse:
		return "PPULSE"
	case tmd2771RegControl:
		return "CONTROL"
	case tmd2771RegID:
		return "ID"
	case tmd2771RegStatus:
		return "STATUS"
	case tmd2771RegData:
		return "C0DATA"
	default:
		return fmt.Sprintf("0x%02x", reg)
	}
}

type TMD2771Opts struct {
	SettleDelay time.Duration
}

type TMD2771Opt func(*TMD2771Opts)

func WithSettleDelay(delay time.Duration) TMD2771Opt {
	return func(o *TMD2771Opts) {
		o.SettleDelay = delay
	}
}

// TMD2771 represents an ams/TAOS TMD2771 ambient light and proximity sensor.
// Typical usage:
//
//	s := NewTMD2771(bus)
//	err := s.Configure(ctx)
//	r, err := s.Read(ctx)
type TMD2771 struct {
	transport proxlight.I2CBus
	addr      byte
	config    TMD2771Opts
	buf       []byte
}

func NewTMD2771(transport proxlight.I2CBus, opts ...TMD2771Opt) *TMD2771 {
	config := TMD2771Opts{
		SettleDelay: SettleDelay,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &TMD2771{
		transport: transport,
		addr:      TMD2771Address,
		config:    config,
		buf:       make([]byte, tmd2771SampleSize),
	}
}

// Configure powers the sensor on, applies the fixed timing, pulse and gain
// settings and waits for the first integration cycle to complete.
func (s *TMD2771) Configure(ctx context.Context) error {
	for _, w := range tmd2771InitSequence {
		err := s.write(ctx, w.Bytes())
		if err != nil {
			return fmt.Errorf("tmd2771: could not set %s register: %w", tmd2771RegisterName(w.Register), err)
		}
		slog.DebugContext(ctx, "tmd2771 register set", "register", tmd2771RegisterName(w.Register), "value", fmt.Sprintf("0x%02x", w.Value))
	}
	return sleep(ctx, s.config.SettleDelay)
}

// Sample reads the raw channel and proximity counts.
func (s *TMD2771) Sample(ctx context.Context) (RawSample, error) {
	err := s.write(ctx, []byte{tmd2771CommandBit | tmd2771RegData})
	if err != nil {
		return RawSample{}, fmt.Errorf("tmd2771: could not select data register: %w", err)
	}
	n, err := s.transport.ReadFromAddr(ctx, s.addr, s.buf)
	if err != nil {
		return RawSample{}, fmt.Errorf("tmd2771: could not read data: %w: %w", proxlight.ErrShortRead, err)
	}
	if n < 0 || n > len(s.buf) {
		return RawSample{}, fmt.Errorf("tmd2771: bus reported %d bytes for a %d byte read: %w", n, len(s.buf), proxlight.ErrShortRead)
	}
	sample, err := DecodeSample(s.buf[:n])
	if err != nil {
		return RawSample{}, fmt.Errorf("tmd2771: %w", err)
	}
	return sample, nil
}

// Read samples the sensor and converts the result into lux and proximity.
// The sensor has to be configured first.
func (s *TMD2771) Read(ctx context.Context) (Reading, error) {
	sample, err := s.Sample(ctx)
	if err != nil {
		return Reading{}, err
	}
	return NewReading(sample), nil
}

// PowerOff clears the ENABLE register which stops both ALS and proximity engines.
func (s *TMD2771) PowerOff(ctx context.Context) error {
	err := s.write(ctx, RegisterWrite{tmd2771RegEnable, 0x00}.Bytes())
	if err != nil {
		return fmt.Errorf("tmd2771: could not clear ENABLE register: %w", err)
	}
	return nil
}

type TMD2771Status struct {
	ALSValid           bool `yaml:"als_valid"`
	ProximityValid     bool `yaml:"proximity_valid"`
	ALSInterrupt       bool `yaml:"als_interrupt"`
	ProximityInterrupt bool `yaml:"proximity_interrupt"`
}

func decodeTMD2771Status(status byte) TMD2771Status {
	return TMD2771Status{
		ALSValid:           status&tmd2771StatusAValid != 0,
		ProximityValid:     status&tmd2771StatusPValid != 0,
		ALSInterrupt:       status&tmd2771StatusAInt != 0,
		ProximityInterrupt: status&tmd2771StatusPInt != 0,
	}
}

type TMD2771Info struct {
	Address string        `yaml:"address"`
	ID      string        `yaml:"id"`
	Part    string        `yaml:"part"`
	Enable  string        `yaml:"enable"`
	Status  TMD2771Status `yaml:"status"`
}

func tmd2771PartName(id byte) string {
	switch id {
	case 0x20:
		return "TMD27711"
	case 0x29:
		return "TMD27713"
	default:
		return "unknown"
	}
}

// DeviceInfo reads the identification, enable and status registers.
func (s *TMD2771) DeviceInfo(ctx context.Context) (TMD2771Info, error) {
	id, err := s.readRegister(ctx, tmd2771RegID)
	if err != nil {
		return TMD2771Info{}, err
	}
	enable, err := s.readRegister(ctx, tmd2771RegEnable)
	if err != nil {
		return TMD2771Info{}, err
	}
	status, err := s.readRegister(ctx, tmd2771RegStatus)
	if err != nil {
		return TMD2771Info{}, err
	}
	return TMD2771Info{
		Address: fmt.Sprintf("0x%02x", s.addr),
		ID:      fmt.Sprintf("0x%02x", id),
		Part:    tmd2771PartName(id),
		Enable:  fmt.Sprintf("0b%08b", enable),
		Status:  decodeTMD2771Status(status),
	}, nil
}

func (s *TMD2771) readRegister(ctx context.Context, reg byte) (byte, error) {
	err := s.write(ctx, []byte{tmd2771CommandBit | reg})
	if err != nil {
		return 0, fmt.Errorf("tmd2771: could not select %s register: %w", tmd2771RegisterName(reg), err)
	}
	resp := make([]byte, 1)
	n, err := s.transport.ReadFromAddr(ctx, s.addr, resp)
	if err != nil {
		return 0, fmt.Errorf("tmd2771: could not read %s register: %w: %w", tmd2771RegisterName(reg), proxlight.ErrShortRead, err)
	}
	if n != len(resp) {
		return 0, fmt.Errorf("tmd2771: could not read %s register (%d bytes): %w", tmd2771RegisterName(reg), n, proxlight.ErrShortRead)
	}
	return resp[0], nil
}

func (s *TMD2771) write(ctx context.Context, data []byte) error {
	n, err := s.transport.WriteToAddr(ctx, s.addr, data)
	if err != nil {
		return fmt.Errorf("%w: %w", proxlight.ErrWrite, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: wrote %d of %d bytes", proxlight.ErrWrite, n, len(data))
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

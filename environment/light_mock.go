package environment

import (
	"context"
)

// ReadingBehaviorFunc defines the function signature for proximity/light sensor behavior.
// It returns the converted reading or an error.
type ReadingBehaviorFunc func(ctx context.Context) (Reading, error)

// MockProximityLightSensor is a mock implementation of a combined light and
// proximity sensor that uses a behavior function to produce results without
// requiring any hardware. It can stand in for TMD2771.
type MockProximityLightSensor struct {
	behavior  ReadingBehaviorFunc
	configure func(ctx context.Context) error
}

// NewMockProximityLightSensor creates a new mock sensor with the given behavior function.
// The behavior function is called whenever Read is invoked.
//
// Example usage:
//
//	// Static value
//	sensor := NewMockProximityLightSensor(func(ctx context.Context) (Reading, error) {
//		return Reading{Lux: 142.57, Proximity: 12}, nil
//	})
//
//	// Short read simulation
//	sensor := NewMockProximityLightSensor(func(ctx context.Context) (Reading, error) {
//		return Reading{}, proxlight.ErrShortRead
//	})
func NewMockProximityLightSensor(behavior ReadingBehaviorFunc) *MockProximityLightSensor {
	return &MockProximityLightSensor{
		behavior: behavior,
	}
}

// OnConfigure sets the function invoked by Configure. Without it Configure succeeds.
func (m *MockProximityLightSensor) OnConfigure(configure func(ctx context.Context) error) *MockProximityLightSensor {
	m.configure = configure
	return m
}

func (m *MockProximityLightSensor) Configure(ctx context.Context) error {
	if m.configure == nil {
		return nil
	}
	return m.configure(ctx)
}

// Read returns the reading produced by the behavior function.
func (m *MockProximityLightSensor) Read(ctx context.Context) (Reading, error) {
	return m.behavior(ctx)
}

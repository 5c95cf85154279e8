package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// NumInterruptScales is the number of schedulable interrupt sources that
// carry a timing scale.
const NumInterruptScales = 15

// TimingConfig holds the cycle accounting parameters of the core.
type TimingConfig struct {
	// CycleBias is the number of cycles charged per executed instruction.
	// Default: 2 cycles.
	CycleBias uint64 `json:"cycle_bias"`

	// MultiplyLatency is charged on top of CycleBias for MULT/MULTU.
	// Default: 0 cycles (results are visible immediately).
	MultiplyLatency uint64 `json:"multiply_latency"`

	// DivideLatency is charged on top of CycleBias for DIV/DIVU.
	// Default: 0 cycles.
	DivideLatency uint64 `json:"divide_latency"`

	// InterruptScales multiplies the delay passed when an interrupt source
	// is scheduled. Default: 1.0 for every source.
	InterruptScales [NumInterruptScales]float32 `json:"interrupt_scales"`
}

// DefaultTimingConfig returns a TimingConfig with the stock values.
func DefaultTimingConfig() *TimingConfig {
	c := &TimingConfig{
		CycleBias: 2,
	}
	for i := range c.InterruptScales {
		c.InterruptScales[i] = 1.0
	}
	return c
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from the
// file keep their default value.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration can drive the scheduler.
func (c *TimingConfig) Validate() error {
	if c.CycleBias == 0 {
		return fmt.Errorf("cycle_bias must be > 0")
	}
	for i, s := range c.InterruptScales {
		if !(s > 0) {
			return fmt.Errorf("interrupt_scales[%d] must be > 0, got %v", i, s)
		}
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}

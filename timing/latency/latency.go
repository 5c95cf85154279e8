// Package latency provides the cycle accounting model of the core.
//
// Only the coarse per-instruction cost is modeled: a fixed bias per
// instruction plus optional multiply/divide surcharges. The values can be
// configured via TimingConfig.
package latency

import (
	"github.com/sarchlab/r3ksim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Cycles returns the number of cycles charged for the instruction word.
func (t *Table) Cycles(word uint32) uint64 {
	if word>>26 != insts.PrimarySpecial {
		return t.config.CycleBias
	}
	switch word & 0x3f {
	case 0x18, 0x19:
		return t.config.CycleBias + t.config.MultiplyLatency
	case 0x1a, 0x1b:
		return t.config.CycleBias + t.config.DivideLatency
	default:
		return t.config.CycleBias
	}
}

// Bias returns the per-instruction cycle cost.
func (t *Table) Bias() uint64 {
	return t.config.CycleBias
}

// InterruptScale returns the scheduling scale of an interrupt source.
// Unknown sources scale by 1.
func (t *Table) InterruptScale(source int) float32 {
	if source < 0 || source >= NumInterruptScales {
		return 1
	}
	return t.config.InterruptScales[source]
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

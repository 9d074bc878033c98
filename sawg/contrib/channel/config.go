// Copyright 2025 go-sawg Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package channel

import (
	"fmt"

	"github.com/ajroetker/go-sawg/sawg"
	"github.com/samber/lo"
)

// Field identifies a configuration register.
type Field int

const (
	FieldDivider Field = iota
	FieldClear
	FieldIQEnable
	FieldPad
	FieldLimit0Min
	FieldLimit0Max
	FieldLimit1Min
	FieldLimit1Max
	FieldLimit2Min
	FieldLimit2Max
)

// Stage indices of the saturating combiners.
const (
	StageI      = 0 // pre-interpolation I combine
	StageQ      = 1 // pre-interpolation Q combine
	StageOutput = 2 // output combine
	numStages   = 3
)

// Clear register bits.
const (
	ClearA1 = 1 << iota
	ClearA2
	ClearB
	clearReserved
)

// IQ enable register bits.
const (
	EnableI = 1 << iota
	EnableQ
)

// Register is one entry of the configuration address map.
type Register struct {
	Name  string
	Addr  uint16
	Width int
	Field Field
}

// RegisterMap is the configuration address map. The divider entry also
// zeroes the enable counter when written.
var RegisterMap = []Register{
	{"divider", 0, 16, FieldDivider},
	{"clear", 1, 4, FieldClear},
	{"iq_enable", 2, 2, FieldIQEnable},
	{"pad", 3, 1, FieldPad},
	{"limit0_min", 4, 16, FieldLimit0Min},
	{"limit0_max", 5, 16, FieldLimit0Max},
	{"limit1_min", 6, 16, FieldLimit1Min},
	{"limit1_max", 7, 16, FieldLimit1Max},
	{"limit2_min", 8, 16, FieldLimit2Min},
	{"limit2_max", 9, 16, FieldLimit2Max},
}

// Snapshot is the register state seen by the pipeline in one cycle.
type Snapshot struct {
	CE       bool
	Clear    uint8
	IQEnable uint8
	Limits   [numStages]sawg.Limits
}

type pendingWrite struct {
	reg  Register
	data uint16
}

// Config is the channel's write-only register file. A write lands at the
// next edge whatever the clock enable does.
type Config struct {
	width  int
	byAddr map[uint16]Register

	divider  uint16
	counter  uint16
	clear    uint8
	iqEnable uint8
	pad      uint8
	limits   [numStages]sawg.Limits
	clipped  [numStages]sawg.Clip
	pending  *pendingWrite
}

// NewConfig returns a register file in its reset state for width-bit
// limits, addressed through regs.
func NewConfig(width int, regs []Register) (*Config, error) {
	byAddr := make(map[uint16]Register, len(regs))
	fields := make(map[Field]bool, len(regs))
	for _, r := range regs {
		if _, dup := byAddr[r.Addr]; dup {
			return nil, fmt.Errorf("register %s at %d: %w", r.Name, r.Addr, ErrDuplicateAddress)
		}
		if fields[r.Field] {
			return nil, fmt.Errorf("register %s maps field %d twice: %w", r.Name, r.Field, ErrDuplicateAddress)
		}
		byAddr[r.Addr] = r
		fields[r.Field] = true
	}
	c := &Config{
		width:    width,
		byAddr:   byAddr,
		clear:    ClearA1 | ClearA2 | ClearB | clearReserved,
		iqEnable: EnableI,
	}
	for i := range c.limits {
		c.limits[i] = sawg.FullRange(width)
	}
	return c, nil
}

// Write queues a register write for the next edge. At most one write is
// accepted per cycle.
func (c *Config) Write(addr, data uint16) error {
	r, ok := c.byAddr[addr]
	if !ok {
		return fmt.Errorf("address %d: %w", addr, ErrAddress)
	}
	if c.pending != nil {
		return fmt.Errorf("write to %s while %s is pending: %w", r.Name, c.pending.reg.Name, ErrWriteConflict)
	}
	c.pending = &pendingWrite{reg: r, data: data}
	return nil
}

// Step returns the registers of the current cycle and clocks the file:
// the enable counter counts down and reloads from the divider when it
// expires, then a pending write lands.
func (c *Config) Step() Snapshot {
	s := Snapshot{
		CE:       c.counter == 0,
		Clear:    c.clear,
		IQEnable: c.iqEnable,
		Limits:   c.limits,
	}
	c.counter--
	if s.CE {
		c.counter = c.divider
	}
	if w := c.pending; w != nil {
		c.apply(w.reg, w.data)
		c.pending = nil
	}
	return s
}

func (c *Config) apply(r Register, data uint16) {
	v := sawg.Mask(uint64(data), r.Width)
	switch r.Field {
	case FieldDivider:
		c.divider = uint16(v)
		c.counter = 0
	case FieldClear:
		c.clear = uint8(v)
	case FieldIQEnable:
		c.iqEnable = uint8(v)
	case FieldPad:
		c.pad = uint8(v)
	default:
		stage, bound := int(r.Field-FieldLimit0Min)/2, int(r.Field-FieldLimit0Min)%2
		limit := sawg.Wrap(int64(v), min(c.width, r.Width))
		if bound == 0 {
			c.limits[stage].Min = limit
		} else {
			c.limits[stage].Max = limit
		}
	}
}

// Divider returns the clock enable divider.
func (c *Config) Divider() uint16 { return c.divider }

// Limits returns the limits of a combiner stage.
func (c *Config) Limits(stage int) sawg.Limits { return c.limits[stage] }

// Clipped returns the clip flags of a combiner stage from the latest cycle.
func (c *Config) Clipped(stage int) sawg.Clip { return c.clipped[stage] }

// SetClipped records the clip flags of a combiner stage.
func (c *Config) SetClipped(stage int, clip sawg.Clip) { c.clipped[stage] = clip }

// RegisterNames returns the register names in address order.
func RegisterNames() []string {
	return lo.Map(RegisterMap, func(r Register, _ int) string { return r.Name })
}

// LookupRegister returns the register called name.
func LookupRegister(name string) (Register, bool) {
	return lo.Find(RegisterMap, func(r Register) bool { return r.Name == name })
}

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
	"errors"
	"fmt"
	"log/slog"

	"github.com/ajroetker/go-sawg/sawg"
	"github.com/ajroetker/go-sawg/sawg/contrib/dds"
	"github.com/ajroetker/go-sawg/sawg/contrib/fir"
	"github.com/ajroetker/go-sawg/sawg/contrib/spline"
)

var (
	// ErrAddress reports a write to an unmapped register address.
	ErrAddress = errors.New("unknown register address")

	// ErrDuplicateAddress reports an address map that maps an address or
	// a field twice.
	ErrDuplicateAddress = errors.New("duplicate register address")

	// ErrWriteConflict reports a second register write in one cycle.
	ErrWriteConflict = errors.New("register write conflict")

	// ErrMismatch reports channels or stages whose widths or lane counts
	// do not compose.
	ErrMismatch = errors.New("channel mismatch")

	// ErrAlreadyConnected reports a Q input that already has a source.
	ErrAlreadyConnected = errors.New("q input already connected")

	// ErrPort reports an unknown input port.
	ErrPort = errors.New("unknown port")
)

// Interpolator design of the channel.
const (
	firWidth = 0.4
	firOrder = 8
	firShift = 17
)

// Channel is one AWG channel: two spline-driven tone generators summed
// into I/Q, interpolated to the channel parallelism, up-converted by a
// spline-driven DUC and offset by a spline.
//
// A Channel is clocked either by Step or, when channels exchange Q
// samples, by Eval on every channel followed by Commit on every channel.
// A Channel is not safe for concurrent use.
type Channel struct {
	width       int
	parallelism int
	widths      dds.Widths
	orders      dds.Orders
	logger      *slog.Logger

	cfg    *Config
	a1, a2 *dds.SplineDDS
	b      *dds.SplineDUC
	hbf    [2]*fir.Upsampler
	u      *spline.Spline
	du     *sawg.Delay[int64]

	pre  *sawg.Combiner
	post *sawg.Combiner

	hbfIn  [2]int64
	out    []int64
	source *Channel

	// results of the latest Eval
	snap Snapshot
	bx   []int64
	by   []int64
	offs int64
	plan Plan
}

// New builds a channel. The defaults are 16-bit samples, four lanes per
// cycle, orders {A: 4, P: 1, F: 2} and the widths derived from them.
func New(opts ...Option) (*Channel, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	w := o.widths
	if w == nil {
		w = &dds.Widths{
			T: o.width,
			A: o.orders.A * o.width,
			P: o.orders.P * o.width,
			F: (o.orders.F + 2) * o.width,
		}
	}

	c := &Channel{
		width:       o.width,
		parallelism: o.parallelism,
		widths:      *w,
		orders:      o.orders,
		logger:      o.logger,
	}
	if err := c.build(); err != nil {
		return nil, err
	}
	c.logger.Debug("channel built",
		slog.Int("width", c.width),
		slog.Int("parallelism", c.parallelism),
		slog.Int("latency", c.plan.Latency),
		slog.String("amplitude", c.plan.Amplitude.String()),
		slog.String("phase", c.plan.Phase.String()),
		slog.String("offset", c.plan.Offset.String()),
		slog.Float64("cordic_gain", c.CordicGain()))
	return c, nil
}

func (c *Channel) build() error {
	var err error
	if c.cfg, err = NewConfig(c.width, RegisterMap); err != nil {
		return err
	}
	if c.a1, err = dds.NewSplineDDS(c.widths, c.orders, 1, 0); err != nil {
		return fmt.Errorf("a1: %w", err)
	}
	if c.a2, err = dds.NewSplineDDS(c.widths, c.orders, 1, 0); err != nil {
		return fmt.Errorf("a2: %w", err)
	}
	if gw := c.a1.Widths().A; gw != c.width {
		return fmt.Errorf("generator output width %d, channel width %d: %w", gw, c.width, ErrMismatch)
	}
	for i := range c.hbf {
		if c.hbf[i], err = fir.NewHalfBandUpsampler(c.parallelism, firWidth, firOrder, c.width, firShift); err != nil {
			return fmt.Errorf("interpolator: %w", err)
		}
	}

	toDUC := sawg.Path{
		{Name: "a1", Latency: c.a1.Latency()},
		{Name: "combine", Latency: 1},
		{Name: "fir", Latency: c.hbf[0].Latency()},
	}
	bw := c.widths
	bw.A = c.width
	bw.F = c.widths.F - c.width
	if c.b, err = dds.NewSplineDUC(bw, c.orders, c.parallelism, -toDUC.Latency()); err != nil {
		return fmt.Errorf("b: %w", err)
	}
	if c.b.Parallelism() != c.hbf[0].Parallelism() {
		return fmt.Errorf("duc lanes %d, interpolator lanes %d: %w",
			c.b.Parallelism(), c.hbf[0].Parallelism(), ErrMismatch)
	}

	if c.u, err = spline.New(c.orders.A, c.widths.A, c.widths.T); err != nil {
		return fmt.Errorf("u: %w", err)
	}
	if c.pre, err = sawg.NewCombiner(c.width, 2); err != nil {
		return err
	}
	if c.post, err = sawg.NewCombiner(c.width, 3); err != nil {
		return err
	}

	if c.plan, err = solve(toDUC, c.b, c.u); err != nil {
		return err
	}
	c.du = sawg.NewDelay[int64](c.plan.OffsetDelay)
	c.out = make([]int64, c.parallelism)
	c.bx = make([]int64, c.parallelism)
	c.by = make([]int64, c.parallelism)
	return nil
}

// Width returns the sample width.
func (c *Channel) Width() int { return c.width }

// Parallelism returns the number of output lanes per cycle.
func (c *Channel) Parallelism() int { return c.parallelism }

// Widths returns the tone generator widths.
func (c *Channel) Widths() dds.Widths { return c.widths }

// Orders returns the spline orders.
func (c *Channel) Orders() dds.Orders { return c.orders }

// Latency returns the cycles from an accepted segment to the output, as
// seen on lane 0. Tone generator changes reach lanes 1 and up a few cycles
// earlier through the interpolator taps that look ahead of lane 0.
func (c *Channel) Latency() int { return c.plan.Latency }

// Plan returns the solved latency plan.
func (c *Channel) Plan() Plan { return c.plan }

// CordicGain returns the combined rotator gain of a tone generator and the
// up-converter.
func (c *Channel) CordicGain() float64 { return c.a1.Gain() * c.b.Gain() }

// Config returns the register file.
func (c *Channel) Config() *Config { return c.cfg }

// Clipped returns the clip flags of a combiner stage from the latest cycle.
func (c *Channel) Clipped(stage int) sawg.Clip { return c.cfg.Clipped(stage) }

// WriteConfig writes a configuration register. The write lands at the next
// edge.
func (c *Channel) WriteConfig(addr, data uint16) error {
	return c.cfg.Write(addr, data)
}

// WriteSpline offers a segment to a spline input. It returns false while
// the spline still holds a segment that has not been accepted.
func (c *Channel) WriteSpline(p Port, seg spline.Segment) (bool, error) {
	s, err := c.spline(p)
	if err != nil {
		return false, err
	}
	return s.Write(seg)
}

// Spline returns the spline behind an input port.
func (c *Channel) Spline(p Port) (*spline.Spline, error) { return c.spline(p) }

func (c *Channel) spline(p Port) (*spline.Spline, error) {
	switch p {
	case PortOffset:
		return c.u, nil
	case PortAmp1:
		return c.a1.Amplitude(), nil
	case PortFreq1:
		return c.a1.Frequency(), nil
	case PortPhase1:
		return c.a1.Phase(), nil
	case PortAmp2:
		return c.a2.Amplitude(), nil
	case PortFreq2:
		return c.a2.Frequency(), nil
	case PortPhase2:
		return c.a2.Phase(), nil
	case PortFreq0:
		return c.b.Frequency(), nil
	case PortPhase0:
		return c.b.Phase(), nil
	}
	return nil, fmt.Errorf("port %s has no spline: %w", p, ErrPort)
}

// ConnectY makes buddy's Q input the up-converter Q output of c in the same
// cycle. A Q input has at most one source.
func (c *Channel) ConnectY(buddy *Channel) error {
	if buddy.source != nil {
		return fmt.Errorf("buddy already fed by another channel: %w", ErrAlreadyConnected)
	}
	if buddy.width != c.width || buddy.parallelism != c.parallelism {
		return fmt.Errorf("%d bits x %d lanes into %d bits x %d lanes: %w",
			c.width, c.parallelism, buddy.width, buddy.parallelism, ErrMismatch)
	}
	buddy.source = c
	return nil
}

// Output returns a copy of the output register.
func (c *Channel) Output() []int64 {
	return append([]int64(nil), c.out...)
}

// QOutput returns the up-converter Q lanes of the latest Eval.
func (c *Channel) QOutput() []int64 {
	return append([]int64(nil), c.by...)
}

// Eval computes one cycle of everything but the output register. The
// pre-interpolation combine register is updated here.
func (c *Channel) Eval() {
	s := c.cfg.Step()
	c.snap = s

	x1, y1 := c.a1.Step(dds.Control{CE: s.CE, Clear: s.Clear&ClearA1 != 0})
	x2, y2 := c.a2.Step(dds.Control{CE: s.CE, Clear: s.Clear&ClearA2 != 0})

	i := c.hbf[0].Step(c.hbfIn[0])
	q := c.hbf[1].Step(c.hbfIn[1])

	var clip sawg.Clip
	c.hbfIn[0], clip = c.pre.Add(s.Limits[StageI], x1[0], x2[0])
	c.cfg.SetClipped(StageI, clip)
	c.hbfIn[1], clip = c.pre.Add(s.Limits[StageQ], y1[0], y2[0])
	c.cfg.SetClipped(StageQ, clip)

	c.bx, c.by = c.b.Step(dds.Control{CE: s.CE, Clear: s.Clear&ClearB != 0}, i, q)

	uo, _ := c.u.Step(s.CE)
	c.offs = c.du.Step(sawg.EqHigh(uo.Value, c.u.OutputWidth(), c.width))
}

// Commit updates the output register from the latest Eval and the Q
// output of the connected source, which must have been evaluated in the
// same cycle.
func (c *Channel) Commit() {
	y := sawg.Zero[int64](c.parallelism)
	if c.source != nil {
		y = sawg.Load(c.source.by)
	}
	out, clip := c.post.Lanes(c.snap.Limits[StageOutput],
		sawg.Set(c.parallelism, c.offs),
		sawg.Select(c.snap.IQEnable&EnableI != 0, sawg.Load(c.bx)),
		sawg.Select(c.snap.IQEnable&EnableQ != 0, y))
	out.Store(c.out)
	c.cfg.SetClipped(StageOutput, clip)
}

// Step clocks a channel that takes no Q input from another channel and
// returns the output register of this cycle.
func (c *Channel) Step() []int64 {
	out := c.Output()
	c.Eval()
	c.Commit()
	return out
}

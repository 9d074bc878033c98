package channel

import (
	"fmt"
	"slices"

	"github.com/ajroetker/go-sawg/sawg"
	"github.com/ajroetker/go-sawg/sawg/contrib/dds"
	"github.com/ajroetker/go-sawg/sawg/contrib/spline"
)

// Plan is the latency plan of a channel: every path from a setpoint to the
// output register and the delay that aligns the offset spline.
type Plan struct {
	// Latency is the cycles from an accepted segment to the output.
	Latency int
	// Amplitude runs from the tone generators through the interpolator and
	// the up-converter.
	Amplitude sawg.Path
	// Phase runs from the up-converter frequency and phase splines.
	Phase sawg.Path
	// Offset runs from the offset spline through its alignment delay.
	Offset sawg.Path
	// OffsetDelay is the depth of the offset alignment delay.
	OffsetDelay int
}

func solve(toDUC sawg.Path, b *dds.SplineDUC, u *spline.Spline) (Plan, error) {
	amp := append(slices.Clone(toDUC),
		sawg.Stage{Name: "b", Latency: b.Latency()},
		sawg.Stage{Name: "output", Latency: 1})
	total := amp.Latency()

	phase := sawg.Path{
		{Name: "b phase", Latency: b.PhaseLatency()},
		{Name: "output", Latency: 1},
	}
	if phase.Latency() != total {
		return Plan{}, fmt.Errorf("phase path %s, amplitude path %s: %w", phase, amp, sawg.ErrLatency)
	}

	d, err := sawg.Align(total, sawg.Path{
		{Name: "u", Latency: u.Latency()},
		{Name: "output", Latency: 1},
	})
	if err != nil {
		return Plan{}, fmt.Errorf("offset: %w", err)
	}
	return Plan{
		Latency:   total,
		Amplitude: amp,
		Phase:     phase,
		Offset: sawg.Path{
			{Name: "u", Latency: u.Latency()},
			{Name: "delay", Latency: d},
			{Name: "output", Latency: 1},
		},
		OffsetDelay: d,
	}, nil
}

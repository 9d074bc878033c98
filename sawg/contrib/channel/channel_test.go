package channel

import (
	"bytes"
	"log/slog"
	"math"
	"slices"
	"testing"

	"github.com/ajroetker/go-sawg/sawg/contrib/dds"
	"github.com/ajroetker/go-sawg/sawg/contrib/fir"
	"github.com/ajroetker/go-sawg/sawg/contrib/spline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// one turn every 64 cycles on a 48-bit accumulator
const toneFreq = 1 << 42

func newChannel(t *testing.T, opts ...Option) *Channel {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func write(t *testing.T, c *Channel, p Port, seg ...int64) {
	t.Helper()
	ok, err := c.WriteSpline(p, spline.Segment(seg))
	require.NoError(t, err)
	require.True(t, ok, "spline %s refused the segment", p)
}

func run(c *Channel, cycles int) [][]int64 {
	out := make([][]int64, cycles)
	for i := range out {
		out[i] = c.Step()
	}
	return out
}

func TestDefaultLatencyPlan(t *testing.T) {
	c := newChannel(t)
	p := c.Plan()

	assert.Equal(t, 52, c.Latency())
	assert.Equal(t, "a1(20) -> combine(1) -> fir(12) -> b(18) -> output(1)", p.Amplitude.String())
	assert.Equal(t, p.Latency, p.Phase.Latency())
	assert.Equal(t, p.Latency, p.Offset.Latency())
	assert.Equal(t, 50, p.OffsetDelay)
	assert.InDelta(t, 1.6468*1.6468, c.CordicGain(), 1e-3)
	assert.Equal(t, 16, c.Width())
	assert.Equal(t, 4, c.Parallelism())
	assert.Equal(t, dds.Widths{T: 16, A: 64, P: 16, F: 64}, c.Widths())
}

func TestOffsetLatency(t *testing.T) {
	c := newChannel(t)
	write(t, c, PortOffset, 1000)
	out := run(c, c.Latency()+1)
	for n := range c.Latency() {
		require.Equal(t, []int64{0, 0, 0, 0}, out[n], "cycle %d", n)
	}
	assert.Equal(t, []int64{1000, 1000, 1000, 1000}, out[c.Latency()])
}

func TestAmplitudeLatency(t *testing.T) {
	c := newChannel(t)
	write(t, c, PortAmp1, 6000)
	out := run(c, c.Latency()+1)
	// lane 0 carries the interpolator input unchanged; the other lanes
	// interpolate towards newer samples
	for n := range c.Latency() {
		require.Zero(t, out[n][0], "cycle %d", n)
	}
	assert.InDelta(t, 6000*c.CordicGain(), float64(out[c.Latency()][0]), 8)
	early := out[c.Latency()-1]
	assert.Zero(t, early[0])
	assert.Greater(t, early[3], int64(6000))
}

func TestDUCPhaseLatency(t *testing.T) {
	c := newChannel(t)
	write(t, c, PortAmp1, 6000)
	out := run(c, 2*c.Latency())
	settled := out[len(out)-1]
	for _, v := range settled {
		require.InDelta(t, 6000*c.CordicGain(), float64(v), 8)
	}

	write(t, c, PortPhase0, -1<<15)
	out = run(c, c.Latency()+1)
	for n := range c.Latency() {
		require.Equal(t, settled, out[n], "cycle %d", n)
	}
	for lane, v := range out[c.Latency()] {
		assert.Equal(t, -settled[lane], v, "lane %d", lane)
	}
}

func TestClockEnableDivider(t *testing.T) {
	c := newChannel(t)
	require.NoError(t, c.WriteConfig(0, 3))
	// offset ramps by one on every enabled cycle
	write(t, c, PortOffset, 0, 1<<16)
	out := run(c, 200)

	var changes []int
	for n := 1; n < len(out); n++ {
		if out[n][0] != out[n-1][0] {
			assert.Equal(t, out[n-1][0]+1, out[n][0], "cycle %d", n)
			for lane := range out[n] {
				assert.Equal(t, out[n][0], out[n][lane], "cycle %d lane %d", n, lane)
			}
			changes = append(changes, n)
		}
	}
	require.Greater(t, len(changes), 30)
	assert.Equal(t, c.Latency()+1, changes[0])
	for i := 1; i < len(changes); i++ {
		assert.Equal(t, 4, changes[i]-changes[i-1])
	}
}

func TestEndToEndTone(t *testing.T) {
	c := newChannel(t)
	const fullScale = 32767
	amp := int64(math.Round(fullScale / (2 * c.CordicGain())))
	write(t, c, PortAmp1, amp)
	write(t, c, PortFreq1, toneFreq)
	run(c, 100)

	// 256 cycles of 4 lanes hold exactly 4 periods
	var samples []float64
	for _, o := range run(c, 256) {
		for _, v := range o {
			samples = append(samples, float64(v))
		}
	}
	lo, hi := samples[0], samples[0]
	var re, im, total float64
	for k, v := range samples {
		lo, hi = min(lo, v), max(hi, v)
		phi := 2 * math.Pi * 4 * float64(k) / float64(len(samples))
		re += v * math.Cos(phi)
		im += v * math.Sin(phi)
		total += v * v
	}
	assert.InEpsilon(t, fullScale/2, hi, 0.02)
	assert.InEpsilon(t, -fullScale/2, lo, 0.02)
	tone := 2 * (re*re + im*im) / float64(len(samples))
	assert.Greater(t, tone/total, 0.999, "energy outside the tone")
}

func TestSSBCancellation(t *testing.T) {
	c := newChannel(t)
	const amp = 4000
	write(t, c, PortAmp1, amp)
	write(t, c, PortFreq1, toneFreq)
	write(t, c, PortAmp2, amp)
	write(t, c, PortFreq2, -toneFreq)
	run(c, 100)

	var peak int64
	for range 256 {
		o := c.Step()
		for lane, q := range c.QOutput() {
			require.LessOrEqual(t, abs(q), int64(16), "lane %d Q = %d", lane, q)
		}
		for _, v := range o {
			peak = max(peak, abs(v))
		}
	}
	assert.InEpsilon(t, 2*amp*c.CordicGain(), float64(peak), 0.02)
}

func TestClearRegisterRouting(t *testing.T) {
	tests := []struct {
		name             string
		amp, freq, phase Port
		freqWord         int64
		bit              uint16
	}{
		{"a1", PortAmp1, PortFreq1, PortPhase1, 0x123456789ab, ClearA1},
		{"a2", PortAmp2, PortFreq2, PortPhase2, 0x123456789ab, ClearA2},
		{"b", PortAmp1, PortFreq0, PortPhase0, 0x12345678, ClearB},
	}
	// lane 0 of the first cycle that sees the rewritten phase
	phaseStep := func(t *testing.T, bits uint16, amp, freq, phase Port, freqWord int64) int64 {
		c := newChannel(t)
		require.NoError(t, c.WriteConfig(1, bits))
		write(t, c, amp, 6000)
		write(t, c, freq, freqWord)
		run(c, 100)
		write(t, c, phase, 0)
		return run(c, c.Latency()+1)[c.Latency()][0]
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full := 6000 * newChannel(t).CordicGain()
			restarted := phaseStep(t, tt.bit, tt.amp, tt.freq, tt.phase, tt.freqWord)
			assert.InDelta(t, full, float64(restarted), 8)

			others := (ClearA1 | ClearA2 | ClearB | clearReserved) &^ tt.bit
			for _, bits := range []uint16{0, others} {
				running := phaseStep(t, bits, tt.amp, tt.freq, tt.phase, tt.freqWord)
				assert.Greater(t, math.Abs(full-float64(running)), 1000.0,
					"clear %04b restarted the accumulator", bits)
			}
		})
	}
}

func TestClipped(t *testing.T) {
	t.Run("output high", func(t *testing.T) {
		c := newChannel(t)
		require.NoError(t, c.WriteConfig(9, 100))
		c.Step()
		write(t, c, PortOffset, 1000)
		out := run(c, c.Latency()+1)
		assert.Equal(t, []int64{100, 100, 100, 100}, out[c.Latency()])
		assert.True(t, c.Clipped(StageOutput).High())
		assert.False(t, c.Clipped(StageOutput).Low())
	})
	t.Run("output low", func(t *testing.T) {
		c := newChannel(t)
		require.NoError(t, c.WriteConfig(8, uint16(0xffff&-50)))
		c.Step()
		write(t, c, PortOffset, -1000)
		out := run(c, c.Latency()+1)
		assert.Equal(t, []int64{-50, -50, -50, -50}, out[c.Latency()])
		assert.True(t, c.Clipped(StageOutput).Low())
	})
	t.Run("pre-interpolation", func(t *testing.T) {
		c := newChannel(t)
		require.NoError(t, c.WriteConfig(5, 1000))
		write(t, c, PortAmp1, 5000)
		run(c, 30)
		assert.True(t, c.Clipped(StageI).High())
		assert.Zero(t, c.Clipped(StageQ))
	})
	t.Run("none", func(t *testing.T) {
		c := newChannel(t)
		write(t, c, PortOffset, 1000)
		run(c, 60)
		for stage := range numStages {
			assert.Zero(t, c.Clipped(stage), "stage %d", stage)
		}
	})
}

func TestConnectY(t *testing.T) {
	a, b := newChannel(t), newChannel(t)
	require.NoError(t, a.ConnectY(b))
	write(t, a, PortAmp1, 5000)
	write(t, a, PortFreq1, toneFreq)
	write(t, a, PortFreq0, 1<<28)
	require.NoError(t, b.WriteConfig(2, EnableQ))

	bank := NewBank(nil, a, b)
	var prevQ []int64
	nonzero := 0
	for n := range 200 {
		out := bank.Step()
		if n >= 2 {
			require.Equal(t, prevQ, out[1], "cycle %d", n)
			if slices.ContainsFunc(prevQ, func(q int64) bool { return q != 0 }) {
				nonzero++
			}
		}
		prevQ = a.QOutput()
	}
	assert.Greater(t, nonzero, 100)

	other := newChannel(t)
	assert.ErrorIs(t, other.ConnectY(b), ErrAlreadyConnected)
	narrow := newChannel(t, WithParallelism(2))
	assert.ErrorIs(t, a.ConnectY(narrow), ErrMismatch)
}

func TestPorts(t *testing.T) {
	assert.Equal(t, []string{"cfg", "u", "a1", "f1", "p1", "a2", "f2", "p2", "f0", "p0"}, Inputs())
	for i, name := range Inputs() {
		p, err := ParsePort(name)
		require.NoError(t, err)
		assert.Equal(t, Port(i), p)
	}
	_, err := ParsePort("x9")
	assert.ErrorIs(t, err, ErrPort)

	c := newChannel(t)
	_, err = c.WriteSpline(PortConfig, spline.Segment{1})
	assert.ErrorIs(t, err, ErrPort)
	s, err := c.Spline(PortFreq1)
	require.NoError(t, err)
	assert.Equal(t, 48, s.OutputWidth())
	_, err = c.WriteSpline(PortFreq1, spline.Segment{1, 2, 3})
	assert.ErrorIs(t, err, spline.ErrSegment)
}

func TestNewErrors(t *testing.T) {
	_, err := New(WithParallelism(3))
	assert.ErrorIs(t, err, fir.ErrParallelism)

	_, err = New(WithWidths(dds.Widths{T: 16, A: 56, P: 16, F: 64}))
	assert.ErrorIs(t, err, ErrMismatch)

	_, err = New(WithOrders(dds.Orders{A: 0, P: 1, F: 2}))
	assert.ErrorIs(t, err, spline.ErrOrder)

	_, err = New(WithOrders(dds.Orders{A: 4, P: 2, F: 2}))
	assert.ErrorIs(t, err, dds.ErrPhaseOrder)
}

func TestLoggerReceivesPlan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	newChannel(t, WithLogger(logger))
	assert.Contains(t, buf.String(), `"latency":52`)
	assert.Contains(t, buf.String(), `"msg":"channel built"`)
}

func BenchmarkChannelStep(b *testing.B) {
	c, err := New()
	if err != nil {
		b.Fatal(err)
	}
	c.WriteSpline(PortAmp1, spline.Segment{6000})
	c.WriteSpline(PortFreq1, spline.Segment{toneFreq})
	for b.Loop() {
		c.Step()
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

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

package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/ajroetker/go-sawg/sawg/contrib/channel"
	"github.com/ajroetker/go-sawg/sawg/contrib/dds"
	"github.com/ajroetker/go-sawg/sawg/contrib/spline"
	"github.com/ajroetker/go-sawg/sawg/contrib/workerpool"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ErrScenario reports a scenario file that does not describe a bank.
var ErrScenario = errors.New("invalid scenario")

// Scenario is the content of a scenario file.
type Scenario struct {
	Name        string        `yaml:"name"`
	Cycles      int           `yaml:"cycles"`
	Channels    []ChannelSpec `yaml:"channels"`
	Connections []Connection  `yaml:"connections"`
	Writes      []Write       `yaml:"writes"`
}

// ChannelSpec configures one channel. Zero fields keep the defaults.
type ChannelSpec struct {
	Width       int         `yaml:"width"`
	Parallelism int         `yaml:"parallelism"`
	Orders      *dds.Orders `yaml:"orders"`
}

// Connection feeds the Q output of channel From into channel To.
type Connection struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Write is a segment or register write issued ahead of cycle Cycle. A
// write the channel cannot take yet is retried on the following cycles.
type Write struct {
	Cycle   int     `yaml:"cycle"`
	Channel int     `yaml:"channel"`
	Port    string  `yaml:"port"`
	Coeffs  []int64 `yaml:"coeffs"`

	Register string  `yaml:"register"`
	Addr     *uint16 `yaml:"addr"`
	Data     int64   `yaml:"data"`
}

func (w Write) config() bool {
	return w.Port == "" || w.Port == channel.PortConfig.String()
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc, err := ParseScenario(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes and checks a scenario. Unknown keys are errors.
func ParseScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScenario, err)
	}
	if len(sc.Channels) == 0 {
		return nil, fmt.Errorf("no channels: %w", ErrScenario)
	}
	for i, w := range sc.Writes {
		if w.Channel < 0 || w.Channel >= len(sc.Channels) {
			return nil, fmt.Errorf("write %d: channel %d of %d: %w", i, w.Channel, len(sc.Channels), ErrScenario)
		}
		if w.Cycle < 0 {
			return nil, fmt.Errorf("write %d: negative cycle: %w", i, ErrScenario)
		}
		if w.config() {
			if (w.Register == "") == (w.Addr == nil) {
				return nil, fmt.Errorf("write %d: config writes take exactly one of register and addr: %w", i, ErrScenario)
			}
			if w.Register != "" {
				if _, ok := channel.LookupRegister(w.Register); !ok {
					return nil, fmt.Errorf("write %d: register %q: %w", i, w.Register, ErrScenario)
				}
			}
			continue
		}
		if _, err := channel.ParsePort(w.Port); err != nil {
			return nil, fmt.Errorf("write %d: %w", i, err)
		}
		if len(w.Coeffs) == 0 {
			return nil, fmt.Errorf("write %d: segment for %s has no coefficients: %w", i, w.Port, ErrScenario)
		}
	}
	return &sc, nil
}

// Build creates the bank of the scenario.
func (sc *Scenario) Build(pool *workerpool.Pool, logger *slog.Logger) (*channel.Bank, error) {
	channels := make([]*channel.Channel, len(sc.Channels))
	for i, spec := range sc.Channels {
		opts := []channel.Option{channel.WithLogger(logger.With(slog.Int("channel", i)))}
		if spec.Width != 0 {
			opts = append(opts, channel.WithWidth(spec.Width))
		}
		if spec.Parallelism != 0 {
			opts = append(opts, channel.WithParallelism(spec.Parallelism))
		}
		if spec.Orders != nil {
			opts = append(opts, channel.WithOrders(*spec.Orders))
		}
		c, err := channel.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		channels[i] = c
	}
	bank := channel.NewBank(pool, channels...)
	for _, conn := range sc.Connections {
		if err := bank.Connect(conn.From, conn.To); err != nil {
			return nil, err
		}
	}
	return bank, nil
}

// scheduler issues the writes of a scenario cycle by cycle.
type scheduler struct {
	bank   *channel.Bank
	queue  []Write
	logger *slog.Logger
}

func newScheduler(bank *channel.Bank, writes []Write, logger *slog.Logger) *scheduler {
	queue := slices.Clone(writes)
	slices.SortStableFunc(queue, func(a, b Write) int { return a.Cycle - b.Cycle })
	return &scheduler{bank: bank, queue: queue, logger: logger}
}

func (s *scheduler) issue(cycle int) error {
	kept := s.queue[:0]
	for _, w := range s.queue {
		if w.Cycle > cycle {
			kept = append(kept, w)
			continue
		}
		ok, err := s.write(w)
		if err != nil {
			return fmt.Errorf("channel %d: %w", w.Channel, err)
		}
		if !ok {
			s.logger.Debug("write deferred", slog.Int("cycle", cycle), slog.Int("channel", w.Channel),
				slog.String("port", w.Port), slog.String("register", w.Register))
			kept = append(kept, w)
		}
	}
	s.queue = kept
	return nil
}

func (s *scheduler) write(w Write) (bool, error) {
	c := s.bank.Channels()[w.Channel]
	if !w.config() {
		p, err := channel.ParsePort(w.Port)
		if err != nil {
			return false, err
		}
		return c.WriteSpline(p, spline.Segment(w.Coeffs))
	}
	addr := lo.FromPtr(w.Addr)
	if w.Register != "" {
		r, _ := channel.LookupRegister(w.Register)
		addr = r.Addr
	}
	err := c.WriteConfig(addr, uint16(w.Data))
	if errors.Is(err, channel.ErrWriteConflict) {
		return false, nil
	}
	return err == nil, err
}

// Simulate runs the scenario on pool and writes its CSV trace to out.
func Simulate(ctx context.Context, sc *Scenario, pool *workerpool.Pool, logger *slog.Logger, out io.Writer) error {
	if sc.Cycles <= 0 {
		return fmt.Errorf("cycles %d: %w", sc.Cycles, ErrScenario)
	}
	bank, err := sc.Build(pool, logger)
	if err != nil {
		return err
	}
	sched := newScheduler(bank, sc.Writes, logger)

	lanes := lo.Max(lo.Map(bank.Channels(), func(c *channel.Channel, _ int) int { return c.Parallelism() }))
	w := csv.NewWriter(out)
	header := append([]string{"cycle", "channel"},
		lo.Times(lanes, func(i int) string { return "lane" + strconv.Itoa(i) })...)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	err = bank.Run(ctx, sc.Cycles, sched.issue, func(f channel.Frame) error {
		for ch, samples := range f.Outputs {
			clear(row)
			row[0] = strconv.Itoa(f.Cycle)
			row[1] = strconv.Itoa(ch)
			for i, v := range samples {
				row[2+i] = strconv.FormatInt(v, 10)
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if n := len(sched.queue); n > 0 {
		logger.Warn("writes never issued", slog.Int("count", n))
	}
	logger.Info("scenario done", slog.Int("cycles", sc.Cycles), slog.Int("channels", len(bank.Channels())))
	return nil
}

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
	"context"
	"fmt"

	"github.com/ajroetker/go-sawg/sawg/contrib/workerpool"
	"golang.org/x/sync/errgroup"
)

// Bank clocks a set of channels that share one clock and may exchange Q
// samples. Each cycle evaluates every channel, then commits every channel,
// so a Q tap always sees its source's value of the same cycle.
type Bank struct {
	pool     *workerpool.Pool
	channels []*Channel
}

// Frame is the output of every channel of a bank for one cycle.
type Frame struct {
	Cycle   int
	Outputs [][]int64
}

// NewBank returns a bank stepping channels on pool. A nil pool steps the
// channels on the calling goroutine.
func NewBank(pool *workerpool.Pool, channels ...*Channel) *Bank {
	return &Bank{pool: pool, channels: channels}
}

// Channels returns the channels of the bank.
func (b *Bank) Channels() []*Channel { return b.channels }

// Connect feeds the up-converter Q output of channel from into the Q input
// of channel to.
func (b *Bank) Connect(from, to int) error {
	if from < 0 || from >= len(b.channels) || to < 0 || to >= len(b.channels) {
		return fmt.Errorf("connect %d -> %d in a bank of %d: %w", from, to, len(b.channels), ErrMismatch)
	}
	return b.channels[from].ConnectY(b.channels[to])
}

// Step clocks every channel once and returns their output registers of
// this cycle.
func (b *Bank) Step() [][]int64 {
	out := make([][]int64, len(b.channels))
	for i, c := range b.channels {
		out[i] = c.Output()
	}
	eval := func(i int) { b.channels[i].Eval() }
	commit := func(i int) { b.channels[i].Commit() }
	if b.pool == nil {
		for i := range b.channels {
			eval(i)
		}
		for i := range b.channels {
			commit(i)
		}
		return out
	}
	b.pool.Phases(len(b.channels), eval, commit)
	return out
}

// Run steps the bank for cycles cycles, handing every frame to sink on a
// separate goroutine. before, when not nil, is called ahead of every cycle
// to issue writes. Run stops at the first error from before or sink, or
// when ctx is done.
func (b *Bank) Run(ctx context.Context, cycles int, before func(cycle int) error, sink func(Frame) error) error {
	g, ctx := errgroup.WithContext(ctx)
	frames := make(chan Frame, 64)

	g.Go(func() error {
		defer close(frames)
		for n := range cycles {
			if err := ctx.Err(); err != nil {
				return err
			}
			if before != nil {
				if err := before(n); err != nil {
					return fmt.Errorf("cycle %d: %w", n, err)
				}
			}
			f := Frame{Cycle: n, Outputs: b.Step()}
			select {
			case frames <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	g.Go(func() error {
		for f := range frames {
			if err := sink(f); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}

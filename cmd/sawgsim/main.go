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

// Command sawgsim runs cycle-accurate simulations of AWG channel banks.
//
// Usage:
//
//	sawgsim run ssb.yaml --cycles 2000 --out traces/
//	sawgsim run a.yaml b.yaml --workers 4 -v
//	sawgsim info
//
// A scenario file lists the channels of a bank, the Q connections between
// them and the segment and register writes to issue at given cycles:
//
//	name: ssb
//	cycles: 400
//	channels:
//	  - {}
//	  - {parallelism: 4}
//	connections:
//	  - {from: 0, to: 1}
//	writes:
//	  - {cycle: 0, channel: 0, port: a1, coeffs: [6000]}
//	  - {cycle: 0, channel: 0, port: f1, coeffs: [4398046511104]}
//	  - {cycle: 0, channel: 1, register: iq_enable, data: 3}
//
// Each scenario produces one CSV file with a row per cycle and channel:
// cycle,channel,lane0,lane1,...
//
// The worker count defaults to SAWG_WORKERS, or GOMAXPROCS when unset.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

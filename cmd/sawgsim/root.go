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
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ajroetker/go-sawg/sawg"
	"github.com/ajroetker/go-sawg/sawg/contrib/channel"
	"github.com/ajroetker/go-sawg/sawg/contrib/workerpool"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

type app struct {
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "sawgsim",
		Short:         "Cycle-accurate AWG channel simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log latency plans and deferred writes")
	root.AddCommand(a.newRunCmd(), a.newInfoCmd())
	return root
}

type runFlags struct {
	cycles  int
	out     string
	workers int
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.cycles, "cycles", 0, "cycles to simulate (overrides the scenario)")
	fs.StringVar(&f.out, "out", ".", "directory for the CSV traces")
	fs.IntVar(&f.workers, "workers", workerpool.FromEnv(runtime.GOMAXPROCS(0)),
		"workers stepping the channels of a bank ("+workerpool.EnvWorkers+")")
}

func (a *app) newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run SCENARIO.yaml...",
		Short: "Simulate scenarios and write one CSV trace each",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(f.out, 0o755); err != nil {
				return err
			}
			pool := workerpool.New(f.workers)
			defer pool.Close()

			g, ctx := errgroup.WithContext(cmd.Context())
			for _, path := range args {
				g.Go(func() error {
					sc, err := LoadScenario(path)
					if err != nil {
						return err
					}
					if f.cycles > 0 {
						sc.Cycles = f.cycles
					}
					name := sc.Name
					if name == "" {
						name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
					}
					out, err := os.Create(filepath.Join(f.out, name+".csv"))
					if err != nil {
						return err
					}
					if err := Simulate(ctx, sc, pool, a.logger.With(slog.String("scenario", name)), out); err != nil {
						out.Close()
						return fmt.Errorf("%s: %w", path, err)
					}
					return out.Close()
				})
			}
			return g.Wait()
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the host dispatch level and the default channel timing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := channel.New(channel.WithLogger(a.logger))
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func printInfo(w io.Writer, c *channel.Channel) {
	p := c.Plan()
	fmt.Fprintf(w, "dispatch:    %s (%d int64 lanes)\n", sawg.CurrentLevel(), sawg.HostLanes())
	fmt.Fprintf(w, "channel:     %d bits x %d lanes, widths %+v\n", c.Width(), c.Parallelism(), c.Widths())
	fmt.Fprintf(w, "latency:     %d cycles\n", p.Latency)
	fmt.Fprintf(w, "  amplitude: %s\n", p.Amplitude)
	fmt.Fprintf(w, "  phase:     %s\n", p.Phase)
	fmt.Fprintf(w, "  offset:    %s\n", p.Offset)
	fmt.Fprintf(w, "cordic gain: %.5f\n", c.CordicGain())
	fmt.Fprintf(w, "inputs:      %s\n", strings.Join(channel.Inputs(), " "))
	fmt.Fprintf(w, "registers:   %s\n", strings.Join(channel.RegisterNames(), " "))
}

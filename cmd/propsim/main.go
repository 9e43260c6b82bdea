package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/grip/internal/core/observability/log"
	"github.com/zeusync/grip/internal/injector"
	"github.com/zeusync/grip/internal/scenario"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults when empty)")
	scenarioPath := flag.String("scenario", "", "scenario script to run")
	fast := flag.Bool("fast", false, "run the scenario as fast as possible instead of in real time")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "propsim: -scenario is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *scenarioPath, *fast); err != nil {
		fmt.Fprintln(os.Stderr, "propsim:", err)
		os.Exit(1)
	}
}

func run(configPath, scenarioPath string, fast bool) error {
	rt, cleanup, err := injector.InitializeRuntime(injector.ConfigPath(configPath), injector.ScenarioPath(scenarioPath))
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() { _ = rt.Logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reports []scenario.Report
	if fast {
		for !rt.World.Director.Done() {
			if err := ctx.Err(); err != nil {
				break
			}
			if err := rt.Loop.Advance(rt.Config.Simulation.Step); err != nil {
				rt.Logger.Warn("tick error", log.Error(err))
			}
		}
		reports = rt.World.Report()
		if err := rt.Loop.Shutdown(ctx); err != nil {
			return err
		}
	} else {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		// props are destroyed on shutdown, so snapshot them first
		rt.World.Director.OnDone(func() {
			reports = rt.World.Report()
			cancel()
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return rt.Loop.Run(gctx, rt.Config.Simulation.FrameInterval)
		})
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	report(rt, reports)
	return nil
}

func report(rt *injector.Runtime, reports []scenario.Report) {
	m := rt.Loop.GetMetrics()
	rt.Logger.Info("simulation finished",
		log.Uint64("fixed_ticks", m.FixedTicks),
		log.Uint64("frames", m.Frames),
		log.Uint64("dropped_steps", m.DroppedSteps),
		log.Uint64("errors", m.ErrorCount))

	for _, r := range reports {
		rt.Logger.Info("prop",
			log.String("name", r.Name),
			log.Uint64("slashes", r.Stats.Slashes),
			log.Uint64("hits", r.Stats.Hits),
			log.Uint64("throws", r.Stats.Throws),
			log.Uint64("ignored_grabs", r.Stats.IgnoredGrabs),
			log.Uint64("rejected_activations", r.Stats.RejectedActivations),
			log.Stringer("owners", r.Diagnostics.Ownership),
			log.Stringer("throw", r.Diagnostics.Throw),
			log.Float64("mass", r.Diagnostics.Mass))
	}
}

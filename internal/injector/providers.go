package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/grip/internal/audio"
	"github.com/zeusync/grip/internal/config"
	"github.com/zeusync/grip/internal/core/observability/log"
	"github.com/zeusync/grip/internal/core/systems"
	"github.com/zeusync/grip/internal/scenario"
)

type (
	// ConfigPath is the YAML config file; empty means defaults.
	ConfigPath string
	// ScenarioPath is the scenario script to run.
	ScenarioPath string
)

// Runtime is everything the simulation runner needs.
type Runtime struct {
	Config *config.Config
	Logger *log.Logger
	Sink   *audio.Sink
	World  *scenario.World
	Loop   *systems.Loop
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideSink,
	ProvideScript,
	ProvideWorld,
	ProvideLoop,
	wire.Struct(new(Runtime), "*"),
)

func ProvideConfig(path ConfigPath) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(string(path))
}

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	opts, err := cfg.Log.Options()
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(opts)
}

// ProvideSink opens the cue bank and, when output is enabled, the speaker.
func ProvideSink(cfg *config.Config, logger log.Log) (*audio.Sink, func(), error) {
	sink, err := audio.Open(cfg.Audio, cfg.Cues(), logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Audio.Output {
		if err := sink.Start(); err != nil {
			return nil, nil, err
		}
	}
	cleanup := func() {
		if err := sink.Close(); err != nil {
			logger.Warn("closing audio", log.Error(err))
		}
	}
	return sink, cleanup, nil
}

func ProvideScript(path ScenarioPath) (*scenario.Script, error) {
	return scenario.Load(string(path))
}

func ProvideWorld(script *scenario.Script, cfg *config.Config, sink *audio.Sink, logger log.Log) (*scenario.World, func(), error) {
	world, err := scenario.Build(script, cfg.Prop(), sink, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := world.Close(); err != nil {
			logger.Warn("closing world", log.Error(err))
		}
	}
	return world, cleanup, nil
}

func ProvideLoop(cfg *config.Config, world *scenario.World, logger log.Log) (*systems.Loop, error) {
	loop, err := systems.NewLoop(cfg.Simulation.Step, logger)
	if err != nil {
		return nil, err
	}
	world.Register(loop)
	return loop, nil
}

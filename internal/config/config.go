// Package config loads the simulation configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/grip/internal/audio"
	"github.com/zeusync/grip/internal/core/feedback"
	"github.com/zeusync/grip/internal/core/grip"
	"github.com/zeusync/grip/internal/core/impact"
	"github.com/zeusync/grip/internal/core/motion"
	"github.com/zeusync/grip/internal/core/observability/log"
	"github.com/zeusync/grip/internal/core/prop"
	"github.com/zeusync/grip/internal/core/throw"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Simulation struct {
	Step          time.Duration `json:"step" yaml:"step"`
	FrameInterval time.Duration `json:"frame_interval" yaml:"frame_interval"`
}

type Log struct {
	Level    string   `json:"level" yaml:"level"`
	Encoding string   `json:"encoding" yaml:"encoding"`
	Outputs  []string `json:"outputs" yaml:"outputs"`
}

// Options converts to logger options.
func (l Log) Options() (log.Options, error) {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.Options{}, err
	}
	return log.Options{Level: level, Encoding: l.Encoding, Outputs: l.Outputs}, nil
}

type Config struct {
	Simulation Simulation        `json:"simulation" yaml:"simulation"`
	Log        Log               `json:"log" yaml:"log"`
	Slash      motion.Settings   `json:"slash" yaml:"slash"`
	Hit        impact.Settings   `json:"hit" yaml:"hit"`
	TwoHanded  grip.Settings     `json:"two_handed" yaml:"two_handed"`
	Throw      throw.Settings    `json:"throw" yaml:"throw"`
	Feedback   feedback.Profiles `json:"feedback" yaml:"feedback"`
	Audio      audio.Settings    `json:"audio" yaml:"audio"`
}

func Default() *Config {
	p := prop.DefaultSettings()
	return &Config{
		Simulation: Simulation{Step: p.Step, FrameInterval: 11 * time.Millisecond},
		Log:        Log{Level: "info", Encoding: "console"},
		Slash:      p.Motion,
		Hit:        p.Impact,
		TwoHanded:  p.Grip,
		Throw:      p.Throw,
		Feedback:   p.Profiles,
		Audio:      audio.DefaultSettings(),
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	return Decode(bytes.NewReader(data))
}

func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Simulation.Step <= 0 {
		return fmt.Errorf("%w: simulation.step must be positive", ErrInvalid)
	}
	if c.Simulation.FrameInterval <= 0 {
		return fmt.Errorf("%w: simulation.frame_interval must be positive", ErrInvalid)
	}
	if _, err := c.Log.Options(); err != nil {
		return fmt.Errorf("%w: log: %v", ErrInvalid, err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("%w: audio: %v", ErrInvalid, err)
	}
	if err := c.Prop().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Prop returns the prop settings, with feedback thresholds tied to the
// classifier thresholds.
func (c *Config) Prop() prop.Settings {
	profiles := c.Feedback
	profiles.Slash.Threshold = c.Slash.VelocityThreshold
	profiles.Hit.Threshold = c.Hit.MinHitVelocity
	profiles.Throw.Threshold = 0
	return prop.Settings{
		Step:     c.Simulation.Step,
		Motion:   c.Slash,
		Impact:   c.Hit,
		Grip:     c.TwoHanded,
		Throw:    c.Throw,
		Profiles: profiles,
	}
}

// Cues lists the cue names the feedback profiles refer to.
func (c *Config) Cues() []string {
	var out []string
	for _, k := range feedback.Kinds {
		p, _ := c.Feedback.For(k)
		if p.Cue != "" {
			out = append(out, p.Cue)
		}
	}
	return out
}

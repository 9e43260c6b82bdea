// Package audio plays feedback cues through beep: one mixer channel per
// feedback kind, pitch by resampling, volume and distance attenuation by
// gain.
package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/zeusync/grip/internal/core/feedback"
	"github.com/zeusync/grip/internal/core/observability/log"
	"github.com/zeusync/grip/internal/core/systems/physics"
)

var _ feedback.AudioSink = (*Sink)(nil)

// Settings configure playback. Cues maps cue names to WAV files; cues without
// a file fall back to a synthesized sound when Synthesize is set.
type Settings struct {
	Output       bool              `json:"output" yaml:"output"`
	SampleRate   int               `json:"sample_rate" yaml:"sample_rate"`
	Buffer       time.Duration     `json:"buffer" yaml:"buffer"`
	Quality      int               `json:"quality" yaml:"quality"`
	MasterVolume float64           `json:"master_volume" yaml:"master_volume"`
	MinDistance  float64           `json:"min_distance" yaml:"min_distance"`
	MaxDistance  float64           `json:"max_distance" yaml:"max_distance"`
	Synthesize   bool              `json:"synthesize" yaml:"synthesize"`
	Cues         map[string]string `json:"cues" yaml:"cues"`
}

func DefaultSettings() Settings {
	return Settings{
		SampleRate:   44100,
		Buffer:       100 * time.Millisecond,
		Quality:      4,
		MasterVolume: 1,
		MinDistance:  1,
		MaxDistance:  20,
		Synthesize:   true,
	}
}

func (s Settings) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", s.SampleRate)
	}
	if s.Buffer <= 0 {
		return fmt.Errorf("buffer must be positive, got %s", s.Buffer)
	}
	if s.Quality < 1 || s.Quality > 64 {
		return fmt.Errorf("quality must be within [1,64], got %d", s.Quality)
	}
	if s.MasterVolume < 0 || s.MasterVolume > 1 {
		return fmt.Errorf("master_volume must be within [0,1], got %v", s.MasterVolume)
	}
	if s.MinDistance < 0 || s.MaxDistance <= s.MinDistance {
		return fmt.Errorf("distances must satisfy 0 <= min < max, got %v..%v", s.MinDistance, s.MaxDistance)
	}
	return nil
}

// Attenuation is the linear rolloff between MinDistance and MaxDistance.
func (s Settings) Attenuation(distance float64) float64 {
	switch {
	case distance <= s.MinDistance:
		return 1
	case distance >= s.MaxDistance:
		return 0
	default:
		return 1 - (distance-s.MinDistance)/(s.MaxDistance-s.MinDistance)
	}
}

// Sink is a feedback.AudioSink. Without Start it mixes offline and can be
// pulled with Stream.
type Sink struct {
	mu       sync.Mutex
	settings Settings
	bank     *Bank
	master   *beep.Mixer
	channels map[feedback.Kind]*beep.Mixer
	listener physics.Vec3
	played   map[feedback.Kind]uint64
	started  bool
	logger   log.Log
}

func NewSink(settings Settings, bank *Bank, logger log.Log) (*Sink, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audio settings: %w", err)
	}
	if bank == nil {
		return nil, errors.New("audio sink needs a cue bank")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Sink{
		settings: settings,
		bank:     bank,
		master:   &beep.Mixer{},
		channels: make(map[feedback.Kind]*beep.Mixer, len(feedback.Kinds)),
		played:   make(map[feedback.Kind]uint64, len(feedback.Kinds)),
		logger:   logger,
	}
	for _, k := range feedback.Kinds {
		ch := &beep.Mixer{}
		s.channels[k] = ch
		s.master.Add(ch)
	}
	return s, nil
}

// Open builds a bank from settings and returns a sink over it. Every cue in
// names must end up playable, from file or synthesized.
func Open(settings Settings, names []string, logger log.Log) (*Sink, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audio settings: %w", err)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	bank := NewBank(beep.SampleRate(settings.SampleRate), settings.Quality)
	for name, path := range settings.Cues {
		if err := bank.LoadFile(name, path); err != nil {
			return nil, err
		}
		logger.Debug("cue loaded", log.String("cue", name), log.String("path", path))
	}
	for _, name := range names {
		if name == "" || bank.Len(name) > 0 {
			continue
		}
		if !settings.Synthesize {
			logger.Warn("cue has no source, playback will be skipped", log.String("cue", name))
			continue
		}
		if err := bank.Synthesize(name); err != nil {
			logger.Warn("cue has no source, playback will be skipped", log.String("cue", name), log.Error(err))
		}
	}
	return NewSink(settings, bank, logger)
}

// Start opens the speaker and plays the master mix through it.
func (s *Sink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	rate := s.bank.SampleRate()
	if err := speaker.Init(rate, rate.N(s.settings.Buffer)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(beep.StreamerFunc(s.Stream))
	s.started = true
	return nil
}

// Close silences every channel and releases the speaker.
func (s *Sink) Close() error {
	s.mu.Lock()
	for _, ch := range s.channels {
		ch.Clear()
	}
	started := s.started
	s.started = false
	s.mu.Unlock()
	if started {
		speaker.Close()
	}
	return nil
}

// SetListener moves the point distances are measured from.
func (s *Sink) SetListener(p physics.Vec3) {
	s.mu.Lock()
	s.listener = p
	s.mu.Unlock()
}

// Play starts req on its channel. Cues that attenuate to silence are dropped.
func (s *Sink) Play(req feedback.PlayRequest) error {
	cue, err := s.bank.Streamer(req.Cue)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[req.Channel]
	if !ok {
		return fmt.Errorf("no audio channel for %s", req.Channel)
	}
	distance := r3.Norm(r3.Sub(req.Position, s.listener))
	volume := req.Volume * s.settings.MasterVolume * s.settings.Attenuation(distance)
	if volume <= 0 {
		return nil
	}

	var stream beep.Streamer = cue
	if req.Pitch > 0 && req.Pitch != 1 {
		stream = beep.ResampleRatio(s.settings.Quality, req.Pitch, stream)
	}
	ch.Add(gain(stream, volume))
	s.played[req.Channel]++
	return nil
}

// Stream pulls the master mix. The speaker calls it when started; tests and
// offline renders call it directly.
func (s *Sink) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.master.Stream(samples)
}

// Active returns the number of cues still sounding on channel k.
func (s *Sink) Active(k feedback.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.channels[k]; ok {
		return ch.Len()
	}
	return 0
}

// Played returns how many cues were started on channel k.
func (s *Sink) Played(k feedback.Kind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played[k]
}

func (s *Sink) Bank() *Bank { return s.bank }

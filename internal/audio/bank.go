package audio

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/zeusync/grip/internal/core/feedback"
)

// ErrUnknownCue is returned for cues that were never loaded.
var ErrUnknownCue = fmt.Errorf("unknown cue: %w", feedback.ErrMissingCue)

// Bank holds decoded cues in memory at a single sample rate.
type Bank struct {
	mu      sync.RWMutex
	format  beep.Format
	quality int
	cues    map[string]*beep.Buffer
}

func NewBank(rate beep.SampleRate, quality int) *Bank {
	return &Bank{
		format:  beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2},
		quality: quality,
		cues:    make(map[string]*beep.Buffer),
	}
}

func (b *Bank) SampleRate() beep.SampleRate { return b.format.SampleRate }

// Add renders s into the bank under name, replacing any previous cue.
func (b *Bank) Add(name string, s beep.Streamer) {
	buf := beep.NewBuffer(b.format)
	buf.Append(s)
	b.mu.Lock()
	b.cues[name] = buf
	b.mu.Unlock()
}

// LoadFile decodes a WAV file and resamples it to the bank rate.
func (b *Bank) LoadFile(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open cue %q: %w", name, err)
	}
	stream, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("decode cue %q: %w", name, err)
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if format.SampleRate != b.format.SampleRate {
		s = beep.Resample(b.quality, format.SampleRate, b.format.SampleRate, stream)
	}
	b.Add(name, s)
	if err := stream.Err(); err != nil {
		return fmt.Errorf("read cue %q: %w", name, err)
	}
	return nil
}

// Synthesize renders the built-in fallback for name.
func (b *Bank) Synthesize(name string) error {
	fn, ok := synthesized[name]
	if !ok {
		return fmt.Errorf("no synthesized fallback for %q: %w", name, ErrUnknownCue)
	}
	b.Add(name, fn(b.format.SampleRate))
	return nil
}

// Streamer returns a fresh playback cursor over the named cue.
func (b *Bank) Streamer(name string) (beep.StreamSeeker, error) {
	b.mu.RLock()
	buf, ok := b.cues[name]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownCue)
	}
	return buf.Streamer(0, buf.Len()), nil
}

// Len returns the length of the named cue in samples.
func (b *Bank) Len(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if buf, ok := b.cues[name]; ok {
		return buf.Len()
	}
	return 0
}

func (b *Bank) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.cues))
	for name := range b.cues {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

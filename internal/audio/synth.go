package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

type wave uint8

const (
	waveSine wave = iota
	waveSquare
	waveNoise
)

// oscillator produces a fixed-length mono wave on both channels.
type oscillator struct {
	freq     float64
	phase    float64
	length   int
	position int
	wave     wave
	rate     beep.SampleRate
	rng      *rand.Rand
}

func newOscillator(freq float64, d time.Duration, w wave, rate beep.SampleRate, seed uint64) *oscillator {
	return &oscillator{
		freq:   freq,
		length: rate.N(d),
		wave:   w,
		rate:   rate,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if o.position >= o.length {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case waveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case waveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case waveNoise:
			v = o.rng.Float64()*2 - 1
		}
		samples[i][0], samples[i][1] = v, v

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to s.
type envelope struct {
	s        beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) *envelope {
	return &envelope{s: s, attack: rate.N(attack), release: rate.N(release), total: rate.N(d)}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := range n {
		if e.position >= e.total {
			return i, i > 0
		}
		gain := 1.0
		if e.position < e.attack {
			gain = float64(e.position) / float64(e.attack)
		}
		if left := e.total - e.position; left < e.release {
			gain = math.Min(gain, float64(left)/float64(e.release))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// gain wraps s in a volume effect. beep volumes are logarithmic, so zero is
// expressed as silence.
func gain(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

// synthFunc renders a fallback cue at rate.
type synthFunc func(rate beep.SampleRate) beep.Streamer

// synthesized are the fallback cues used when no sample file is configured.
var synthesized = map[string]synthFunc{
	"slash": whoosh,
	"hit":   clank,
	"throw": swish,
}

// whoosh is a short swell of noise.
func whoosh(rate beep.SampleRate) beep.Streamer {
	const d = 180 * time.Millisecond
	noise := newOscillator(0, d, waveNoise, rate, 1)
	return gain(newEnvelope(noise, d, 40*time.Millisecond, 120*time.Millisecond, rate), 0.6)
}

// clank is a struck-metal tone: a low sine with a bright square overtone.
func clank(rate beep.SampleRate) beep.Streamer {
	const d = 150 * time.Millisecond
	body := newEnvelope(newOscillator(220, d, waveSine, rate, 2), d, 2*time.Millisecond, 140*time.Millisecond, rate)
	ring := newEnvelope(newOscillator(1320, d, waveSquare, rate, 3), d, 2*time.Millisecond, 60*time.Millisecond, rate)
	return beep.Mix(gain(body, 0.7), gain(ring, 0.2))
}

// swish is a longer, softer noise sweep.
func swish(rate beep.SampleRate) beep.Streamer {
	const d = 260 * time.Millisecond
	noise := newOscillator(0, d, waveNoise, rate, 4)
	return gain(newEnvelope(noise, d, 90*time.Millisecond, 150*time.Millisecond, rate), 0.4)
}

package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// output is the mixer an instance plays into.
type output interface {
	// Configure prepares the output for a new instance and returns the rate
	// the output runs at. It is called on every load.
	Configure(trackRate beep.SampleRate) (beep.SampleRate, error)
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// speakerOutput drives the process-wide beep speaker at a fixed rate;
// tracks at other rates are resampled.
type speakerOutput struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	buffer      time.Duration
	initialized bool
}

func newSpeakerOutput(rate int) *speakerOutput {
	return &speakerOutput{
		rate:   beep.SampleRate(rate),
		buffer: time.Second / 10,
	}
}

// Configure initializes the speaker if a previous attempt has not succeeded.
// A failed init is retried on the next load.
func (o *speakerOutput) Configure(_ beep.SampleRate) (beep.SampleRate, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.initialized {
		if err := speaker.Init(o.rate, o.rate.N(o.buffer)); err != nil {
			return 0, fmt.Errorf("init speaker: %w", err)
		}
		o.initialized = true
	}
	return o.rate, nil
}

func (o *speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

func (o *speakerOutput) Clear() { speaker.Clear() }

func (o *speakerOutput) Lock() { speaker.Lock() }

func (o *speakerOutput) Unlock() { speaker.Unlock() }

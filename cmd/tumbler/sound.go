package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

const sampleRate = beep.SampleRate(44100)

// sound plays a short tone on every kick, pitched by the kick force.
// A nil *sound is silent.
type sound struct{}

func newSound(logger *zap.Logger) *sound {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		// Non-fatal, the viewer runs without sound
		logger.Warn("audio initialization failed", zap.Error(err))
		return nil
	}
	return &sound{}
}

func (s *sound) kick(force, maxForce float64) {
	if s == nil {
		return
	}

	freq := 440.0
	if maxForce > 0 {
		freq += 440 * force / maxForce
	}
	tone, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(40*time.Millisecond), tone))
}

func (s *sound) close() {
	if s == nil {
		return
	}
	speaker.Close()
}

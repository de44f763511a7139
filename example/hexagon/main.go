package main

import (
	"fmt"

	"github.com/akmonengine/tumbler"
	"go.uber.org/zap"
)

// A hexagon run without a terminal: prints the HUD once per simulated second
// and every event that fires along the way.
func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	events := tumbler.NewEvents()
	events.Subscribe(tumbler.SPIN_REVERSED, func(e tumbler.Event) {
		r := e.(tumbler.SpinReversedEvent).Reversal
		fmt.Printf("🔄 spin reversed at %.2fs, now %s\n", r.At, r.Directions[2])
	})
	events.Subscribe(tumbler.KICK, func(e tumbler.Event) {
		c := e.(tumbler.KickEvent).Collision
		fmt.Printf("💥 %s: bounce %.1f°, kick %.1f @ %.1f°\n", c.WallName, c.BounceAngle, c.KickForce, c.KickAngle)
	})
	events.Subscribe(tumbler.CONTAINMENT, func(e tumbler.Event) {
		fmt.Printf("🛡  guard moved the ball at tick %d\n", e.(tumbler.ContainmentEvent).Tick)
	})

	cfg := tumbler.DefaultHexagonConfig()
	cfg.Seed = 2024
	sim, err := tumbler.New(cfg, tumbler.WithEvents(events), tumbler.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	const rate = 60
	for i := 1; i <= 20*rate; i++ {
		snap := sim.Advance(1.0 / rate)
		if i%rate != 0 {
			continue
		}

		fmt.Printf("t=%5.1fs  spin=%-17s speed=%6.1f heading=%5.1f°  bounces=%d  clearance=%.2f\n",
			snap.Time, snap.SpinLabel(), snap.Speed(), snap.Heading(), snap.Bounces, snap.Clearance())
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/tumbler"
	"github.com/akmonengine/tumbler/actor"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// errQuit stops the errgroup when the user leaves the viewer
var errQuit = errors.New("quit")

const hudRows = 4

var (
	wallStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	hitStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	ballStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	flashStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	hudStyle   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// viewer draws snapshots in the terminal and forwards keys to the simulation.
// It never touches physics state directly.
type viewer struct {
	screen tcell.Screen
	sim    *tumbler.Simulation
	sound  *sound
	logger *zap.Logger

	lastKickTick uint64
}

func newViewer(sim *tumbler.Simulation, withSound bool, logger *zap.Logger) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	v := &viewer{screen: screen, sim: sim, logger: logger}
	if withSound {
		v.sound = newSound(logger)
	}
	return v, nil
}

func (v *viewer) run(ctx context.Context, frames <-chan tumbler.Snapshot) error {
	defer v.cleanup()

	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(v.screen.PollEvent, events, done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.handleInput(ev) {
				return errQuit
			}
		case snap := <-frames:
			v.play(snap)
			v.draw(snap)
		}
	}
}

// pollEvents forwards input until the screen is finalized or done is closed
func pollEvents(poll func() tcell.Event, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			// screen finalized
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			v.sim.ToggleSpin()
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'r' || ev.Rune() == 'R'):
			// back to the center with the initial velocity
			state := v.sim.InitialState()
			state.Position = v.sim.Shape().Center()
			v.sim.RequestReset(state)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) play(snap tumbler.Snapshot) {
	c := snap.LastCollision
	if c == nil || c.KickForce == 0 || c.Tick == v.lastKickTick {
		return
	}
	v.lastKickTick = c.Tick
	v.sound.kick(c.KickForce, v.sim.Config.MaxKick)
}

// projection maps world XY to terminal cells. Cells are about twice as tall
// as they are wide, hence the doubled horizontal scale.
type projection struct {
	center mgl64.Vec3
	scale  float64
	cx, cy int
}

func newProjection(width, height int, center mgl64.Vec3, extent float64) projection {
	rows := max(height-hudRows, 1)
	scale := math.Min(float64(width-2)/(4*extent), float64(rows-2)/(2*extent))
	return projection{
		center: center,
		scale:  math.Max(scale, 1e-3),
		cx:     width / 2,
		cy:     rows / 2,
	}
}

func (p projection) cell(point mgl64.Vec3) (int, int) {
	d := point.Sub(p.center)
	return p.cx + int(math.Round(2*d.X()*p.scale)), p.cy - int(math.Round(d.Y()*p.scale))
}

func (v *viewer) draw(snap tumbler.Snapshot) {
	v.screen.Clear()
	width, height := v.screen.Size()
	proj := newProjection(width, height, snap.Center, v.sim.Shape().Circumradius())

	hit := -1
	if snap.LastCollision != nil && snap.LastCollision.Flash > 0 {
		hit = snap.LastCollision.Wall
	}
	for _, w := range snap.Walls {
		style := wallStyle
		if w.Index == hit {
			style = hitStyle
		}
		v.drawWall(proj, w, style)
	}

	style := ballStyle
	if snap.LastCollision != nil && snap.LastCollision.Flash > 0 {
		style = flashStyle
	}
	x, y := proj.cell(snap.Ball.Position)
	v.screen.SetContent(x, y, '●', nil, style)

	for i, line := range hudLines(snap) {
		v.drawText(0, height-hudRows+i, line)
	}
	v.screen.Show()
}

func (v *viewer) drawWall(proj projection, w actor.Wall, style tcell.Style) {
	n := len(w.Vertices)
	edges := n
	if w.Kind == actor.WallKindSegment {
		edges = 1
	}
	for i := range edges {
		v.drawLine(proj, w.Vertices[i], w.Vertices[(i+1)%n], style)
	}
}

func (v *viewer) drawLine(proj projection, a, b mgl64.Vec3, style tcell.Style) {
	x0, y0 := proj.cell(a)
	x1, y1 := proj.cell(b)
	steps := max(abs(x1-x0), abs(y1-y0), 1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(math.Round(t*float64(x1-x0)))
		y := y0 + int(math.Round(t*float64(y1-y0)))
		v.screen.SetContent(x, y, '·', nil, style)
	}
}

func (v *viewer) drawText(x, y int, text string) {
	for _, r := range text {
		v.screen.SetContent(x, y, r, nil, hudStyle)
		x++
	}
}

func (v *viewer) cleanup() {
	v.sound.close()
	v.screen.Fini()
}

func hudLines(snap tumbler.Snapshot) []string {
	lines := []string{
		fmt.Sprintf("Spin: %s   Time: %.1fs   Since reversal: %.1fs", snap.SpinLabel(), snap.Time, snap.SinceReversal()),
		fmt.Sprintf("Speed: %.1f   Heading: %.1f°   Bounces: %d   Guard: %d", snap.Speed(), snap.Heading(), snap.Bounces, snap.Corrections),
	}

	if c := snap.LastCollision; c != nil {
		line := fmt.Sprintf("Bounce angle: %.1f°   Kick: %.1f @ %.1f°", c.BounceAngle, c.KickForce, c.KickAngle)
		if snap.Dimensions == 3 {
			line += fmt.Sprintf(" / %.1f°   Face: %s", c.KickPolar, c.WallName)
		}
		if c.Corner {
			line += "   corner"
		}
		lines = append(lines, line)
	} else {
		lines = append(lines, "Bounce angle: -   Kick: -")
	}

	return append(lines, "space: toggle spin   r: reset   q: quit")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

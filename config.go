package tumbler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/akmonengine/tumbler/actor"
	"github.com/akmonengine/tumbler/boundary"
	"github.com/akmonengine/tumbler/constraint"
	"github.com/akmonengine/tumbler/spin"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	ShapeHexagon = "hexagon"
	ShapeCube    = "cube"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every constant of a simulation. It is read once by New.
type Config struct {
	Shape  string     `json:"shape" yaml:"shape"`
	Sides  int        `json:"sides" yaml:"sides"`
	Center mgl64.Vec3 `json:"center" yaml:"center"`
	// Size is the circumradius of a polygon, or the half-extent of a cube
	Size float64 `json:"size" yaml:"size"`

	BallRadius      float64    `json:"ball_radius" yaml:"ball_radius"`
	InitialPosition mgl64.Vec3 `json:"initial_position" yaml:"initial_position"`
	InitialVelocity mgl64.Vec3 `json:"initial_velocity" yaml:"initial_velocity"`

	Gravity           float64    `json:"gravity" yaml:"gravity"`
	Down              mgl64.Vec3 `json:"down" yaml:"down"`
	Friction          float64    `json:"friction" yaml:"friction"`
	CollisionFriction float64    `json:"collision_friction" yaml:"collision_friction"`

	MinKick         float64 `json:"min_kick" yaml:"min_kick"`
	MaxKick         float64 `json:"max_kick" yaml:"max_kick"`
	CornerThreshold float64 `json:"corner_threshold" yaml:"corner_threshold"`
	CornerPolicy    string  `json:"corner_policy" yaml:"corner_policy"`
	CornerNudge     float64 `json:"corner_nudge" yaml:"corner_nudge"`
	CornerKickScale float64 `json:"corner_kick_scale" yaml:"corner_kick_scale"`
	WallDrag        float64 `json:"wall_drag" yaml:"wall_drag"`
	MaxVelocity     float64 `json:"max_velocity" yaml:"max_velocity"`

	SpinSpeed  mgl64.Vec3 `json:"spin_speed" yaml:"spin_speed"`
	SpinPolicy string     `json:"spin_policy" yaml:"spin_policy"`
	MinDwell   float64    `json:"min_dwell" yaml:"min_dwell"`
	MaxDwell   float64    `json:"max_dwell" yaml:"max_dwell"`

	GuardPasses    int     `json:"guard_passes" yaml:"guard_passes"`
	RadialFallback bool    `json:"radial_fallback" yaml:"radial_fallback"`
	RadialMargin   float64 `json:"radial_margin" yaml:"radial_margin"`

	FlashDuration float64 `json:"flash_duration" yaml:"flash_duration"`
	Seed          uint64  `json:"seed" yaml:"seed"`
}

// DefaultHexagonConfig is the 2D setup: a hexagon spinning about Z, with
// rates converted from per-frame values at 60 Hz.
func DefaultHexagonConfig() Config {
	return Config{
		Shape:             ShapeHexagon,
		Sides:             boundary.HexagonSides,
		Size:              250,
		BallRadius:        15,
		InitialVelocity:   mgl64.Vec3{120, 0, 0},
		Gravity:           1800,
		Down:              mgl64.Vec3{0, -1, 0},
		Friction:          0.999,
		CollisionFriction: 0.98,
		MinKick:           180,
		MaxKick:           480,
		CornerThreshold:   20,
		CornerPolicy:      constraint.CornerRoll.String(),
		CornerNudge:       0.1,
		CornerKickScale:   0.25,
		WallDrag:          0.2,
		MaxVelocity:       1200,
		SpinSpeed:         mgl64.Vec3{0, 0, 0.6},
		SpinPolicy:        spin.FlipAll.String(),
		MinDwell:          3,
		MaxDwell:          8,
		GuardPasses:       constraint.DefaultGuardPasses,
		RadialFallback:    true,
		RadialMargin:      5,
		FlashDuration:     0.25,
		Seed:              1,
	}
}

// DefaultCubeConfig is the 3D setup: a cube spinning on all three axes,
// flipping one axis at a time.
func DefaultCubeConfig() Config {
	return Config{
		Shape:             ShapeCube,
		Size:              140,
		BallRadius:        20,
		InitialVelocity:   mgl64.Vec3{90, 60, 30},
		Gravity:           180,
		Down:              mgl64.Vec3{0, -1, 0},
		Friction:          0.999,
		CollisionFriction: 0.98,
		MinKick:           24,
		MaxKick:           600,
		CornerThreshold:   20,
		CornerPolicy:      constraint.CornerRoll.String(),
		CornerNudge:       0.1,
		CornerKickScale:   0.25,
		WallDrag:          0.2,
		MaxVelocity:       1200,
		SpinSpeed:         mgl64.Vec3{0.6, 0.6, 0.6},
		SpinPolicy:        spin.FlipRandomAxis.String(),
		MinDwell:          3,
		MaxDwell:          8,
		GuardPasses:       constraint.DefaultGuardPasses,
		FlashDuration:     0.25,
		Seed:              1,
	}
}

// DefaultConfig returns the defaults of the named shape
func DefaultConfig(shape string) (Config, error) {
	switch shape {
	case ShapeHexagon, "":
		return DefaultHexagonConfig(), nil
	case ShapeCube:
		return DefaultCubeConfig(), nil
	default:
		return Config{}, fmt.Errorf("%w: unknown shape %q", ErrInvalidConfig, shape)
	}
}

// LoadConfig reads a YAML document. Keys left out keep the defaults of the
// shape the document names; unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	var head struct {
		Shape string `yaml:"shape"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg, err := DefaultConfig(head.Shape)
	if err != nil {
		return Config{}, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, cfg.Validate()
}

// LoadConfigFile reads the YAML file at path
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return LoadConfig(f)
}

// Dimensions is 2 for polygons and 3 for the cube
func (c Config) Dimensions() int {
	if c.Shape == ShapeCube {
		return 3
	}
	return 2
}

// Validate reports every problem of the configuration at once
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	// Range checks below are all false for NaN
	if fields := c.nonFinite(); len(fields) > 0 {
		for _, name := range fields {
			invalid("%s must be finite", name)
		}
		return errors.Join(errs...)
	}

	switch c.Shape {
	case ShapeHexagon:
		if c.Sides < 3 {
			invalid("sides must be at least 3, got %d", c.Sides)
		}
		if c.Down.Z() != 0 || c.InitialPosition.Z() != c.Center.Z() || c.InitialVelocity.Z() != 0 {
			invalid("a polygon simulation stays in the XY plane")
		}
		if c.SpinSpeed.X() != 0 || c.SpinSpeed.Y() != 0 {
			invalid("a polygon only spins about Z")
		}
	case ShapeCube:
		if c.RadialFallback {
			invalid("radial_fallback only applies to polygons")
		}
	default:
		invalid("unknown shape %q", c.Shape)
	}

	if c.Size <= 0 {
		invalid("size must be positive, got %v", c.Size)
	}
	if c.BallRadius <= 0 {
		invalid("ball_radius must be positive, got %v", c.BallRadius)
	}
	if c.Gravity < 0 {
		invalid("gravity must not be negative, got %v", c.Gravity)
	}
	if c.Down.Len() < actor.Epsilon {
		invalid("down must not be the zero vector")
	}
	if c.Friction <= 0 || c.Friction >= 1 {
		invalid("friction must be in (0, 1), got %v", c.Friction)
	}
	if c.CollisionFriction <= 0 || c.CollisionFriction > 1 {
		invalid("collision_friction must be in (0, 1], got %v", c.CollisionFriction)
	}
	if c.MinKick < 0 || c.MinKick > c.MaxKick {
		invalid("kick range [%v, %v] is invalid", c.MinKick, c.MaxKick)
	}
	if c.CornerThreshold < 0 || c.CornerNudge < 0 || c.CornerKickScale < 0 || c.WallDrag < 0 {
		invalid("corner and drag factors must not be negative")
	}
	if _, ok := constraint.ParseCornerPolicy(c.CornerPolicy); !ok {
		invalid("unknown corner_policy %q", c.CornerPolicy)
	}
	if c.MaxVelocity <= 0 {
		invalid("max_velocity must be positive, got %v", c.MaxVelocity)
	}
	if _, ok := ParseSpinPolicy(c.SpinPolicy); !ok {
		invalid("unknown spin_policy %q", c.SpinPolicy)
	}
	if c.MinDwell <= 0 || c.MinDwell > c.MaxDwell {
		invalid("dwell range [%v, %v] is invalid", c.MinDwell, c.MaxDwell)
	}
	if c.GuardPasses < 0 || c.RadialMargin < 0 || c.FlashDuration < 0 {
		invalid("guard_passes, radial_margin and flash_duration must not be negative")
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	shape := c.BuildShape()
	if c.BallRadius >= shape.Inradius() {
		return fmt.Errorf("%w: ball_radius %v does not fit in a boundary of inradius %v", ErrInvalidConfig, c.BallRadius, shape.Inradius())
	}
	if !boundary.Contains(shape.Walls(mgl64.Vec3{}), c.InitialPosition, c.BallRadius, 0) {
		return fmt.Errorf("%w: initial_position %v is not inside the boundary", ErrInvalidConfig, c.InitialPosition)
	}

	return nil
}

// nonFinite lists the float settings holding NaN or an infinity
func (c Config) nonFinite() []string {
	scalars := []struct {
		name  string
		value float64
	}{
		{"size", c.Size},
		{"ball_radius", c.BallRadius},
		{"gravity", c.Gravity},
		{"friction", c.Friction},
		{"collision_friction", c.CollisionFriction},
		{"min_kick", c.MinKick},
		{"max_kick", c.MaxKick},
		{"corner_threshold", c.CornerThreshold},
		{"corner_nudge", c.CornerNudge},
		{"corner_kick_scale", c.CornerKickScale},
		{"wall_drag", c.WallDrag},
		{"max_velocity", c.MaxVelocity},
		{"min_dwell", c.MinDwell},
		{"max_dwell", c.MaxDwell},
		{"radial_margin", c.RadialMargin},
		{"flash_duration", c.FlashDuration},
	}
	vectors := []struct {
		name  string
		value mgl64.Vec3
	}{
		{"center", c.Center},
		{"initial_position", c.InitialPosition},
		{"initial_velocity", c.InitialVelocity},
		{"down", c.Down},
		{"spin_speed", c.SpinSpeed},
	}

	var fields []string
	for _, f := range scalars {
		if !finite(f.value) {
			fields = append(fields, f.name)
		}
	}
	for _, f := range vectors {
		if !finite(f.value.X()) || !finite(f.value.Y()) || !finite(f.value.Z()) {
			fields = append(fields, f.name)
		}
	}
	return fields
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// ParseSpinPolicy maps a configuration name to a spin policy
func ParseSpinPolicy(name string) (spin.Policy, bool) {
	switch name {
	case "all", "":
		return spin.FlipAll, true
	case "random-axis":
		return spin.FlipRandomAxis, true
	default:
		return spin.FlipAll, false
	}
}

// BuildShape creates the boundary. The configuration must be valid.
func (c Config) BuildShape() boundary.Shape {
	if c.Shape == ShapeCube {
		return boundary.NewCube(c.Center, c.Size)
	}
	return boundary.NewPolygon(c.Center, c.Size, c.Sides)
}

func (c Config) collisionParams() constraint.Params {
	policy, _ := constraint.ParseCornerPolicy(c.CornerPolicy)

	return constraint.Params{
		CollisionFriction: c.CollisionFriction,
		MinKick:           c.MinKick,
		MaxKick:           c.MaxKick,
		CornerThreshold:   c.CornerThreshold,
		CornerPolicy:      policy,
		CornerNudge:       c.CornerNudge,
		CornerKickScale:   c.CornerKickScale,
		WallDrag:          c.WallDrag,
		MaxVelocity:       c.MaxVelocity,
		Dimensions:        c.Dimensions(),
	}
}

func (c Config) spinConfig() spin.Config {
	policy, _ := ParseSpinPolicy(c.SpinPolicy)

	return spin.Config{
		Speed:    mgl64.Vec3{math.Abs(c.SpinSpeed.X()), math.Abs(c.SpinSpeed.Y()), math.Abs(c.SpinSpeed.Z())},
		MinDwell: c.MinDwell,
		MaxDwell: c.MaxDwell,
		Policy:   policy,
		Directions: [3]spin.Direction{
			direction(c.SpinSpeed.X()),
			direction(c.SpinSpeed.Y()),
			direction(c.SpinSpeed.Z()),
		},
	}
}

func (c Config) guard() constraint.Guard {
	return constraint.Guard{
		Passes:       c.GuardPasses,
		MaxVelocity:  c.MaxVelocity,
		Radial:       c.RadialFallback && c.Shape != ShapeCube,
		RadialMargin: c.RadialMargin,
	}
}

func (c Config) gravity() mgl64.Vec3 {
	return c.Down.Normalize().Mul(c.Gravity)
}

// A negative spin_speed component starts that axis clockwise
func direction(speed float64) spin.Direction {
	if speed < 0 {
		return spin.Clockwise
	}
	return spin.CounterClockwise
}

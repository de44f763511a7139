package tumbler

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// containmentTolerance is the slack allowed on the wall clearance
const containmentTolerance = 1e-6

// DEFAULT_WORKERS is used by RunBatch when no worker count is given
const DEFAULT_WORKERS = 1

// BatchOptions describes a sweep of independent runs sharing one configuration
type BatchOptions struct {
	Seeds   []uint64
	Ticks   int
	Dt      float64 // seconds per tick
	Workers int
	Logger  *zap.Logger
}

// RunResult summarises one run of a batch
type RunResult struct {
	ID          uuid.UUID `json:"id"`
	Seed        uint64    `json:"seed"`
	Ticks       int       `json:"ticks"`
	Bounces     int       `json:"bounces"`
	Corrections int       `json:"corrections"`
	Reversals   int       `json:"reversals"`

	MinClearance float64 `json:"min_clearance"`
	MaxComponent float64 `json:"max_component"` // largest absolute velocity component
	// Violations counts ticks that broke containment or the velocity ceiling
	Violations  int           `json:"violations"`
	Fingerprint uint64        `json:"fingerprint"`
	Elapsed     time.Duration `json:"elapsed"`
	Err         error         `json:"-"`
}

// Contained reports whether the run never broke an invariant
func (r RunResult) Contained() bool {
	return r.Err == nil && r.Violations == 0
}

// MarshalJSON writes Err as an "error" string
func (r RunResult) MarshalJSON() ([]byte, error) {
	type plain RunResult
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

type batchJob struct {
	index int
	seed  uint64
}

// RunBatch runs one simulation per seed, spread over Workers goroutines.
// Results keep the order of the seeds. A cancelled context stops the runs
// early; their Err is set.
func RunBatch(ctx context.Context, cfg Config, opts BatchOptions) []RunResult {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DEFAULT_WORKERS
	}

	results := make([]RunResult, len(opts.Seeds))
	jobs := make([]batchJob, len(opts.Seeds))
	for i, seed := range opts.Seeds {
		jobs[i] = batchJob{index: i, seed: seed}
	}

	task(workers, jobs, func(job batchJob) {
		result := runOne(ctx, cfg, job.seed, opts.Ticks, opts.Dt)
		logger.Debug("run finished",
			zap.Stringer("run", result.ID),
			zap.Uint64("seed", result.Seed),
			zap.Int("violations", result.Violations),
			zap.Uint64("fingerprint", result.Fingerprint),
			zap.Error(result.Err),
		)
		results[job.index] = result
	})

	return results
}

func runOne(ctx context.Context, cfg Config, seed uint64, ticks int, dt float64) RunResult {
	start := time.Now()
	result := RunResult{
		ID:   uuid.New(),
		Seed: seed,
	}

	cfg.Seed = seed
	sim, err := New(cfg)
	if err != nil {
		result.Err = err
		return result
	}
	result.MinClearance = math.Inf(1)

	fp := NewFingerprint()
	for i := range ticks {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				result.Err = err
				break
			}
		}

		snap := sim.Advance(dt)
		fp.Add(snap)
		result.Ticks++

		clearance := snap.Clearance()
		component := snap.MaxVelocityComponent()
		result.MinClearance = math.Min(result.MinClearance, clearance)
		result.MaxComponent = math.Max(result.MaxComponent, component)
		if clearance < -containmentTolerance || component > cfg.MaxVelocity {
			result.Violations++
		}

		result.Bounces = snap.Bounces
		result.Corrections = snap.Corrections
		result.Reversals = snap.Spin.Reversals
	}

	if result.Ticks == 0 {
		result.MinClearance = 0
	}
	result.Fingerprint = fp.Sum64()
	result.Elapsed = time.Since(start)

	return result
}

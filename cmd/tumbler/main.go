// Command tumbler runs the bouncing-ball simulation in a terminal viewer,
// headless with a telemetry stream, or as a batch sweep over seeds.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akmonengine/tumbler"
	"github.com/akmonengine/tumbler/telemetry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

type options struct {
	configPath string
	shape      string
	seed       uint64
	rate       int
	telemetry  string
	headless   bool
	duration   time.Duration
	batch      int
	ticks      int
	workers    int
	sound      bool
	debug      bool
	logPath    string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML configuration file")
	flag.StringVar(&o.shape, "shape", "", "boundary shape when no configuration file is given: hexagon or cube")
	flag.Uint64Var(&o.seed, "seed", 0, "random seed, overrides the configuration when not zero")
	flag.IntVar(&o.rate, "rate", 60, "ticks per second")
	flag.StringVar(&o.telemetry, "telemetry", "", "address of the websocket telemetry server, e.g. :8080")
	flag.BoolVar(&o.headless, "headless", false, "run without the terminal viewer")
	flag.DurationVar(&o.duration, "duration", 0, "stop after this much wall time, 0 runs until interrupted")
	flag.IntVar(&o.batch, "batch", 0, "run this many seeds as fast as possible and print a summary per run")
	flag.IntVar(&o.ticks, "ticks", 36000, "ticks per batch run")
	flag.IntVar(&o.workers, "workers", 4, "batch workers")
	flag.BoolVar(&o.sound, "sound", false, "play a tone on every kick")
	flag.BoolVar(&o.debug, "debug", false, "development logging at debug level")
	flag.StringVar(&o.logPath, "log", "stderr", "log output path")
	flag.Parse()

	return o
}

func newLogger(o options) (*zap.Logger, error) {
	if o.debug {
		config := zap.NewDevelopmentConfig()
		config.OutputPaths = []string{o.logPath}
		return config.Build()
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.InfoLevel),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{o.logPath},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return config.Build()
}

func loadConfig(o options) (tumbler.Config, error) {
	var (
		cfg tumbler.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = tumbler.LoadConfigFile(o.configPath)
	} else {
		cfg, err = tumbler.DefaultConfig(o.shape)
	}
	if err != nil {
		return cfg, err
	}

	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	return cfg, cfg.Validate()
}

func main() {
	o := parseFlags()

	logger, err := newLogger(o)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := loadConfig(o)
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.batch > 0 {
		if !runBatch(ctx, cfg, o, logger) {
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, o, logger); err != nil {
		logger.Error("tumbler stopped", zap.Error(err))
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, cfg tumbler.Config, o options, logger *zap.Logger) bool {
	seeds := make([]uint64, o.batch)
	for i := range seeds {
		seeds[i] = cfg.Seed + uint64(i)
	}

	logger.Info("batch started",
		zap.String("shape", cfg.Shape),
		zap.Int("runs", o.batch),
		zap.Int("ticks", o.ticks),
		zap.Int("workers", o.workers),
	)
	results := tumbler.RunBatch(ctx, cfg, tumbler.BatchOptions{
		Seeds:   seeds,
		Ticks:   o.ticks,
		Dt:      1 / float64(max(o.rate, 1)),
		Workers: o.workers,
		Logger:  logger,
	})

	enc := json.NewEncoder(os.Stdout)
	contained := 0
	for _, r := range results {
		if r.Contained() {
			contained++
		}
		if err := enc.Encode(r); err != nil {
			logger.Error("write result", zap.Error(err))
			return false
		}
	}

	logger.Info("batch finished", zap.Int("contained", contained), zap.Int("runs", len(results)))
	return contained == len(results)
}

func run(ctx context.Context, cfg tumbler.Config, o options, logger *zap.Logger) error {
	sim, err := tumbler.New(cfg, tumbler.WithLogger(logger.Named("sim")))
	if err != nil {
		return err
	}
	logger.Info("simulation started",
		zap.String("shape", cfg.Shape),
		zap.Uint64("seed", cfg.Seed),
		zap.Int("rate", o.rate),
		zap.String("corner_policy", cfg.CornerPolicy),
		zap.String("spin_policy", cfg.SpinPolicy),
	)

	if o.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.duration)
		defer cancel()
	}

	g, ctx := errgroup.WithContext(ctx)
	hub := telemetry.NewHub(logger.Named("telemetry"))
	frames := make(chan tumbler.Snapshot, 1)

	g.Go(func() error {
		return tickLoop(ctx, sim, o.rate, hub, frames, logger)
	})

	if o.telemetry != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		server := &http.Server{Addr: o.telemetry, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			logger.Info("telemetry listening", zap.String("addr", o.telemetry))
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if !o.headless {
		v, err := newViewer(sim, o.sound, logger.Named("viewer"))
		if err != nil {
			return err
		}
		g.Go(func() error {
			return v.run(ctx, frames)
		})
	} else {
		// Nobody reads the frames: keep the channel drained
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-frames:
				}
			}
		})
	}

	err = g.Wait()
	if errors.Is(err, errQuit) {
		err = nil
	}

	snap := sim.Snapshot()
	logger.Info("simulation stopped",
		zap.Uint64("ticks", snap.Tick),
		zap.Float64("time", snap.Time),
		zap.Int("bounces", snap.Bounces),
		zap.Int("corrections", snap.Corrections),
	)
	return err
}

// tickLoop advances the simulation at a fixed rate with a fixed dt, so the
// trajectory does not depend on scheduling jitter.
func tickLoop(ctx context.Context, sim *tumbler.Simulation, rate int, hub *telemetry.Hub, frames chan tumbler.Snapshot, logger *zap.Logger) error {
	rate = max(rate, 1)
	dt := 1 / float64(rate)
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		snap := sim.Advance(dt)
		if err := hub.Broadcast(snap); err != nil {
			logger.Error("broadcast", zap.Error(err))
		}

		// Only the latest frame matters to the viewer
		select {
		case <-frames:
		default:
		}
		frames <- snap

		if snap.Tick%uint64(rate*10) == 0 {
			logger.Info("progress",
				zap.Uint64("tick", snap.Tick),
				zap.Float64("speed", snap.Speed()),
				zap.Int("bounces", snap.Bounces),
				zap.Int("clients", hub.Clients()),
			)
		}
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/goldhelper/config"
	"github.com/pthm-cable/goldhelper/plugin"
	"github.com/pthm-cable/goldhelper/sampler"
	"github.com/pthm-cable/goldhelper/server"
	"github.com/pthm-cable/goldhelper/telemetry"
	"github.com/pthm-cable/goldhelper/ui"
)

var version = "dev"

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")
	seed := flag.Int64("seed", 0, "Simulated host seed (0 = config, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	replay := flag.String("replay", "", "Replay a recorded session CSV instead of simulating")
	record := flag.String("record", "", "Record every sample to this CSV file")
	httpAddr := flag.String("http", "", "HTTP control surface address (empty = config)")
	fast := flag.Bool("fast", false, "Headless: tick as fast as possible instead of in real time")

	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}
	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *seed != 0 {
		cfg.Sampler.Seed = *seed
	}
	if *replay != "" {
		cfg.Sampler.Mode = "replay"
		cfg.Sampler.ReplayPath = *replay
	}
	if *httpAddr != "" {
		cfg.Server.Addr = *httpAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, runOptions{
		headless:    *headless,
		fast:        *fast,
		maxTicks:    int64(*maxTicks),
		record:      *record,
		logStats:    *logStats,
		outputDir:   *outputDir,
		snapshotDir: *snapshotDir,
	}, logger); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	headless    bool
	fast        bool
	maxTicks    int64
	record      string
	logStats    bool
	outputDir   string
	snapshotDir string
}

func run(ctx context.Context, cfg *config.Config, opts runOptions, logger *slog.Logger) error {
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry.OTELEndpoint, "goldhelper", version, cfg.Telemetry.OTELInsecure)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Error("otel shutdown failed", "error", err)
		}
	}()

	src, err := sampler.New(cfg.Sampler, cfg.Derived.TickInterval)
	if err != nil {
		return err
	}
	if opts.record != "" {
		rec, err := sampler.NewRecorder(src, opts.record)
		if err != nil {
			src.Close()
			return err
		}
		src = rec
	}

	p, err := plugin.New(plugin.Options{
		Config:      cfg,
		Source:      src,
		LogStats:    opts.logStats,
		OutputDir:   opts.outputDir,
		SnapshotDir: opts.snapshotDir,
		Meter:       telemetry.Meter("github.com/pthm-cable/goldhelper"),
		Logger:      logger,
	})
	if err != nil {
		src.Close()
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Error("close failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Server.Addr != "" {
		e := server.New(server.NewHandler(p, logger))
		g.Go(func() error {
			return server.Serve(ctx, e, cfg.Server.Addr, logger)
		})
	}

	if opts.headless {
		logger.Info("starting headless tracker",
			"mode", cfg.Sampler.Mode,
			"seed", cfg.Sampler.Seed,
			"tick", cfg.Derived.TickInterval,
			"max_ticks", opts.maxTicks,
			"http", cfg.Server.Addr,
		)
		g.Go(func() error {
			defer cancel()
			return runHeadless(ctx, p, cfg.Derived.TickInterval, opts, logger)
		})
		return g.Wait()
	}

	// Graphical mode stays on the main goroutine; raylib requires it
	err = runGraphical(ctx, p, cfg, opts, logger)
	cancel()
	return errors.Join(err, g.Wait())
}

func runHeadless(ctx context.Context, p *plugin.Plugin, tick time.Duration, opts runOptions, logger *slog.Logger) error {
	var ticker *time.Ticker
	if !opts.fast {
		ticker = time.NewTicker(tick)
		defer ticker.Stop()
	}

	for {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		if err := p.Update(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("sample source exhausted", "tick", p.Tick(), "state", p.View().State)
				return nil
			}
			return err
		}

		if opts.maxTicks > 0 && p.Tick() >= opts.maxTicks {
			logger.Info("max ticks reached", "tick", p.Tick())
			return nil
		}
	}
}

func runGraphical(ctx context.Context, p *plugin.Plugin, cfg *config.Config, opts runOptions, logger *slog.Logger) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Gold Helper")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	hud := ui.NewHUD(cfg.Display, cfg.Derived.Vertical)
	controls := ui.NewControls(p)
	exhausted := false

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		controls.HandleInput()

		// An exhausted source still drains commands each frame
		if err := p.Update(ctx); err != nil {
			if !errors.Is(err, io.EOF) {
				return err
			}
			if !exhausted {
				exhausted = true
				logger.Info("sample source exhausted", "tick", p.Tick())
			}
		}

		v := p.View()
		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 30, G: 34, B: 40, A: 255})
		area := hud.Draw(v)
		controls.Draw(area)
		hud.DrawStatus(v, int32(rl.GetScreenHeight()))
		rl.EndDrawing()
		p.RecordFrame()

		if opts.maxTicks > 0 && p.Tick() >= opts.maxTicks {
			break
		}
	}
	return nil
}

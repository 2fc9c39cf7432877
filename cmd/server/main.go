package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"grid_balance_simulator/internal/analysis"
	"grid_balance_simulator/internal/api"
	"grid_balance_simulator/internal/config"
	"grid_balance_simulator/internal/export"
	"grid_balance_simulator/internal/metrics"
	"grid_balance_simulator/internal/profile"
	"grid_balance_simulator/internal/simulator"
	"grid_balance_simulator/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "YAML parameter file; canonical defaults when empty")
	addr := flag.String("addr", ":8080", "listen address")
	seed := flag.Uint64("seed", 0, "noise seed; overrides the config file when non-zero")
	fps := flag.Float64("fps", 0, "tick rate; overrides the config file when non-zero")
	autostart := flag.Bool("autostart", false, "start the simulation loop immediately")
	autopilot := flag.Bool("autopilot", false, "drive lock and flex on the default schedule")
	exportDir := flag.String("export-dir", "", "write post-run CSV series to this directory on shutdown")
	frontendDir := flag.String("frontend-dir", "frontend/build", "directory containing frontend build")
	origins := flag.String("cors-origins", "*", "comma-separated allowed CORS origins")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	setupLogging(*debug)

	p, err := loadParams(*configPath, *seed, *fps)
	if err != nil {
		log.Fatal().Err(err).Msg("loading parameters")
	}
	runSeed := p.EffectiveSeed()
	log.Info().
		Float64("time_step_h", p.TimeStep).
		Float64("battery_capacity_kwh", p.BatteryCapacity).
		Float64("fps", p.FPS).
		Uint64("seed", runSeed).
		Msg("parameters loaded")

	// Set up WebSocket hub, metrics and simulator
	hub := ws.NewHub()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	engine, err := simulator.New(p, profile.New(p, profile.NewSource(runSeed)), simulator.Callbacks{ws.NewBridge(hub), m})
	if err != nil {
		log.Fatal().Err(err).Msg("creating simulation engine")
	}
	if *autopilot {
		engine.SetAutopilot(simulator.DefaultAutopilot())
	}

	router := api.NewRouter(engine, api.Options{
		WebSocket: ws.NewHandler(hub, engine),
		Gatherer:  reg,
	})
	if _, err := os.Stat(*frontendDir); err == nil {
		log.Info().Str("dir", *frontendDir).Msg("serving frontend")
		router.Static("/ui", *frontendDir)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.CORS(router, splitOrigins(*origins)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", *addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	if *autostart {
		engine.Start()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server shutdown")
	}

	engine.Pause()
	records := engine.Archive()
	rep := analysis.Build(engine.State().RunID, records, p)
	logReport(rep)

	if *exportDir != "" {
		paths, err := export.WriteDir(*exportDir, rep, records)
		if err != nil {
			log.Error().Err(err).Msg("exporting report")
			return
		}
		log.Info().Strs("files", paths).Msg("report exported")
	}
}

func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

// loadParams loads the parameter file and applies command-line overrides.
func loadParams(path string, seed uint64, fps float64) (config.Params, error) {
	p, err := config.LoadOrDefault(path)
	if err != nil {
		return config.Params{}, err
	}
	if seed != 0 {
		p.Seed = seed
	}
	if fps != 0 {
		p.FPS = fps
	}
	return p, p.Validate()
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// logReport writes the post-run summary to the log.
func logReport(rep analysis.Report) {
	log.Info().
		Str("run_id", rep.RunID).
		Int("ticks", rep.Ticks).
		Float64("hours", rep.Hours).
		Msg("run finished")

	for _, c := range rep.Cohorts {
		ev := log.Info().
			Str("cohort", c.Label).
			Int("samples", c.Samples).
			Str("cost_status", string(c.Cost.Status))
		if c.Cost.Status == analysis.CostOK {
			ev = ev.Float64("daily_cost", c.Cost.Daily)
		}
		ev.Msg("cohort summary")
	}
	if len(rep.Skipped) > 0 {
		log.Info().Strs("cohorts", rep.Skipped).Msg("no samples, ECDF skipped")
	}
	if rep.Notice != "" {
		log.Info().Msg(rep.Notice)
	}
}

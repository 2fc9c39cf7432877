package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"grid_balance_simulator/internal/analysis"
	"grid_balance_simulator/internal/config"
	"grid_balance_simulator/internal/export"
	"grid_balance_simulator/internal/model"
	"grid_balance_simulator/internal/profile"
	"grid_balance_simulator/internal/simulator"
)

func main() {
	configPath := flag.String("config", "", "YAML parameter file; canonical defaults when empty")
	days := flag.Int("days", 28, "simulated days to run")
	seed := flag.Uint64("seed", 0, "noise seed; overrides the config file when non-zero")
	flexHour := flag.Float64("flex-hour", 6, "hour of day at which flex is triggered")
	flexPeriod := flag.Int("flex-period", 14, "flex schedule period in days (0 disables)")
	flexActive := flag.Int("flex-active", 7, "days with flex at the start of each flex period")
	lockPeriod := flag.Int("lock-period", 28, "BESS lock schedule period in days (0 disables)")
	lockActive := flag.Int("lock-active", 14, "locked days at the start of each lock period")
	exportDir := flag.String("export-dir", "", "write CSV series to this directory")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	p, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading parameters")
	}
	if *seed != 0 {
		p.Seed = *seed
	}

	pilot := &simulator.Autopilot{
		FlexHour: *flexHour,
		Flex:     simulator.Schedule{PeriodDays: *flexPeriod, ActiveDays: *flexActive},
		Lock:     simulator.Schedule{PeriodDays: *lockPeriod, ActiveDays: *lockActive},
	}

	engine, records, err := run(p, pilot, *days)
	if err != nil {
		log.Fatal().Err(err).Msg("running experiment")
	}
	rep := analysis.Build(engine.State().RunID, records, p)

	if err := printReport(os.Stdout, rep); err != nil {
		log.Fatal().Err(err).Msg("printing report")
	}

	if *exportDir != "" {
		paths, err := export.WriteDir(*exportDir, rep, records)
		if err != nil {
			log.Fatal().Err(err).Msg("exporting report")
		}
		log.Info().Strs("files", paths).Msg("report exported")
	}
}

// run steps the engine through the given number of days without pacing.
func run(p config.Params, pilot *simulator.Autopilot, days int) (*simulator.Engine, []model.TickRecord, error) {
	if days < 1 {
		return nil, nil, fmt.Errorf("days must be >= 1, got %d", days)
	}
	seed := p.EffectiveSeed()
	engine, err := simulator.New(p, profile.New(p, profile.NewSource(seed)), nil)
	if err != nil {
		return nil, nil, err
	}
	engine.SetAutopilot(pilot)

	ticks := days * p.DaySamples()
	start := time.Now()
	engine.Run(ticks)
	log.Info().
		Str("run_id", engine.State().RunID).
		Uint64("seed", seed).
		Int("ticks", ticks).
		Dur("elapsed", time.Since(start)).
		Msg("experiment finished")

	return engine, engine.Archive(), nil
}

func printReport(w io.Writer, rep analysis.Report) error {
	fmt.Fprintf(w, "run %s: %d ticks, %.1f h\n\n", rep.RunID, rep.Ticks, rep.Hours)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COHORT\tSAMPLES\tMEDIAN BALANCE (kW)\tDAILY COST")
	for _, c := range rep.Cohorts {
		median := "-"
		if c.ECDF != nil {
			median = fmt.Sprintf("%.2f", c.ECDF.X[(c.ECDF.Len()-1)/2])
		}
		cost := string(c.Cost.Status)
		if c.Cost.Status == analysis.CostOK {
			cost = fmt.Sprintf("%.2f", c.Cost.Daily)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", c.Label, c.Samples, median, cost)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, s := range rep.Skipped {
		fmt.Fprintf(w, "\nno samples for %s, ECDF skipped", s)
	}
	if len(rep.Skipped) > 0 {
		fmt.Fprintln(w)
	}
	if rep.Notice != "" {
		fmt.Fprintf(w, "\n%s\n", rep.Notice)
	}
	return nil
}

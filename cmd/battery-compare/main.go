package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"grid_balance_simulator/internal/analysis"
	"grid_balance_simulator/internal/config"
	"grid_balance_simulator/internal/model"
	"grid_balance_simulator/internal/profile"
	"grid_balance_simulator/internal/simulator"
)

// collector implements simulator.Callback, keeping only the latest snapshot.
type collector struct {
	last simulator.Snapshot
}

func (c *collector) OnState(simulator.State)                          {}
func (c *collector) OnTick(s simulator.Snapshot, _ []model.TickRecord) { c.last = s }

type result struct {
	capacity float64
	cycles   float64
	report   analysis.Report
}

func main() {
	configPath := flag.String("config", "", "YAML parameter file; canonical defaults when empty")
	days := flag.Int("days", 28, "simulated days per capacity")
	seed := flag.Uint64("seed", 1, "noise seed shared by every run")
	capsFlag := flag.String("capacities", "45,90,180,270,360", "comma-separated battery capacities in kWh")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	base, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading parameters")
	}
	base.Seed = *seed

	capacities, err := parseCapacities(*capsFlag)
	if err != nil {
		log.Fatal().Err(err).Str("capacities", *capsFlag).Msg("invalid capacities")
	}
	sort.Float64s(capacities)

	results, err := compare(base, capacities, *days)
	if err != nil {
		log.Fatal().Err(err).Msg("comparing capacities")
	}
	printTable(os.Stdout, results, *days)
}

// compare runs one seeded experiment per capacity under the default autopilot.
// Runs are independent and execute concurrently; results keep the input order.
func compare(base config.Params, capacities []float64, days int) ([]result, error) {
	results := make([]result, len(capacities))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, capacity := range capacities {
		g.Go(func() error {
			p := base
			p.BatteryCapacity = capacity

			cb := &collector{}
			engine, err := simulator.New(p, profile.New(p, profile.NewSource(p.Seed)), cb)
			if err != nil {
				return fmt.Errorf("capacity %g: %w", capacity, err)
			}
			engine.SetAutopilot(simulator.DefaultAutopilot())
			engine.Run(days * p.DaySamples())

			results[i] = result{
				capacity: capacity,
				cycles:   cb.last.BatteryCycles,
				report:   analysis.Build(engine.State().RunID, engine.Archive(), p),
			}
			log.Info().Float64("capacity_kwh", capacity).Msg("capacity done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printTable(w io.Writer, results []result, days int) {
	if len(results) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Battery Size Comparison")
	fmt.Fprintf(w, "  %d simulated days per run, default lock/flex schedule\n", days)
	fmt.Fprintln(w)

	fmt.Fprintf(w, " %8s │ %6s │ %12s │ %12s │ %12s │ %8s\n",
		"Capacity", "Cycles", "No BESS&FLEX", "BESS only", "BESS&FLEX", "Marginal")
	fmt.Fprintf(w, "──────────┼────────┼──────────────┼──────────────┼──────────────┼──────────\n")

	for i, r := range results {
		none := dailyCost(r.report, analysis.NoIntervention)
		bess := dailyCost(r.report, analysis.BESSOnly)
		both := dailyCost(r.report, analysis.BESSAndFlex)

		marginal := "-"
		if i > 0 {
			prev := results[i-1]
			if m, ok := marginalSaving(prev, r); ok {
				marginal = fmt.Sprintf("%.3f", m)
			}
		}

		fmt.Fprintf(w, " %4.0f kWh │ %6.1f │ %12s │ %12s │ %12s │ %8s\n",
			r.capacity, r.cycles, none, bess, both, marginal)
	}
	fmt.Fprintln(w)
}

// marginalSaving is the drop in BESS-only daily cost per added kWh.
func marginalSaving(prev, cur result) (float64, bool) {
	a, okA := costOf(prev.report, analysis.BESSOnly)
	b, okB := costOf(cur.report, analysis.BESSOnly)
	dCap := cur.capacity - prev.capacity
	if !okA || !okB || dCap <= 0 {
		return 0, false
	}
	return (a - b) / dCap, true
}

func costOf(rep analysis.Report, c analysis.Cohort) (float64, bool) {
	cr, ok := rep.Cohort(c)
	if !ok || cr.Cost.Status != analysis.CostOK {
		return 0, false
	}
	return cr.Cost.Daily, true
}

func dailyCost(rep analysis.Report, c analysis.Cohort) string {
	if v, ok := costOf(rep, c); ok {
		return fmt.Sprintf("%.2f", v)
	}
	return "n/a"
}

func parseCapacities(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	caps := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("capacity must be positive, got %v", v)
		}
		caps = append(caps, v)
	}
	if len(caps) == 0 {
		return nil, fmt.Errorf("no capacities specified")
	}
	return caps, nil
}

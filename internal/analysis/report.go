package analysis

import (
	"grid_balance_simulator/internal/config"
	"grid_balance_simulator/internal/model"
)

// CohortReport holds every post-run series of one cohort.
type CohortReport struct {
	Key     string        `json:"key"`
	Label   string        `json:"label"`
	Samples int           `json:"samples"`
	ECDF    *ECDF         `json:"ecdf,omitempty"`
	Hourly  []HourlyPoint `json:"hourly"`
	Cost    Cost          `json:"cost"`
}

// Report is the post-run summary handed to plotting consumers.
type Report struct {
	RunID   string         `json:"run_id"`
	Ticks   int            `json:"ticks"`
	Hours   float64        `json:"hours"`
	Window  int            `json:"window"`
	Cohorts []CohortReport `json:"cohorts"`
	Prices  []PricePoint   `json:"prices,omitempty"`
	// Skipped lists cohorts without samples.
	Skipped []string `json:"skipped,omitempty"`
	// Notice is set when costs could not be derived.
	Notice string `json:"notice,omitempty"`
}

// Cohort returns the report of c.
func (r Report) Cohort(c Cohort) (CohortReport, bool) {
	for _, cr := range r.Cohorts {
		if cr.Key == c.Key() {
			return cr, true
		}
	}
	return CohortReport{}, false
}

// Build runs every post-run analysis over a copy of the archive.
func Build(runID string, records []model.TickRecord, p config.Params) Report {
	window := p.DaySamples()
	cohorts := Split(records, window)

	rep := Report{
		RunID:  runID,
		Ticks:  len(records),
		Hours:  float64(len(records)) * p.TimeStep,
		Window: window,
	}

	hourly := make(map[Cohort][]HourlyPoint, len(Cohorts))
	for _, c := range Cohorts {
		hourly[c] = HourlyAverage(cohorts[c], p.TimeStep)
	}

	reference := hourly[NoIntervention]
	if len(reference) >= window {
		rep.Prices = PriceCurve(reference, p.HighEnergyPrice, p.LowEnergyPrice)
	} else {
		rep.Notice = InsufficientDataMessage
	}

	for _, c := range Cohorts {
		recs := cohorts[c]
		cr := CohortReport{
			Key:     c.Key(),
			Label:   c.Label(),
			Samples: len(recs),
			Hourly:  hourly[c],
			Cost:    DailyCost(hourly[c], rep.Prices, p.TimeStep, window),
		}
		if e, ok := NewECDF(Balances(recs)); ok {
			cr.ECDF = &e
		} else {
			rep.Skipped = append(rep.Skipped, c.Label())
		}
		rep.Cohorts = append(rep.Cohorts, cr)
	}
	return rep
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"grid_balance_simulator/internal/analysis"
	"grid_balance_simulator/internal/model"
)

// Series names accepted by Write.
const (
	SeriesArchive = "archive"
	SeriesECDF    = "ecdf"
	SeriesHourly  = "hourly"
	SeriesCost    = "cost"
	SeriesPrices  = "prices"
)

// Names lists every exportable series.
var Names = []string{SeriesArchive, SeriesECDF, SeriesHourly, SeriesCost, SeriesPrices}

// Write writes one named series as CSV.
func Write(w io.Writer, name string, rep analysis.Report, records []model.TickRecord) error {
	switch name {
	case SeriesArchive:
		return WriteArchive(w, records)
	case SeriesECDF:
		return WriteECDF(w, rep)
	case SeriesHourly:
		return WriteHourly(w, rep)
	case SeriesCost:
		return WriteCost(w, rep)
	case SeriesPrices:
		return WritePrices(w, rep)
	}
	return fmt.Errorf("unknown series %q", name)
}

// WriteDir writes every series to <dir>/<name>.csv and returns the paths.
func WriteDir(dir string, rep analysis.Report, records []model.TickRecord) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	paths := make([]string, 0, len(Names))
	for _, name := range Names {
		path := filepath.Join(dir, name+".csv")
		if err := writeFile(path, name, rep, records); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path, name string, rep analysis.Report, records []model.TickRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Write(f, name, rep, records); err != nil {
		return err
	}
	return f.Close()
}

func WriteArchive(w io.Writer, records []model.TickRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"index",
		"time_of_day",
		"generation_kw",
		"battery_charge_kwh",
		"demand_kw",
		"balance_kw",
		"battery_locked",
		"flex_active",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, r := range records {
		row := []string{
			strconv.Itoa(i),
			fmtFloat(r.TimeOfDay),
			fmtFloat(r.Generation),
			fmtFloat(r.BatteryCharge),
			fmtFloat(r.Demand),
			fmtFloat(r.Balance),
			strconv.FormatBool(r.BatteryLocked),
			strconv.FormatBool(r.FlexActive),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteECDF writes one row per sample: cohort, balance, cumulative probability.
func WriteECDF(w io.Writer, rep analysis.Report) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"cohort", "label", "balance_kw", "probability"}); err != nil {
		return err
	}
	for _, c := range rep.Cohorts {
		if c.ECDF == nil {
			continue
		}
		for i := range c.ECDF.X {
			row := []string{c.Key, c.Label, fmtFloat(c.ECDF.X[i]), fmtFloat(c.ECDF.Y[i])}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteHourly(w io.Writer, rep analysis.Report) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"cohort", "label", "hour", "balance_kw", "count"}); err != nil {
		return err
	}
	for _, c := range rep.Cohorts {
		for _, h := range c.Hourly {
			row := []string{c.Key, c.Label, fmtFloat(h.Hour), fmtFloat(h.Balance), strconv.Itoa(h.Count)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCost writes the daily cost per cohort. Daily is empty when the
// status is not ok.
func WriteCost(w io.Writer, rep analysis.Report) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"cohort", "label", "samples", "status", "daily_cost"}); err != nil {
		return err
	}
	for _, c := range rep.Cohorts {
		daily := ""
		if c.Cost.Status == analysis.CostOK {
			daily = fmtFloat(c.Cost.Daily)
		}
		row := []string{c.Key, c.Label, strconv.Itoa(c.Samples), string(c.Cost.Status), daily}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WritePrices(w io.Writer, rep analysis.Report) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"hour", "price"}); err != nil {
		return err
	}
	for _, p := range rep.Prices {
		if err := cw.Write([]string{fmtFloat(p.Hour), fmtFloat(p.Price)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

package analysis

import (
	"fmt"

	"grid_balance_simulator/internal/model"
)

// Cohort identifies the records sharing a (battery locked, windowed flex)
// combination. A locked battery means the BESS took no part.
type Cohort struct {
	Locked bool
	Flex   bool
}

var (
	NoIntervention = Cohort{Locked: true, Flex: false}
	FlexOnly       = Cohort{Locked: true, Flex: true}
	BESSOnly       = Cohort{Locked: false, Flex: false}
	BESSAndFlex    = Cohort{Locked: false, Flex: true}
)

// Cohorts lists every cohort in report order.
var Cohorts = []Cohort{NoIntervention, FlexOnly, BESSOnly, BESSAndFlex}

// Label is the human-readable cohort name used in reports and exports.
func (c Cohort) Label() string {
	switch c {
	case NoIntervention:
		return "no BESS&FLEX"
	case FlexOnly:
		return "FLEX only"
	case BESSOnly:
		return "BESS only"
	default:
		return "BESS&FLEX"
	}
}

// Key is the compact two-letter form: locked then flex, t or f.
func (c Cohort) Key() string {
	return fmt.Sprintf("%s%s", tf(c.Locked), tf(c.Flex))
}

func (c Cohort) String() string { return c.Label() }

func tf(b bool) string {
	if b {
		return "t"
	}
	return "f"
}

// WindowedFlex marks each record whose trailing window of the given number
// of samples, itself included, contains any flex-active record.
func WindowedFlex(records []model.TickRecord, window int) []bool {
	if window < 1 {
		window = 1
	}
	out := make([]bool, len(records))
	active := 0
	for i, r := range records {
		if r.FlexActive {
			active++
		}
		if i >= window && records[i-window].FlexActive {
			active--
		}
		out[i] = active > 0
	}
	return out
}

// Split partitions the records into the four cohorts. Every record lands in
// exactly one cohort and order within a cohort follows the run.
func Split(records []model.TickRecord, window int) map[Cohort][]model.TickRecord {
	flex := WindowedFlex(records, window)
	out := make(map[Cohort][]model.TickRecord, len(Cohorts))
	for _, c := range Cohorts {
		out[c] = nil
	}
	for i, r := range records {
		c := Cohort{Locked: r.BatteryLocked, Flex: flex[i]}
		out[c] = append(out[c], r)
	}
	return out
}

// Balances extracts the grid balance column.
func Balances(records []model.TickRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Balance
	}
	return out
}

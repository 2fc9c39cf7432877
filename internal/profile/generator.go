package profile

import (
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"grid_balance_simulator/internal/config"
)

// Noise bounds of the multiplicative randomness applied to each signal.
const (
	GenerationNoiseMin = 0.8
	GenerationNoiseMax = 1.2
	DemandNoiseMin     = 0.2
	DemandNoiseMax     = 1.8
)

// Sampler draws one random value per call.
type Sampler interface {
	Rand() float64
}

// NewSource returns a seeded PCG source. Equal seeds give equal noise streams.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Generator produces renewable generation and demand for a time of day.
type Generator struct {
	maxGeneration float64
	sunHours      float64
	baseDemand    float64
	timeShift     float64

	generationNoise Sampler
	demandNoise     Sampler
}

// New creates a generator whose noise is drawn uniformly from src.
func New(p config.Params, src rand.Source) *Generator {
	src = &lockedSource{src: src}
	return NewWithSamplers(p,
		distuv.Uniform{Min: GenerationNoiseMin, Max: GenerationNoiseMax, Src: src},
		distuv.Uniform{Min: DemandNoiseMin, Max: DemandNoiseMax, Src: src},
	)
}

// NewWithSamplers creates a generator with explicit noise samplers.
func NewWithSamplers(p config.Params, generationNoise, demandNoise Sampler) *Generator {
	return &Generator{
		maxGeneration:   p.MaxGeneration,
		sunHours:        p.SunHours,
		baseDemand:      p.BaseDemand,
		timeShift:       p.TimeShift,
		generationNoise: generationNoise,
		demandNoise:     demandNoise,
	}
}

// Renewable returns generation (kW) at the given hour of day.
// No generation while the sun term is non-positive; no noise is drawn then.
func (g *Generator) Renewable(timeOfDay float64) float64 {
	sun := math.Sin(math.Pi / g.sunHours * timeOfDay)
	if sun <= 0 {
		return 0
	}
	return g.maxGeneration * sun * g.generationNoise.Rand()
}

// Demand returns demand (kW) at the given hour of day scaled by the
// flexibility multiplier. Demand is never negative.
func (g *Generator) Demand(timeOfDay, modification float64) float64 {
	shape := math.Sin(math.Pi/12*(timeOfDay-g.timeShift)) * g.demandNoise.Rand()
	d := g.baseDemand*modification + shape*g.baseDemand/2.5
	if d < 0 {
		return 0
	}
	return d
}

// Sequence replays fixed noise values cyclically.
type Sequence struct {
	Values []float64
	next   int
}

func (s *Sequence) Rand() float64 {
	if len(s.Values) == 0 {
		return 1
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

// lockedSource serialises access to a shared source; rand sources are not
// safe for concurrent use.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

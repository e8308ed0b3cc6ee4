package sampler

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"gonum.org/v1/gonum/stat/distuv"
)

// Stream separates the independent random streams derived from one seed.
type Stream uint64

const (
	PlanStream      Stream = 0x706c616e
	RenderStream    Stream = 0x72656e64
	SelectionStream Stream = 0x73656c63
)

// MaxSeed is the largest seed a float64 holds exactly, so seeds up to it
// survive JSON and plain-map round trips.
const MaxSeed = 1<<53 - 1

const truncatedNormalTries = 64

// DeriveSeed mixes a base seed and a task index (splitmix64). The result
// depends only on its arguments, so the i-th unit of work gets the same
// seed in a sequential run and in a parallel batch.
func DeriveSeed(base, index uint64) uint64 {
	z := base + (index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return (z ^ (z >> 31)) & MaxSeed
}

// NewRand builds an explicit generator for one stream of one seed.
func NewRand(seed uint64, stream Stream) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(stream)))
}

// Sampler draws parameter values from a single reseedable stream. A fixed
// seed and a fixed call sequence always yield the same values.
// Sampler is not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

func New(seed uint64) *Sampler {
	return &Sampler{rng: NewRand(seed, PlanStream)}
}

// Rand exposes the underlying stream for callers that need raw draws.
func (s *Sampler) Rand() *rand.Rand {
	return s.rng
}

// Sample draws one value in [min, max]. Equal bounds return min without
// touching the stream.
func (s *Sampler) Sample(min, max float64, kind Distribution) (float64, error) {
	if err := (Range{Min: min, Max: max, Distribution: kind}).Validate(); err != nil {
		return 0, err
	}
	if min == max {
		return min, nil
	}
	if kind == "" {
		kind = Uniform
	}

	span := max - min
	switch kind {
	case Uniform:
		return min + s.rng.Float64()*span, nil
	case Normal:
		v := distuv.Normal{Mu: (min + max) / 2, Sigma: span / 6, Src: s.rng}.Rand()
		return clip(v, min, max), nil
	case Exponential:
		v := distuv.Exponential{Rate: 30 / span, Src: s.rng}.Rand() + min
		return math.Min(v, max), nil
	case Beta:
		v := distuv.Beta{Alpha: 2, Beta: 5, Src: s.rng}.Rand()
		return min + v*span, nil
	case LogNormal:
		v := distuv.LogNormal{Mu: 0, Sigma: 0.5, Src: s.rng}.Rand()
		return math.Min(min+0.2*span*v, max), nil
	case TruncatedNormal:
		n := distuv.Normal{Mu: (min + max) / 2, Sigma: span / 6, Src: s.rng}
		for i := 0; i < truncatedNormalTries; i++ {
			if v := n.Rand(); v >= min && v <= max {
				return v, nil
			}
		}
		return clip(n.Rand(), min, max), nil
	}
	return 0, fmt.Errorf("%w: unknown distribution %q", entity.ErrInvalidArgument, kind)
}

func (s *Sampler) SampleRange(r Range) (float64, error) {
	return s.Sample(r.Min, r.Max, r.Distribution)
}

// Int samples r and rounds to the nearest integer.
func (s *Sampler) Int(r Range) (int, error) {
	v, err := s.SampleRange(r)
	if err != nil {
		return 0, err
	}
	return int(math.Round(v)), nil
}

// Bool reports true with probability p. p <= 0 and p >= 1 do not consume
// the stream.
func (s *Sampler) Bool(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// Choice picks an index in [0, n). A single option does not consume the
// stream.
func (s *Sampler) Choice(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: choice over %d options", entity.ErrInvalidArgument, n)
	}
	if n == 1 {
		return 0, nil
	}
	return s.rng.IntN(n), nil
}

func clip(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

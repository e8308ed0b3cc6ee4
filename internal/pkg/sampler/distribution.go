package sampler

import (
	"fmt"
	"strings"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
)

// Distribution names the shape a Range is sampled from.
type Distribution string

const (
	Uniform         Distribution = "uniform"
	Normal          Distribution = "normal"
	Exponential     Distribution = "exponential"
	Beta            Distribution = "beta"
	LogNormal       Distribution = "lognormal"
	TruncatedNormal Distribution = "truncated_normal"
)

var distributions = map[Distribution]bool{
	Uniform:         true,
	Normal:          true,
	Exponential:     true,
	Beta:            true,
	LogNormal:       true,
	TruncatedNormal: true,
}

// ParseDistribution accepts the names above; an empty name means uniform.
func ParseDistribution(name string) (Distribution, error) {
	d := Distribution(strings.ToLower(strings.TrimSpace(name)))
	if d == "" {
		return Uniform, nil
	}
	if !distributions[d] {
		return "", fmt.Errorf("%w: unknown distribution %q", entity.ErrInvalidArgument, name)
	}
	return d, nil
}

func (d Distribution) Validate() error {
	_, err := ParseDistribution(string(d))
	return err
}

// Range is a (min, max, distribution) triple. Min == Max disables whatever
// the range drives.
type Range struct {
	Min          float64      `json:"min" mapstructure:"min"`
	Max          float64      `json:"max" mapstructure:"max"`
	Distribution Distribution `json:"distribution,omitempty" mapstructure:"distribution"`
}

// Fixed is a degenerate range that always yields v.
func Fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

func Between(min, max float64, d Distribution) Range {
	return Range{Min: min, Max: max, Distribution: d}
}

func (r Range) Disabled() bool {
	return r.Min == r.Max
}

func (r Range) Validate() error {
	if err := r.Distribution.Validate(); err != nil {
		return err
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %v greater than max %v", entity.ErrInvalidArgument, r.Min, r.Max)
	}
	return nil
}

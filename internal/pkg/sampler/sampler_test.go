package sampler

import (
	"errors"
	"testing"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allDistributions = []Distribution{Uniform, Normal, Exponential, Beta, LogNormal, TruncatedNormal}

func TestSampleStaysInRange(t *testing.T) {
	for _, kind := range allDistributions {
		t.Run(string(kind), func(t *testing.T) {
			s := New(42)
			for i := 0; i < 2000; i++ {
				v, err := s.Sample(-5, 15, kind)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, v, -5.0)
				assert.LessOrEqual(t, v, 15.0)
			}
		})
	}
}

func TestEqualBoundsShortCircuit(t *testing.T) {
	for _, kind := range allDistributions {
		t.Run(string(kind), func(t *testing.T) {
			s := New(7)
			fresh := New(7)

			v, err := s.Sample(3.5, 3.5, kind)
			require.NoError(t, err)
			assert.Equal(t, 3.5, v)

			// the stream must be untouched
			assert.Equal(t, fresh.Rand().Uint64(), s.Rand().Uint64())
		})
	}
}

func TestSampleIsReproducible(t *testing.T) {
	a, b := New(1234), New(1234)
	for _, kind := range allDistributions {
		for i := 0; i < 50; i++ {
			va, err := a.Sample(0, 10, kind)
			require.NoError(t, err)
			vb, err := b.Sample(0, 10, kind)
			require.NoError(t, err)
			assert.Equal(t, va, vb)
		}
	}
}

func TestSampleRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		min  float64
		max  float64
		kind Distribution
	}{
		{name: "min greater than max", min: 2, max: 1, kind: Uniform},
		{name: "unknown distribution", min: 0, max: 1, kind: "cauchy"},
		{name: "unknown distribution with equal bounds", min: 1, max: 1, kind: "cauchy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(1).Sample(tt.min, tt.max, tt.kind)
			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrInvalidArgument))
		})
	}
}

func TestExponentialFavoursLowValues(t *testing.T) {
	s := New(99)
	low := 0
	const n = 5000
	for i := 0; i < n; i++ {
		v, err := s.Sample(0, 100, Exponential)
		require.NoError(t, err)
		if v < 10 {
			low++
		}
	}
	assert.Greater(t, float64(low)/n, 0.6)
}

func TestNormalIsCentered(t *testing.T) {
	s := New(5)
	sum := 0.0
	const n = 5000
	for i := 0; i < n; i++ {
		v, err := s.Sample(-30, 30, Normal)
		require.NoError(t, err)
		sum += v
	}
	assert.InDelta(t, 0, sum/n, 1.0)
}

func TestBetaMeanIsSkewedLow(t *testing.T) {
	s := New(11)
	sum := 0.0
	const n = 5000
	for i := 0; i < n; i++ {
		v, err := s.Sample(0, 1, Beta)
		require.NoError(t, err)
		sum += v
	}
	// Beta(2,5) has mean 2/7
	assert.InDelta(t, 2.0/7.0, sum/n, 0.02)
}

func TestParseDistribution(t *testing.T) {
	d, err := ParseDistribution("")
	require.NoError(t, err)
	assert.Equal(t, Uniform, d)

	d, err = ParseDistribution(" Truncated_Normal ")
	require.NoError(t, err)
	assert.Equal(t, TruncatedNormal, d)

	_, err = ParseDistribution("poisson")
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestHelpers(t *testing.T) {
	s := New(3)

	n, err := s.Int(Between(1, 3, Uniform))
	require.NoError(t, err)
	assert.Contains(t, []int{1, 2, 3}, n)

	assert.False(t, s.Bool(0))
	assert.True(t, s.Bool(1))

	idx, err := s.Choice(1)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = s.Choice(0)
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)
}

func TestDeriveSeed(t *testing.T) {
	assert.Equal(t, DeriveSeed(10, 3), DeriveSeed(10, 3))
	assert.NotEqual(t, DeriveSeed(10, 3), DeriveSeed(10, 4))
	assert.NotEqual(t, DeriveSeed(10, 3), DeriveSeed(11, 3))
	assert.LessOrEqual(t, DeriveSeed(1<<60, 1<<40), uint64(MaxSeed))
}

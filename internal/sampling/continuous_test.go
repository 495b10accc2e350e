package sampling

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/synthetizer/pkg/errors"
)

func TestContinuousSamplerConstant(t *testing.T) {
	for _, v := range []int{0, 7, 1440} {
		sampler, err := NewContinuousSampler([]int{v, v, v}, seededConfig())
		require.NoError(t, err)

		c, ok := sampler.Constant()
		require.True(t, ok)
		assert.Equal(t, v, c)
		assert.Nil(t, sampler.Density())

		for i := 0; i < 250; i++ {
			assert.Equal(t, v, sampler.SampleInt())
		}
	}
}

func TestContinuousSamplerDensity(t *testing.T) {
	observed := []int{10, 12, 15, 15, 18, 20, 22, 25, 30, 40}
	sampler, err := NewContinuousSampler(observed, seededConfig())
	require.NoError(t, err)

	_, constant := sampler.Constant()
	require.False(t, constant)

	pmf := sampler.Density()
	require.Len(t, pmf, 40)

	total := 0.0
	for _, p := range pmf {
		assert.GreaterOrEqual(t, p, 0.0)
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	for i := 0; i < 1000; i++ {
		v := sampler.SampleInt()
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 40)
	}
}

func TestContinuousSamplerNegative(t *testing.T) {
	_, err := NewContinuousSampler([]int{3, -1, 4}, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestContinuousSamplerRejectsOversizedSupport(t *testing.T) {
	_, err := NewContinuousSampler([]int{1, 10000000000}, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.ErrorIs(t, err, errors.NewInvalidInputError(errors.CodeSupportTooLarge, ""))

	config := seededConfig()
	config.MaxSupport = 100

	sampler, err := NewContinuousSampler([]int{1, 40, 100}, config)
	require.NoError(t, err)
	assert.Len(t, sampler.Density(), 100)

	_, err = NewContinuousSampler([]int{1, 40, 101}, config)
	assert.ErrorIs(t, err, errors.NewInvalidInputError(errors.CodeSupportTooLarge, ""))

	config.MaxSupport = 0
	_, err = NewContinuousSampler([]int{1, 2}, config)
	assert.ErrorIs(t, err, errors.ErrConfiguration)
}

func TestContinuousSamplerEmpty(t *testing.T) {
	_, err := NewContinuousSampler(nil, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestContinuousSamplerTrimsTails(t *testing.T) {
	observed := make([]int, 0, 100)
	for i := 0; i < 98; i++ {
		observed = append(observed, 50+i%5)
	}
	observed = append(observed, 0, 5000)

	sampler, err := NewContinuousSampler(observed, seededConfig())
	require.NoError(t, err)

	d := sampler.Describe("minutes")
	assert.Equal(t, 100, d.Count)
	assert.Equal(t, 94, d.Trimmed)
	assert.Equal(t, 0, d.Min)
	assert.Equal(t, 5000, d.Max)
	assert.InDelta(t, 52.0, d.Mean, 0.5)
	assert.NotEmpty(t, d.Histogram)
	assert.Len(t, d.Density, 5000)
}

func TestContinuousSamplerTrimmedToConstant(t *testing.T) {
	observed := make([]int, 0, 40)
	for i := 0; i < 39; i++ {
		observed = append(observed, 30)
	}
	observed = append(observed, 90)

	sampler, err := NewContinuousSampler(observed, seededConfig())
	require.NoError(t, err)

	c, ok := sampler.Constant()
	require.True(t, ok)
	assert.Equal(t, 30, c)
}

func TestContinuousSamplerRejectsBadConfig(t *testing.T) {
	config := DefaultConfig()
	config.BatchSize = 0
	_, err := NewContinuousSampler([]int{1, 2}, config)
	assert.ErrorIs(t, err, errors.ErrConfiguration)
}

func TestToInts(t *testing.T) {
	got, err := ToInts([]any{1, int64(2), 3.0, "4", json.Number("5"), uint8(6)})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, got)

	for _, bad := range []any{2.5, "x", nil, true, json.Number("1.5")} {
		_, err := ToInts([]any{bad})
		assert.ErrorIs(t, err, errors.ErrInvalidInput, "value %v", bad)
	}
}

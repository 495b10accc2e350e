package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/synthetizer/pkg/errors"
)

func TestGroupSampler(t *testing.T) {
	groups := [][]any{
		{"Patient/1", "Patient/2"},
		{"Patient/3"},
		{"Patient/1", "Patient/4", "Patient/5"},
	}
	sampler, err := NewGroupSampler(groups, seededConfig())
	require.NoError(t, err)
	assert.Equal(t, KindGroup, sampler.Kind())

	pooled := []any{"Patient/1", "Patient/2", "Patient/3", "Patient/4", "Patient/5"}
	for i := 0; i < 200; i++ {
		v, err := sampler.Sample()
		require.NoError(t, err)

		members := v.([]any)
		assert.Contains(t, []int{1, 2, 3}, len(members))
		seen := map[any]bool{}
		for _, m := range members {
			assert.Contains(t, pooled, m)
			assert.False(t, seen[m])
			seen[m] = true
		}
	}
}

func TestGroupSamplerCapsSize(t *testing.T) {
	groups := [][]any{{"a", "a", "a"}}
	sampler, err := NewGroupSampler(groups, nil)
	require.NoError(t, err)

	v, err := sampler.Sample()
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, v)
}

func TestGroupSamplerEmpty(t *testing.T) {
	_, err := NewGroupSampler(nil, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = NewGroupSampler([][]any{{}, {}}, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestSelectorGroupHint(t *testing.T) {
	selector := newTestSelector(t)

	sampler, err := selector.Select([]any{
		[]any{map[string]any{"actor": "Patient/1"}},
		nil,
		[]any{map[string]any{"actor": "Patient/2"}, map[string]any{"actor": "Patient/3"}},
	}, KindHint{Group: true})
	require.NoError(t, err)
	assert.Equal(t, KindGroup, sampler.Kind())

	d := sampler.Describe("participant")
	require.Len(t, d.Components, 2)
	assert.Equal(t, "participant - size", d.Components[0].Title)
	assert.Equal(t, 3, d.Components[1].Distinct)
}

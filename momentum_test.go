package gauge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMomentum_RejectsBackwardsInterval(t *testing.T) {
	t.Parallel()

	_, err := newMomentum(1, 10, 5)
	require.ErrorIs(t, err, ErrBadMomentum)

	_, err = newMomentum(1, 5, 5)
	require.ErrorIs(t, err, ErrBadMomentum)
}

func TestNewMomentum_AllowsInfiniteEnds(t *testing.T) {
	t.Parallel()

	m, err := newMomentum(1, math.Inf(-1), 5)
	require.NoError(t, err)
	require.Equal(t, math.Inf(-1), m.Since)

	m, err = newMomentum(1, 5, math.Inf(1))
	require.NoError(t, err)
	require.Equal(t, math.Inf(1), m.Until)

	// both infinite: since >= until check is skipped entirely.
	m, err = newMomentum(1, math.Inf(-1), math.Inf(1))
	require.NoError(t, err)
	require.True(t, m.active(0))
}

func TestMomentum_Active(t *testing.T) {
	t.Parallel()

	m, err := newMomentum(2, 3, 8)
	require.NoError(t, err)

	require.False(t, m.active(2.999))
	require.True(t, m.active(3))
	require.True(t, m.active(5.5))
	require.True(t, m.active(8))
	require.False(t, m.active(8.001))
}

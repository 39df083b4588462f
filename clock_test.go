package gauge

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestClock_NewClock_StartsNearZero(t *testing.T) {
	t.Parallel()

	c := NewClock()
	require.InDelta(t, 0, c.Now(), 0.1)
}

func TestClock_MockClock_AdvancesDeterministically(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	c := NewMockClock(mock)

	require.Equal(t, 0.0, c.Now())

	mock.Add(5 * time.Second)
	require.Equal(t, 5.0, c.Now())

	mock.Add(2500 * time.Millisecond)
	require.Equal(t, 7.5, c.Now())
}

func TestClock_MockClock_EpochIsWrapTime(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	mock.Add(100 * time.Second)
	c := NewMockClock(mock)

	require.Equal(t, 0.0, c.Now())
}

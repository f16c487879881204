package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_WithinBudget(t *testing.T) {
	tr := New(60, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, tr.Acquire(ctx))
	}

	st := tr.Status()
	assert.Equal(t, 3, st.UsedToday)
	assert.Equal(t, 0, st.RemainingToday)
}

func TestAcquire_DailyBudgetExhausted(t *testing.T) {
	tr := New(60, 1)
	ctx := context.Background()

	require.NoError(t, tr.Acquire(ctx))
	err := tr.Acquire(ctx)
	assert.ErrorIs(t, err, ErrDailyBudget)
}

func TestAcquire_BudgetResetsNextDay(t *testing.T) {
	tr := New(60, 1)
	ctx := context.Background()

	current := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return current }

	require.NoError(t, tr.Acquire(ctx))
	assert.ErrorIs(t, tr.Acquire(ctx), ErrDailyBudget)

	current = current.Add(24 * time.Hour)
	require.NoError(t, tr.Acquire(ctx))
}

func TestAcquire_CancelledContext(t *testing.T) {
	// Burst of 1: the second acquire must wait for a slot, and the cancelled
	// context aborts that wait.
	tr := New(1, 100)

	require.NoError(t, tr.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tr.Acquire(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDailyBudget)
}

func TestStatus_Snapshot(t *testing.T) {
	tr := New(5, 50)
	require.NoError(t, tr.Acquire(context.Background()))

	st := tr.Status()
	assert.Equal(t, 1, st.UsedToday)
	assert.Equal(t, 50, st.MaxPerDay)
	assert.Equal(t, 49, st.RemainingToday)
	assert.Equal(t, 5, st.MaxPerMinute)
}

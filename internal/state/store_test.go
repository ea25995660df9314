package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndRecent(t *testing.T) {
	st, err := Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Append(ctx, Record{
		BuildID:    "run-1",
		StartedAt:  time.Unix(1700000000, 0),
		DurationMS: 42,
		Written:    4,
		Success:    true,
	}))
	require.NoError(t, st.Append(ctx, Record{
		BuildID:    "run-2",
		StartedAt:  time.Unix(1700000100, 0),
		DurationMS: 7,
		Written:    0,
		Success:    false,
		Error:      "source root missing",
	}))

	records, err := st.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	require.Equal(t, "run-2", records[0].BuildID)
	require.False(t, records[0].Success)
	require.Equal(t, "source root missing", records[0].Error)
	require.Equal(t, "run-1", records[1].BuildID)
	require.True(t, records[1].Success)
	require.Equal(t, 4, records[1].Written)
}

func TestStore_RecentLimit(t *testing.T) {
	st, err := Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, st.Append(ctx, Record{BuildID: "run", StartedAt: time.Now(), Success: true}))
	}
	records, err := st.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
}

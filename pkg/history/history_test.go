package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenscraft/optibulk/pkg/config"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(config.HistoryConfig{Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	require.NoError(t, j.Record(ctx, Run{
		Mode: "color", Uploaded: 5, Failed: 0,
		Duration: 3 * time.Second, StartedAt: base,
	}))
	require.NoError(t, j.Record(ctx, Run{
		ID: "run-2", Mode: "angle", Uploaded: 2, Failed: 1,
		Duration: time.Second, StartedAt: base.Add(time.Minute),
		Errors: []RunError{{Item: "Holbrook", Error: "status 422"}},
	}))

	runs, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Новые прогоны первыми.
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "angle", runs[0].Mode)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, time.Second, runs[0].Duration)
	assert.NotEmpty(t, runs[1].ID, "missing ID must be generated")

	errs, err := j.RunErrors(ctx, "run-2")
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "Holbrook", errs[0].Item)
}

func TestRecentLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(ctx, Run{
			Mode: "none", StartedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := j.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

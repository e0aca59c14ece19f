package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satark-labs/scamintel/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewSQLite(filepath.Join(t.TempDir(), "intel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLiteStore_EmptyDatabaseIsAbsent(t *testing.T) {
	t.Parallel()

	st := newTestSQLiteStore(t)

	got, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	t.Parallel()

	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, sampleSnapshot(t)))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	want := sampleSnapshot(t)
	assert.True(t, got.LastUpdated.Equal(want.LastUpdated))
	assert.Equal(t, want.TotalReports, got.TotalReports)
	assert.Equal(t, want.ScamKeywords, got.ScamKeywords)
	assert.Equal(t, want.Sources, got.Sources)

	require.Contains(t, got.ReportedNumbers, "9876543210")
	num := got.ReportedNumbers["9876543210"]
	assert.Equal(t, 2, num.Count)
	assert.True(t, num.FirstSeen.Equal(want.ReportedNumbers["9876543210"].FirstSeen))
	assert.Equal(t, []string{"News Report", "Consumer Complaint"}, num.ScamTypes)

	require.Contains(t, got.ReportedUPIs, "fraudster@upi")
	assert.Equal(t, 1, got.ReportedUPIs["fraudster@upi"].Count)

	require.Len(t, got.LiveReports, 1)
	assert.Equal(t, want.LiveReports[0].Title, got.LiveReports[0].Title)
	assert.Equal(t, model.SourceNews, got.LiveReports[0].Source)
	assert.Equal(t, []string{"9876543210"}, got.LiveReports[0].PhonesFound)
}

func TestSQLiteStore_SaveReplacesPreviousState(t *testing.T) {
	t.Parallel()

	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first := sampleSnapshot(t)
	require.NoError(t, st.Save(ctx, first))

	second := sampleSnapshot(t)
	delete(second.ReportedNumbers, "9876543210")
	second.ReportedNumbers["9988776655"] = &model.ReportRecord{
		Count:     1,
		FirstSeen: second.LastUpdated,
		LastSeen:  second.LastUpdated,
		ScamTypes: []string{"Govt Advisory"},
	}
	second.TotalReports = 4
	require.NoError(t, st.Save(ctx, second))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalReports)
	assert.NotContains(t, got.ReportedNumbers, "9876543210")
	assert.Contains(t, got.ReportedNumbers, "9988776655")
}

func TestSQLiteStore_LiveReportOrderPreserved(t *testing.T) {
	t.Parallel()

	st := newTestSQLiteStore(t)
	ctx := context.Background()

	snap := sampleSnapshot(t)
	snap.LiveReports = []model.RawReport{
		{Title: "newest", Source: model.SourceNews, Timestamp: snap.LastUpdated},
		{Title: "middle", Source: model.SourceComplaints, Timestamp: snap.LastUpdated},
		{Title: "oldest", Source: model.SourceSocial, Timestamp: snap.LastUpdated},
	}
	require.NoError(t, st.Save(ctx, snap))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.LiveReports, 3)
	assert.Equal(t, "newest", got.LiveReports[0].Title)
	assert.Equal(t, "middle", got.LiveReports[1].Title)
	assert.Equal(t, "oldest", got.LiveReports[2].Title)
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	t.Parallel()

	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

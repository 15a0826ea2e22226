package gatelog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphaforge/internal/gate"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "gate_reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(id string, decision gate.Decision, risk gate.RiskLevel) gate.Report {
	return gate.Report{
		ID:          id,
		Decision:    decision,
		RiskLevel:   risk,
		Summary:     "summary for " + id,
		GeneratedAt: time.Now(),
	}
}

func TestStore_InsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := sampleReport("r-1", gate.DecisionGo, gate.RiskLow)
	require.NoError(t, store.Insert(ctx, report))

	got, err := store.Get(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, gate.DecisionGo, got.Decision)
	assert.Equal(t, gate.RiskLow, got.RiskLevel)
	assert.Equal(t, "summary for r-1", got.Summary)
}

func TestStore_GetUnknownID(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleReport("r-1", gate.DecisionNoGo, gate.RiskHigh)))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.Insert(ctx, sampleReport("r-2", gate.DecisionConditionalGo, gate.RiskMedium)))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.Insert(ctx, sampleReport("r-3", gate.DecisionGo, gate.RiskLow)))

	reports, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "r-3", reports[0].ID)
	assert.Equal(t, "r-2", reports[1].ID)

	all, err := store.List(ctx, 0) // invalid limit falls back to the default
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate_reports.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), sampleReport("r-1", gate.DecisionGo, gate.RiskLow)))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, gate.DecisionGo, got.Decision)
}

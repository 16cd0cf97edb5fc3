package portfolio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFreshWhenNoSnapshot(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"), 300000)

	p, status := store.Load()
	assert.Equal(t, LoadedFresh, status)
	assert.Equal(t, 300000.0, p.Cash)
	assert.Empty(t, p.Positions)
}

func TestLoadCorruptSnapshotResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewStore(path, 300000)
	p, status := store.Load()
	assert.Equal(t, LoadedCorruptReset, status)
	assert.Equal(t, 300000.0, p.Cash)
	assert.Empty(t, p.Positions)
}

func TestLoadNegativeCashResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio_state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cash": -1, "positions": {}}`), 0o644))

	store := NewStore(path, 300000)
	p, status := store.Load()
	assert.Equal(t, LoadedCorruptReset, status)
	assert.Equal(t, 300000.0, p.Cash)
}

func TestLoadIgnoresUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio_state.json")
	raw := `{"cash": 1000, "positions": {"600519": {"name": "贵州茅台", "shares": 100, "avg_cost": 1500, "future_field": true}}, "schema_version": 9}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	store := NewStore(path, 300000)
	p, status := store.Load()
	require.Equal(t, LoadedSnapshot, status)
	assert.Equal(t, 1000.0, p.Cash)
	require.Contains(t, p.Positions, "600519")
	assert.Equal(t, 100, p.Positions["600519"].Shares)
	assert.Nil(t, p.Positions["600519"].StopLossPct)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portfolio_state.json")
	store := NewStore(path, 300000)

	sl := 5.0
	p := New(150000)
	p.Positions["600519"] = &Position{
		Name:        "贵州茅台",
		Shares:      100,
		AvgCost:     1500,
		StopLossPct: &sl,
	}
	require.NoError(t, store.Save(p))

	got, status := store.Load()
	require.Equal(t, LoadedSnapshot, status)
	assert.Equal(t, p.Cash, got.Cash)
	require.Contains(t, got.Positions, "600519")
	assert.Equal(t, p.Positions["600519"].AvgCost, got.Positions["600519"].AvgCost)
	require.NotNil(t, got.Positions["600519"].StopLossPct)
	assert.Equal(t, 5.0, *got.Positions["600519"].StopLossPct)

	// saving again must be idempotent
	require.NoError(t, store.Save(got))
	again, _ := store.Load()
	assert.Equal(t, got, again)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "portfolio_state.json"), 300000)
	require.NoError(t, store.Save(New(300000)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "portfolio_state.json", entries[0].Name())
}

func TestCloneIsDeep(t *testing.T) {
	sl := 5.0
	p := New(1000)
	p.Positions["000001"] = &Position{Name: "平安银行", Shares: 100, AvgCost: 10, StopLossPct: &sl}

	cp := p.Clone()
	cp.Cash = 0
	cp.Positions["000001"].Shares = 0
	*cp.Positions["000001"].StopLossPct = 99

	assert.Equal(t, 1000.0, p.Cash)
	assert.Equal(t, 100, p.Positions["000001"].Shares)
	assert.Equal(t, 5.0, *p.Positions["000001"].StopLossPct)
}

package tests

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/export"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

func TestNewDump_Total(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	d := export.NewDump([]sharedModels.Expense{
		{ID: "1", Amount: decimal.RequireFromString("10.10")},
		{ID: "2", Amount: decimal.RequireFromString("0.20")},
	}, now)

	require.Equal(t, 2, d.Count)
	require.True(t, decimal.RequireFromString("10.30").Equal(d.Total))
	require.Equal(t, now, d.ExportedAt)
}

func TestNewDump_NilIsEmptyArray(t *testing.T) {
	d := export.NewDump(nil, time.Now())
	require.NotNil(t, d.Expenses)
	require.Zero(t, d.Count)
}

func TestSaveToFile_LoadFromFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "expenses.json")
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	want := export.NewDump([]sharedModels.Expense{
		{ID: "b", Title: "Taxi", Amount: decimal.RequireFromString("15.2"), Category: sharedModels.CategoryTransport, Date: date},
		{ID: "a", Title: "Lunch", Amount: decimal.RequireFromString("9.99"), Category: sharedModels.CategoryFood, Date: date},
	}, date)

	require.NoError(t, export.SaveToFile(path, want))

	got, err := export.LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, want.Count, got.Count)
	require.True(t, want.Total.Equal(got.Total))
	require.Len(t, got.Expenses, 2)
	// порядок сохраняется
	require.Equal(t, "b", got.Expenses[0].ID)
	require.Equal(t, sharedModels.CategoryFood, got.Expenses[1].Category)

	if runtime.GOOS != "windows" {
		st, err := os.Stat(path)
		require.NoError(t, err)
		require.Zero(t, st.Mode().Perm()&0o077)
	}

	// временных файлов не осталось
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := export.LoadFromFile(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{nope"), 0o600))
	_, err = export.LoadFromFile(bad)
	require.Error(t, err)
}

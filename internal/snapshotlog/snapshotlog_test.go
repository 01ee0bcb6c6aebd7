package snapshotlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"floatwatch/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func fullSnapshot() *domain.Snapshot {
	bid, qty := 11.5, 3
	ft := domain.WearFieldTested.Range()
	return &domain.Snapshot{
		Source:        "strict",
		LowestAsk:     12.345,
		LowestAskID:   "123",
		HighestBid:    &bid,
		HighestBidQty: &qty,
		Vol24h:        4,
		ASP24h:        12,
		UsedCategory:  1,
		UsedWear:      &ft,
	}
}

func TestRow(t *testing.T) {
	at := time.Unix(1700000000, 0)
	row := Row(at, "AK-47 | Redline", domain.WearFieldTested, domain.CategoryNormal, fullSnapshot())
	assert.Equal(t, []string{
		"1700000000", "AK-47 | Redline", "ft", "normal", "strict", "1", "0.15-0.38",
		"12.35", "123", "11.50", "3", "4", "12.00",
	}, row)
}

func TestRowAbsentValues(t *testing.T) {
	row := Row(time.Unix(1, 0), "x", "", "", &domain.Snapshot{Source: domain.SourceNone})
	assert.Equal(t, []string{"1", "x", "", "", "n/a", "", "", "0.00", "", "", "", "0", "0.00"}, row)
	assert.Len(t, Row(time.Unix(1, 0), "x", "", "", nil), len(Columns))
}

func TestWriterWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	hist := filepath.Join(dir, "logs", "history.csv")
	latest := filepath.Join(dir, "logs", "latest.csv")
	w := NewWriter(hist, latest)
	w.now = func() time.Time { return time.Unix(1700000000, 0) }

	require.NoError(t, w.Write("a", "", "", fullSnapshot()))
	require.NoError(t, w.Write("b", "", "", fullSnapshot()))

	history := readCSV(t, hist)
	require.Len(t, history, 3)
	assert.Equal(t, Columns, history[0])
	assert.Equal(t, "a", history[1][1])
	assert.Equal(t, "b", history[2][1])

	latestRows := readCSV(t, latest)
	require.Len(t, latestRows, 2)
	assert.Equal(t, Columns, latestRows[0])
	assert.Equal(t, "b", latestRows[1][1])
}

func TestWriterHeaderForEmptyHistory(t *testing.T) {
	dir := t.TempDir()
	hist := filepath.Join(dir, "history.csv")
	require.NoError(t, os.WriteFile(hist, nil, 0o644))

	w := NewWriter(hist, filepath.Join(dir, "latest.csv"))
	require.NoError(t, w.Write("a", "", "", &domain.Snapshot{}))

	history := readCSV(t, hist)
	require.Len(t, history, 2)
	assert.Equal(t, Columns, history[0])
}

func TestExportXLSX(t *testing.T) {
	dir := t.TempDir()
	hist := filepath.Join(dir, "history.csv")
	w := NewWriter(hist, filepath.Join(dir, "latest.csv"))
	require.NoError(t, w.Write("AK-47 | Redline", domain.WearFieldTested, domain.CategoryNormal, fullSnapshot()))
	require.NoError(t, w.Write("Kilowatt Case", "", "", &domain.Snapshot{Source: domain.SourceNone}))

	out := filepath.Join(dir, "export", "snapshots.xlsx")
	n, err := ExportXLSX(hist, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "timestamp", rows[0][0])
	assert.Equal(t, "AK-47 | Redline", rows[1][1])
	assert.Equal(t, "Kilowatt Case", rows[2][1])

	ask, err := f.GetCellValue("Sheet1", "H2")
	require.NoError(t, err)
	assert.Equal(t, "12.35", ask)
}

func TestExportXLSXMissingFile(t *testing.T) {
	_, err := ExportXLSX(filepath.Join(t.TempDir(), "missing.csv"), filepath.Join(t.TempDir(), "out.xlsx"))
	assert.Error(t, err)
}

func TestWriteAndCloseClosesFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "rows.csv"))
	require.NoError(t, err)

	require.NoError(t, writeAndClose(f, [][]string{Columns}))
	assert.ErrorIs(t, f.Close(), os.ErrClosed, "file should already be closed")
}

func TestWriteAndCloseReportsFileErrors(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "rows.csv"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Error(t, writeAndClose(f, [][]string{Columns}))
}

func TestWriterReportsUnwritableLatest(t *testing.T) {
	dir := t.TempDir()
	latest := filepath.Join(dir, "latest")
	require.NoError(t, os.Mkdir(latest, 0o755))

	w := NewWriter(filepath.Join(dir, "history.csv"), latest)
	err := w.Write("a", "", "", &domain.Snapshot{})
	assert.ErrorContains(t, err, "write latest snapshot")
}

// Package snapshotlog records resolved snapshots as flat CSV files: an
// append-only history and a single-row "latest" file.
package snapshotlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"floatwatch/internal/domain"
)

// Columns is the header shared by both files.
var Columns = []string{
	"timestamp",
	"item",
	"wear",
	"category",
	"source",
	"used_category",
	"used_wear",
	"lowest_ask_usd",
	"lowest_ask_id",
	"highest_bid_usd",
	"highest_bid_qty",
	"vol24h",
	"asp24h_usd",
}

// Writer appends to the history file and rewrites the latest file. It is
// safe for concurrent use.
type Writer struct {
	historyPath string
	latestPath  string
	now         func() time.Time

	mu sync.Mutex
}

func NewWriter(historyPath, latestPath string) *Writer {
	return &Writer{
		historyPath: historyPath,
		latestPath:  latestPath,
		now:         time.Now,
	}
}

func (w *Writer) HistoryPath() string { return w.historyPath }
func (w *Writer) LatestPath() string  { return w.latestPath }

// Write records one snapshot under the item, wear and category the user
// asked for.
func (w *Writer) Write(item string, wear domain.WearKey, category domain.Category, snap *domain.Snapshot) error {
	row := Row(w.now(), item, wear, category, snap)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := appendHistory(w.historyPath, row); err != nil {
		return fmt.Errorf("append snapshot history: %w", err)
	}
	if err := writeLatest(w.latestPath, row); err != nil {
		return fmt.Errorf("write latest snapshot: %w", err)
	}
	return nil
}

// Row flattens a snapshot. Money has two decimals and absent values are
// empty strings.
func Row(at time.Time, item string, wear domain.WearKey, category domain.Category, snap *domain.Snapshot) []string {
	if snap == nil {
		snap = &domain.Snapshot{}
	}
	row := []string{
		strconv.FormatInt(at.Unix(), 10),
		item,
		string(wear),
		string(category),
		snap.Source,
		"",
		"",
		money(snap.LowestAsk),
		snap.LowestAskID,
		"",
		"",
		strconv.Itoa(snap.Vol24h),
		money(snap.ASP24h),
	}
	if snap.UsedCategory != domain.CategoryAny {
		row[5] = strconv.Itoa(snap.UsedCategory)
	}
	if snap.UsedWear != nil {
		row[6] = snap.UsedWear.String()
	}
	if snap.HighestBid != nil {
		row[9] = money(*snap.HighestBid)
	}
	if snap.HighestBidQty != nil {
		row[10] = strconv.Itoa(*snap.HighestBidQty)
	}
	return row
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func appendHistory(path string, row []string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	needHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needHeader = false
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	rows := [][]string{row}
	if needHeader {
		rows = [][]string{Columns, row}
	}
	return writeAndClose(f, rows)
}

func writeLatest(path string, row []string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return writeAndClose(f, [][]string{Columns, row})
}

// writeAndClose flushes rows to f and closes it. A failed close is reported
// since buffered data may not have reached the file.
func writeAndClose(f *os.File, rows [][]string) error {
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.Name(), err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

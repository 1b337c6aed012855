package timeline

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// LoadFile loads a location history from path and filters outliers. Files ending
// in .db or .sqlite are read as a whence database, everything else as Records.json.
func LoadFile(ctx context.Context, path string, maxAccuracyM float64) (*Timeline, error) {
	var points []Point

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		var err error
		points, err = LoadSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open location history: %w", err)
		}
		defer f.Close()

		records, err := ParseRecords(f)
		if err != nil {
			return nil, err
		}
		var errs []error
		points, errs = ExtractPoints(records)
		if len(errs) > 0 {
			logrus.WithFields(logrus.Fields{
				"path":    path,
				"skipped": len(errs),
				"kept":    len(points),
			}).WithError(errs[0]).Warn("skipping malformed location history entries")
		}
	}

	points = FilterOutliers(points, maxAccuracyM)
	if len(points) == 0 {
		return nil, ErrEmptyHistory
	}
	return New(points), nil
}

// LoadSQLite reads all rows of the locations table of a whence database.
// Timestamps are unix seconds; the table carries no accuracy.
func LoadSQLite(ctx context.Context, path string) ([]Point, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open location database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open location database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT timestamp, lat, lon FROM locations ORDER BY timestamp`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var ts int64
		var p Point
		if err := rows.Scan(&ts, &p.Lat, &p.Lon); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		p.Timestamp = time.Unix(ts, 0).UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}

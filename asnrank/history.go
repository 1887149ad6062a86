package asnrank

import (
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT,
    timestamp INTEGER,
    row_count INTEGER,
    accepted_count INTEGER
);
CREATE TABLE IF NOT EXISTS run_results (
    run_id INTEGER REFERENCES runs(id),
    position INTEGER,
    asn INTEGER,
    isp TEXT,
    samples INTEGER,
    avg_dl REAL,
    stderr_dl REAL,
    avg_ul REAL,
    stderr_ul REAL,
    rtt_count INTEGER,
    avg_rtt REAL,
    PRIMARY KEY (run_id, position)
);
`

// History records ranked runs in a SQLite database.
type History struct {
	db *sql.DB
}

type Run struct {
	ID        int64
	Source    string
	Timestamp time.Time
	Rows      int
	Accepted  int
}

func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, "could not create history directory for %s", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite open %s", path)
	}

	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "sqlite schema")
	}

	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// SaveRun stores one ranking and returns its run ID.
func (h *History) SaveRun(source string, at time.Time, stats *SkipStats, results []*Result) (int64, error) {
	tx, err := h.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}

	rows, accepted := 0, 0
	if stats != nil {
		rows, accepted = stats.Rows, stats.Accepted
	}

	res, err := tx.Exec(`INSERT INTO runs (source, timestamp, row_count, accepted_count) VALUES (?, ?, ?, ?)`,
		source, at.Unix(), rows, accepted)
	if err != nil {
		_ = tx.Rollback()
		return 0, errors.Wrap(err, "insert run")
	}
	runID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, errors.Wrap(err, "insert run")
	}

	stmt, err := tx.Prepare(`
        INSERT INTO run_results (
            run_id, position, asn, isp,
            samples, avg_dl, stderr_dl,
            avg_ul, stderr_ul,
            rtt_count, avg_rtt
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		_ = tx.Rollback()
		return 0, errors.Wrap(err, "prepare")
	}
	defer stmt.Close()

	for index, r := range results {
		var avgRTT sql.NullFloat64
		if r.HasRTT() {
			avgRTT = sql.NullFloat64{Float64: r.AvgRTT, Valid: true}
		}

		_, err = stmt.Exec(
			runID, index+1, r.ASN, r.ISP,
			r.Count, r.AvgDL, r.StdErrDL,
			r.AvgUL, r.StdErrUL,
			r.RTTCount, avgRTT,
		)
		if err != nil {
			_ = tx.Rollback()
			return 0, errors.Wrapf(err, "insert AS%d", r.ASN)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit")
	}

	return runID, nil
}

// Runs lists the most recent runs first.
func (h *History) Runs(limit int) ([]*Run, error) {
	rows, err := h.db.Query(`
        SELECT id, source, timestamp, row_count, accepted_count
        FROM runs
        ORDER BY id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	out := []*Run{}

	for rows.Next() {
		var r Run
		var timestamp int64
		if err := rows.Scan(&r.ID, &r.Source, &timestamp, &r.Rows, &r.Accepted); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		r.Timestamp = time.Unix(timestamp, 0)
		out = append(out, &r)
	}

	return out, errors.Wrap(rows.Err(), "query runs")
}

// RunResults returns the stored ranking of a run, in rank order.
func (h *History) RunResults(runID int64) ([]*Result, error) {
	rows, err := h.db.Query(`
        SELECT asn, isp, samples, avg_dl, stderr_dl, avg_ul, stderr_ul, rtt_count, avg_rtt
        FROM run_results
        WHERE run_id = ?
        ORDER BY position
    `, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query run results")
	}
	defer rows.Close()

	out := []*Result{}

	for rows.Next() {
		var r Result
		var avgRTT sql.NullFloat64
		err := rows.Scan(
			&r.ASN, &r.ISP,
			&r.Count, &r.AvgDL, &r.StdErrDL,
			&r.AvgUL, &r.StdErrUL,
			&r.RTTCount, &avgRTT,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan run result")
		}
		r.AvgRTT = math.Inf(1)
		if avgRTT.Valid {
			r.AvgRTT = avgRTT.Float64
		}
		out = append(out, &r)
	}

	return out, errors.Wrap(rows.Err(), "query run results")
}

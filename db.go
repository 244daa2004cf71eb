package colorcode

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ResultsDB stores the outcome of every decode so accuracy can be tracked
// across captures and decoder changes.
type ResultsDB struct {
	db *sql.DB
}

// Run is one recorded decode.
type Run struct {
	ID        int64
	Image     string
	Reference string
	Created   time.Time
	Passed    bool
	Attempts  []RunAttempt
}

// RunAttempt is one recorded attempt of a Run.
type RunAttempt struct {
	Step     int
	Layer    string
	Strategy string
	Passed   bool
	Reason   string
	Diff     int
	Error    string
}

// NewResultsDB opens or creates the database in file.
func NewResultsDB(file string) (*ResultsDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_txlock=immediate", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS run (id INTEGER PRIMARY KEY NOT NULL, image TEXT NOT NULL, reference TEXT NOT NULL, created INTEGER NOT NULL, passed INTEGER NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS attempt (run_id INTEGER NOT NULL, step INTEGER NOT NULL, layer TEXT NOT NULL, strategy TEXT NOT NULL, passed INTEGER NOT NULL, reason TEXT NOT NULL, diff INTEGER NOT NULL, error TEXT NOT NULL, PRIMARY KEY(run_id, step), FOREIGN KEY(run_id) REFERENCES run(id))"); err != nil {
		return nil, err
	}

	return &ResultsDB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *ResultsDB) Close() error {
	return db.db.Close()
}

// Record stores summary as a run of image against the reference source.
func (db *ResultsDB) Record(image, source string, summary *Summary) (int64, error) {
	tx, err := db.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec("INSERT INTO run (image, reference, created, passed) VALUES (?, ?, ?, ?)", image, source, time.Now().Unix(), summary.Passed())
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, a := range summary.Attempts {
		var reason, msg string
		if a.Err != nil {
			msg = a.Err.Error()
		} else {
			reason = a.Report.Reason.String()
		}
		if _, err := tx.Exec("INSERT INTO attempt (run_id, step, layer, strategy, passed, reason, diff, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", id, a.Step, a.Layer, a.Strategy.String(), a.Passed(), reason, a.Report.Diff, msg); err != nil {
			return 0, err
		}
	}

	return id, tx.Commit()
}

// History returns up to limit runs, most recent first.
func (db *ResultsDB) History(limit int) ([]Run, error) {
	rows, err := db.db.Query("SELECT id, image, reference, created, passed FROM run ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			created int64
		)
		if err := rows.Scan(&run.ID, &run.Image, &run.Reference, &created, &run.Passed); err != nil {
			return nil, err
		}
		run.Created = time.Unix(created, 0)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if runs[i].Attempts, err = db.attempts(runs[i].ID); err != nil {
			return nil, err
		}
	}

	return runs, nil
}

func (db *ResultsDB) attempts(id int64) ([]RunAttempt, error) {
	rows, err := db.db.Query("SELECT step, layer, strategy, passed, reason, diff, error FROM attempt WHERE run_id = ? ORDER BY step", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []RunAttempt
	for rows.Next() {
		var a RunAttempt
		if err := rows.Scan(&a.Step, &a.Layer, &a.Strategy, &a.Passed, &a.Reason, &a.Diff, &a.Error); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

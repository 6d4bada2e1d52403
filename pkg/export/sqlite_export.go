// Package export writes estimation and simulation results in formats
// consumed outside the engine: a SQLite database of trajectory rows for
// downstream covariance estimation, and static SVG/PNG snapshots of sampled
// networks.
package export

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/estimnet/pkg/metrics"
)

// TrajectoryKind distinguishes the two trajectory file families.
type TrajectoryKind string

const (
	// ThetaKind marks parameter trajectories.
	ThetaKind TrajectoryKind = "theta"
	// DzAKind marks statistic-drift trajectories.
	DzAKind TrajectoryKind = "dzA"
)

// TrajectoryFile names one trajectory text file to import.
type TrajectoryFile struct {
	Kind TrajectoryKind
	Task int
	Path string
}

// createSchema creates the trajectory tables. Rows are stored long-form so
// downstream queries can pivot on whatever parameters a model has.
func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE runs (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    kind    TEXT NOT NULL,
    task    INTEGER NOT NULL,
    path    TEXT NOT NULL
);
CREATE TABLE trajectory (
    run_id  INTEGER NOT NULL REFERENCES runs(id),
    t       INTEGER NOT NULL,
    param   TEXT NOT NULL,
    value   REAL NOT NULL
);
CREATE INDEX trajectory_run_param ON trajectory(run_id, param);
`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// TrajectoriesToSQLite imports the given trajectory text files into a fresh
// SQLite database at dbPath, replacing any existing file.
func TrajectoriesToSQLite(dbPath string, files []TrajectoryFile) (err error) {
	defer metrics.Timer(metrics.Export)()

	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close database: %w", cerr)
		}
	}()

	if err := createSchema(db); err != nil {
		return err
	}
	for _, f := range files {
		if err := importTrajectory(db, f); err != nil {
			return fmt.Errorf("import %s: %w", f.Path, err)
		}
	}
	return nil
}

func importTrajectory(db *sql.DB, file TrajectoryFile) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO runs (kind, task, path) VALUES (?, ?, ?)`,
		string(file.Kind), file.Task, file.Path)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	ins, err := tx.Prepare(`INSERT INTO trajectory (run_id, t, param, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var params []string
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if params == nil {
			if fields[0] != "t" {
				return fmt.Errorf("line 1: missing trajectory header")
			}
			params = fields[1:]
			continue
		}
		if len(fields) != len(params)+1 {
			return fmt.Errorf("line %d: got %d values, want %d", lineNum, len(fields)-1, len(params))
		}
		t, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("line %d: bad iteration %q", lineNum, fields[0])
		}
		for col, name := range params {
			v, err := strconv.ParseFloat(fields[col+1], 64)
			if err != nil {
				return fmt.Errorf("line %d: bad value %q", lineNum, fields[col+1])
			}
			if _, err := ins.Exec(runID, t, name, v); err != nil {
				return fmt.Errorf("line %d: insert: %w", lineNum, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading trajectory: %w", err)
	}
	if params == nil {
		return fmt.Errorf("empty trajectory file")
	}
	return tx.Commit()
}

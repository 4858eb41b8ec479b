package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	PRAGMA foreign_keys = ON;
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		building_path TEXT NOT NULL,
		defaults_path TEXT,
		weather_path TEXT NOT NULL,
		station TEXT,
		method TEXT NOT NULL,
		floor_area REAL NOT NULL,
		total_eui REAL NOT NULL,
		created_at TEXT NOT NULL,
		published INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS period_results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		period INTEGER NOT NULL,
		end_use TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (run_id, period, end_use)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_published ON runs(published);
	CREATE INDEX IF NOT EXISTS idx_runs_building ON runs(building_path);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// InsertRun stores a run and its period results in one transaction. A run
// without an ID is given a new uuid.
func (db *DB) InsertRun(run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
	INSERT INTO runs (id, building_path, defaults_path, weather_path, station, method, floor_area, total_eui, created_at, published)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.BuildingPath, run.DefaultsPath, run.WeatherPath, run.Station, run.Method,
		run.FloorArea, run.TotalEUI, run.CreatedAt.UTC().Format(time.RFC3339Nano), boolInt(run.Published))
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO period_results (run_id, period, end_use, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing period insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range run.Periods {
		for endUse, value := range p.EndUses {
			if _, err := stmt.Exec(run.ID, p.Period, endUse, value); err != nil {
				return fmt.Errorf("inserting period %d %s: %w", p.Period, endUse, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

const runColumns = `id, building_path, defaults_path, weather_path, station, method, floor_area, total_eui, created_at, published`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (models.Run, error) {
	var run models.Run
	var defaultsPath, station sql.NullString
	var createdAt string
	var published int

	err := row.Scan(&run.ID, &run.BuildingPath, &defaultsPath, &run.WeatherPath, &station, &run.Method,
		&run.FloorArea, &run.TotalEUI, &createdAt, &published)
	if err != nil {
		return run, err
	}

	run.DefaultsPath = defaultsPath.String
	run.Station = station.String
	run.Published = published != 0
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return run, fmt.Errorf("parsing created_at: %w", err)
	}
	return run, nil
}

// GetRun retrieves a run with its period results, or nil if it does not exist
func (db *DB) GetRun(id string) (*models.Run, error) {
	row := db.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}

	rows, err := db.conn.Query(`
	SELECT period, end_use, value
	FROM period_results
	WHERE run_id = ?
	ORDER BY period
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying period results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var period int
		var endUse string
		var value float64
		if err := rows.Scan(&period, &endUse, &value); err != nil {
			return nil, fmt.Errorf("scanning period result: %w", err)
		}
		n := len(run.Periods)
		if n == 0 || run.Periods[n-1].Period != period {
			run.Periods = append(run.Periods, models.PeriodResult{Period: period, EndUses: map[string]float64{}})
			n++
		}
		run.Periods[n-1].EndUses[endUse] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &run, nil
}

// ListRuns retrieves the most recent runs without period results. A limit
// of zero or less returns every run.
func (db *DB) ListRuns(limit int) ([]models.Run, error) {
	return db.listRuns(`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
}

// ListUnpublishedRuns retrieves runs that have not been published, oldest first
func (db *DB) ListUnpublishedRuns(limit int) ([]models.Run, error) {
	return db.listRuns(`SELECT `+runColumns+` FROM runs WHERE published = 0 ORDER BY created_at ASC LIMIT ?`, limit)
}

func (db *DB) listRuns(query string, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var results []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, run)
	}

	return results, rows.Err()
}

// MarkPublished marks a run as published
func (db *DB) MarkPublished(id string) error {
	_, err := db.conn.Exec(`UPDATE runs SET published = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking run as published: %w", err)
	}
	return nil
}

// DeleteRun removes a run and its period results
func (db *DB) DeleteRun(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM period_results WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("deleting period results: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

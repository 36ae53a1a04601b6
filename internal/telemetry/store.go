package telemetry

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/wayfarer-sim/wayfarer/internal/route"
)

// Store persists journeys to sqlite.
type Store struct {
	conn *sqlx.DB
}

// OpenStore opens or creates the journey database at the given path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journeys db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS journeys (
		id TEXT PRIMARY KEY,
		traveler TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		start_day INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_day INTEGER NOT NULL,
		end_time TEXT NOT NULL,
		duration REAL NOT NULL,
		mode TEXT NOT NULL,
		distance REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journeys_traveler ON journeys(traveler);
	`
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journeys: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record inserts the journey, assigning an ID if it has none.
func (s *Store) Record(j Journey) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	_, err := s.conn.Exec(`INSERT INTO journeys
		(id, traveler, origin, destination, start_day, start_time, end_day, end_time, duration, mode, distance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Traveler, j.Origin, j.Destination,
		j.StartDay, j.StartTime.String(), j.EndDay, j.EndTime.String(),
		j.Duration, string(j.Mode), j.Distance,
	)
	if err != nil {
		return fmt.Errorf("insert journey: %w", err)
	}
	return nil
}

// Row is the flat journeys table representation used for queries.
type Row struct {
	ID          string  `db:"id" json:"id"`
	Traveler    string  `db:"traveler" json:"traveler"`
	Origin      string  `db:"origin" json:"origin"`
	Destination string  `db:"destination" json:"destination"`
	StartDay    int     `db:"start_day" json:"start_day"`
	StartTime   string  `db:"start_time" json:"start_time"`
	EndDay      int     `db:"end_day" json:"end_day"`
	EndTime     string  `db:"end_time" json:"end_time"`
	Duration    float64 `db:"duration" json:"duration"`
	Mode        string  `db:"mode" json:"mode"`
	Distance    float64 `db:"distance" json:"distance"`
}

// Recent returns the most recently recorded journeys, newest first.
func (s *Store) Recent(limit int) ([]Row, error) {
	var rows []Row
	err := s.conn.Select(&rows,
		"SELECT * FROM journeys ORDER BY rowid DESC LIMIT ?", limit)
	return rows, err
}

// Count returns the total number of recorded journeys.
func (s *Store) Count() (int, error) {
	var n int
	err := s.conn.Get(&n, "SELECT COUNT(*) FROM journeys")
	return n, err
}

// CountByMode returns journey counts keyed by mode.
func (s *Store) CountByMode() (map[route.Mode]int, error) {
	rows, err := s.conn.Query("SELECT mode, COUNT(*) FROM journeys GROUP BY mode")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[route.Mode]int)
	for rows.Next() {
		var mode string
		var n int
		if err := rows.Scan(&mode, &n); err != nil {
			return nil, err
		}
		counts[route.Mode(mode)] = n
	}
	return counts, rows.Err()
}

package store

import (
	"database/sql"
	"errors"
	"time"
)

// SessionRecord represents one finished workout bout stored in the database.
type SessionRecord struct {
	ID          string
	Exercise    string
	Reps        int
	HoldSeconds float64
	StartedAt   time.Time
	EndedAt     time.Time
}

// SessionRepository provides persistence for finished sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a finished session.
func (r *SessionRepository) Create(rec *SessionRecord) error {
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, exercise, reps, hold_seconds, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Exercise, rec.Reps, rec.HoldSeconds, rec.StartedAt, rec.EndedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*SessionRecord, error) {
	rec := &SessionRecord{}
	err := r.db.QueryRow(
		`SELECT id, exercise, reps, hold_seconds, started_at, ended_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.Exercise, &rec.Reps, &rec.HoldSeconds, &rec.StartedAt, &rec.EndedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List retrieves the most recent sessions, newest first. A limit <= 0
// returns everything.
func (r *SessionRepository) List(limit int) ([]*SessionRecord, error) {
	query := `SELECT id, exercise, reps, hold_seconds, started_at, ended_at
	          FROM sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*SessionRecord
	for rows.Next() {
		rec := &SessionRecord{}
		if err := rows.Scan(&rec.ID, &rec.Exercise, &rec.Reps, &rec.HoldSeconds,
			&rec.StartedAt, &rec.EndedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// TotalsByExercise sums completed repetitions per exercise across all
// stored sessions.
func (r *SessionRepository) TotalsByExercise() (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT exercise, SUM(reps) FROM sessions GROUP BY exercise`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]int{}
	for rows.Next() {
		var exercise string
		var reps int
		if err := rows.Scan(&exercise, &reps); err != nil {
			return nil, err
		}
		totals[exercise] = reps
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return totals, nil
}

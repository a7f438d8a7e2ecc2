package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adityapathak/posefit/internal/engine"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ReferenceRepository provides persistence for calibrated reference ranges.
// A range row with an empty phase is a whole-movement range; rows with a
// phase belong to that phase's per-joint table.
type ReferenceRepository struct {
	db *sql.DB
}

// References returns the reference repository for this store.
func (s *Store) References() *ReferenceRepository {
	return &ReferenceRepository{db: s.db}
}

// Save upserts every range of the exercise reference, overwriting rows for
// the same exercise/phase/joint and leaving unrelated rows untouched.
func (r *ReferenceRepository) Save(exercise string, ref engine.ExerciseRef) error {
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("references for %s: %w", exercise, err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert := func(phase, joint string, rng engine.Range) error {
		_, err := tx.Exec(
			`INSERT INTO reference_ranges (exercise, phase, joint, min, max, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(exercise, phase, joint)
			 DO UPDATE SET min = excluded.min, max = excluded.max, updated_at = excluded.updated_at`,
			exercise, phase, joint, rng.Min, rng.Max, time.Now(),
		)
		return err
	}

	for joint, rng := range ref.Joints {
		if err := upsert("", joint, rng); err != nil {
			return err
		}
	}
	for phase, joints := range ref.Phases {
		for joint, rng := range joints {
			if err := upsert(phase, joint, rng); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Get retrieves the stored reference for one exercise.
func (r *ReferenceRepository) Get(exercise string) (engine.ExerciseRef, error) {
	rows, err := r.db.Query(
		`SELECT phase, joint, min, max FROM reference_ranges WHERE exercise = ?`,
		exercise,
	)
	if err != nil {
		return engine.ExerciseRef{}, err
	}
	defer rows.Close()

	ref, found := engine.ExerciseRef{}, false
	for rows.Next() {
		var phase, joint string
		var rng engine.Range
		if err := rows.Scan(&phase, &joint, &rng.Min, &rng.Max); err != nil {
			return engine.ExerciseRef{}, err
		}
		found = true
		addRange(&ref, phase, joint, rng)
	}
	if err := rows.Err(); err != nil {
		return engine.ExerciseRef{}, err
	}
	if !found {
		return engine.ExerciseRef{}, ErrNotFound
	}

	if err := ref.Validate(); err != nil {
		return engine.ExerciseRef{}, fmt.Errorf("stored references for %s: %w", exercise, err)
	}
	return ref, nil
}

// Load retrieves all stored references as a set. Malformed stored ranges
// fail the whole load rather than silently mis-scoring live frames.
func (r *ReferenceRepository) Load() (engine.RefSet, error) {
	rows, err := r.db.Query(
		`SELECT exercise, phase, joint, min, max FROM reference_ranges ORDER BY exercise`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := engine.RefSet{}
	for rows.Next() {
		var exercise, phase, joint string
		var rng engine.Range
		if err := rows.Scan(&exercise, &phase, &joint, &rng.Min, &rng.Max); err != nil {
			return nil, err
		}
		ref := set[exercise]
		addRange(&ref, phase, joint, rng)
		set[exercise] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("stored references: %w", err)
	}
	return set, nil
}

// Delete removes every stored range for the exercise.
func (r *ReferenceRepository) Delete(exercise string) error {
	result, err := r.db.Exec(`DELETE FROM reference_ranges WHERE exercise = ?`, exercise)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func addRange(ref *engine.ExerciseRef, phase, joint string, rng engine.Range) {
	if phase == "" {
		if ref.Joints == nil {
			ref.Joints = map[string]engine.Range{}
		}
		ref.Joints[joint] = rng
		return
	}
	if ref.Phases == nil {
		ref.Phases = map[string]map[string]engine.Range{}
	}
	if ref.Phases[phase] == nil {
		ref.Phases[phase] = map[string]engine.Range{}
	}
	ref.Phases[phase][joint] = rng
}

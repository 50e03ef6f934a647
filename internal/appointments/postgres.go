package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicware/booking-platform/internal/scheduling"
)

// pgxDB is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type pgxDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore persists appointments in Postgres. The schema carries a
// partial unique index on (doctor_id, start_at) WHERE status='scheduled', so
// the no-double-booking invariant holds even if callers race past the
// in-transaction conflict check.
type PostgresStore struct {
	db pgxDB
}

// NewPostgresStore creates a store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// newPostgresStoreWithDB allows injecting mocks for tests.
func newPostgresStoreWithDB(db pgxDB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a scheduled appointment inside a transaction: conflict
// check, insert, commit. Any failure rolls back so no partial state remains.
func (s *PostgresStore) Create(ctx context.Context, patientID, doctorID string, startAt time.Time, reason string) (*Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var existingID int64
	err = tx.QueryRow(ctx, `
		SELECT id FROM appointments
		WHERE doctor_id = $1 AND start_at = $2 AND status = 'scheduled'
	`, doctorID, startAt).Scan(&existingID)
	if err == nil {
		return nil, ErrSlotTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("appointments: conflict check: %w", err)
	}

	appt := &Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		StartAt:   startAt,
		Reason:    reason,
		Status:    StatusScheduled,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, start_at, reason, status)
		VALUES ($1, $2, $3, NULLIF($4, ''), 'scheduled')
		RETURNING id, created_at
	`, patientID, doctorID, startAt, reason).Scan(&appt.ID, &appt.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("appointments: commit: %w", err)
	}
	committed = true
	return appt, nil
}

// GetByID loads an appointment.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	var appt Appointment
	err := s.db.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, start_at, COALESCE(reason, ''), status, created_at
		FROM appointments
		WHERE id = $1
	`, id).Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.DoctorID,
		&appt.StartAt,
		&appt.Reason,
		&appt.Status,
		&appt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select: %w", err)
	}
	return &appt, nil
}

// MarkCancelled flips the status to cancelled.
func (s *PostgresStore) MarkCancelled(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx, `
		UPDATE appointments SET status = 'cancelled' WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("appointments: cancel: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListScheduledTimes returns scheduled start times for the doctor on the
// given calendar day, ascending.
func (s *PostgresStore) ListScheduledTimes(ctx context.Context, doctorID string, date time.Time) ([]scheduling.TimeOfDay, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.db.Query(ctx, `
		SELECT start_at FROM appointments
		WHERE doctor_id = $1 AND status = 'scheduled' AND start_at >= $2 AND start_at < $3
		ORDER BY start_at
	`, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("appointments: list scheduled: %w", err)
	}
	defer rows.Close()

	var times []scheduling.TimeOfDay
	for rows.Next() {
		var startAt time.Time
		if err := rows.Scan(&startAt); err != nil {
			return nil, fmt.Errorf("appointments: scan scheduled: %w", err)
		}
		startAt = startAt.UTC()
		times = append(times, scheduling.TimeOfDay(startAt.Hour()*60+startAt.Minute()))
	}
	return times, rows.Err()
}

// ListByPatient returns the patient's appointments, newest first.
func (s *PostgresStore) ListByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, patient_id, doctor_id, start_at, COALESCE(reason, ''), status, created_at
		FROM appointments
		WHERE patient_id = $1
		ORDER BY start_at DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by patient: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var appt Appointment
		if err := rows.Scan(
			&appt.ID,
			&appt.PatientID,
			&appt.DoctorID,
			&appt.StartAt,
			&appt.Reason,
			&appt.Status,
			&appt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

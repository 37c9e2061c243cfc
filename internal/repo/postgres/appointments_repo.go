package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppointmentsRepo interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	MarkReminderSent(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, userID string) (map[domain.AppointmentStatus]int, error)
	NextUpcoming(ctx context.Context, userID string, after time.Time) (*domain.Appointment, error)
}

type AppointmentsRepoImpl struct{ pool *pgxpool.Pool }

func NewAppointmentsRepo(pool *pgxpool.Pool) *AppointmentsRepoImpl {
	return &AppointmentsRepoImpl{pool: pool}
}

const appointmentCols = `id::text, user_id::text,
patient_name, patient_email, patient_phone,
appointment_date, appointment_time, department, reason, notes,
status, reminder_sent, confirmation_code,
created_at, updated_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID, &a.UserID,
		&a.PatientName, &a.PatientEmail, &a.PatientPhone,
		&a.AppointmentDate, &a.AppointmentTime, &a.Department, &a.Reason, &a.Notes,
		&a.Status, &a.ReminderSent, &a.ConfirmationCode,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Create inserts a and returns the stored row. A taken confirmation code
// surfaces as domain.ErrDuplicateCode.
func (r *AppointmentsRepoImpl) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	const q = `INSERT INTO appointments (
    id, user_id,
    patient_name, patient_email, patient_phone,
    appointment_date, appointment_time, department, reason, notes,
    status, reminder_sent, confirmation_code
  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
  RETURNING ` + appointmentCols

	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out, err := scanAppointment(r.pool.QueryRow(ctx, q, id, a.UserID,
		a.PatientName, a.PatientEmail, a.PatientPhone,
		a.AppointmentDate, a.AppointmentTime, a.Department, a.Reason, a.Notes,
		a.Status, a.ReminderSent, a.ConfirmationCode,
	))
	if isUniqueViolation(err, "appointments_confirmation_code_key") {
		return nil, domain.ErrDuplicateCode
	}
	return out, err
}

func (r *AppointmentsRepoImpl) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	if !validUUID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + appointmentCols + ` FROM appointments WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanAppointment(r.pool.QueryRow(ctx, q, id))
}

func (r *AppointmentsRepoImpl) ExistsByCode(ctx context.Context, code string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM appointments WHERE confirmation_code=$1)`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var exists bool
	err := r.pool.QueryRow(ctx, q, code).Scan(&exists)
	return exists, err
}

func (r *AppointmentsRepoImpl) ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error) {
	if !validUUID(userID) {
		return []domain.Appointment{}, nil
	}
	const q = `SELECT ` + appointmentCols + ` FROM appointments
WHERE user_id=$1
ORDER BY appointment_date DESC, created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Update writes every mutable column of a, bumps updated_at and returns the
// stored row.
func (r *AppointmentsRepoImpl) Update(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if !validUUID(a.ID) {
		return nil, domain.ErrNotFound
	}
	const q = `UPDATE appointments SET
    patient_name=$2, patient_email=$3, patient_phone=$4,
    appointment_date=$5, appointment_time=$6, department=$7, reason=$8, notes=$9,
    status=$10, updated_at=now()
  WHERE id=$1
  RETURNING ` + appointmentCols
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanAppointment(r.pool.QueryRow(ctx, q, a.ID,
		a.PatientName, a.PatientEmail, a.PatientPhone,
		a.AppointmentDate, a.AppointmentTime, a.Department, a.Reason, a.Notes,
		a.Status,
	))
}

func (r *AppointmentsRepoImpl) MarkReminderSent(ctx context.Context, id string) error {
	if !validUUID(id) {
		return domain.ErrNotFound
	}
	const q = `UPDATE appointments SET reminder_sent=true, updated_at=now() WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepoImpl) CountByStatus(ctx context.Context, userID string) (map[domain.AppointmentStatus]int, error) {
	out := map[domain.AppointmentStatus]int{}
	if !validUUID(userID) {
		return out, nil
	}
	const q = `SELECT status, count(*) FROM appointments WHERE user_id=$1 GROUP BY status`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status domain.AppointmentStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// NextUpcoming returns the earliest non-cancelled appointment after the
// given time, or domain.ErrNotFound.
func (r *AppointmentsRepoImpl) NextUpcoming(ctx context.Context, userID string, after time.Time) (*domain.Appointment, error) {
	if !validUUID(userID) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + appointmentCols + ` FROM appointments
WHERE user_id=$1 AND appointment_date > $2 AND status IN ('pending','confirmed')
ORDER BY appointment_date ASC
LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanAppointment(r.pool.QueryRow(ctx, q, userID, after))
}

var _ AppointmentsRepo = (*AppointmentsRepoImpl)(nil)

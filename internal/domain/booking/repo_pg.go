package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicq/clinicq/internal/platform/db"
	"github.com/clinicq/clinicq/pkg/apperr"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, patient_id, patient_name, patient_email, patient_phone,
	doctor_id, doctor_name, location_id, location_name, location_address,
	appointment_date, slot_start, slot_end, queue_number, consultation_fee,
	status, payment_status, payment_order_id, payment_id, paid_at, payment_error,
	symptoms, notes, cancellation_reason, cancelled_at, cancelled_by,
	active, version_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.PatientEmail, &a.PatientPhone,
		&a.DoctorID, &a.DoctorName, &a.LocationID, &a.LocationName, &a.LocationAddress,
		&a.AppointmentDate, &a.TimeSlot.StartTime, &a.TimeSlot.EndTime, &a.QueueNumber, &a.ConsultationFee,
		&a.Status, &a.PaymentStatus, &a.PaymentOrderID, &a.PaymentID, &a.PaidAt, &a.PaymentError,
		&a.Symptoms, &a.Notes, &a.CancelReason, &a.CancelledAt, &a.CancelledBy,
		&a.Active, &a.VersionID, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

// Reserve inserts an appointment inside a serializable transaction so the
// capacity check, queue assignment, and duplicate guard see a consistent
// view of the day. A partial unique index on the queue number backstops
// the assignment; a violation surfaces as a conflict rather than a
// corrupted queue.
func (r *repoPG) Reserve(ctx context.Context, a *Appointment, capacity int) error {
	err := db.RunSerializable(ctx, r.pool, func(tx pgx.Tx) error {
		var duplicates int
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM appointment
			WHERE patient_id = $1 AND doctor_id = $2 AND appointment_date = $3
			  AND status NOT IN ('cancelled', 'no-show') AND active`,
			a.PatientID, a.DoctorID, dateOnly(a.AppointmentDate)).Scan(&duplicates); err != nil {
			return fmt.Errorf("check duplicate booking: %w", err)
		}
		if duplicates > 0 {
			return apperr.New(apperr.Conflict, "you already have an active appointment with this doctor on this date")
		}

		committed, err := countCommitted(ctx, tx, a.DoctorID, a.LocationID, a.AppointmentDate)
		if err != nil {
			return err
		}
		if committed >= capacity {
			return apperr.New(apperr.Conflict, "no available slots for this date")
		}

		next, err := nextQueueNumber(ctx, tx, a.DoctorID, a.LocationID, a.AppointmentDate)
		if err != nil {
			return err
		}

		a.ID = uuid.New()
		a.QueueNumber = next
		a.Status = StatusScheduled
		a.PaymentStatus = PaymentPending
		a.Active = true
		a.VersionID = 1
		a.AppointmentDate = dateOnly(a.AppointmentDate)

		row := tx.QueryRow(ctx, `
			INSERT INTO appointment (id, patient_id, patient_name, patient_email, patient_phone,
				doctor_id, doctor_name, location_id, location_name, location_address,
				appointment_date, slot_start, slot_end, queue_number, consultation_fee,
				status, payment_status, symptoms, notes, active, version_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
			RETURNING created_at, updated_at`,
			a.ID, a.PatientID, a.PatientName, a.PatientEmail, a.PatientPhone,
			a.DoctorID, a.DoctorName, a.LocationID, a.LocationName, a.LocationAddress,
			a.AppointmentDate, a.TimeSlot.StartTime, a.TimeSlot.EndTime, a.QueueNumber, a.ConsultationFee,
			a.Status, a.PaymentStatus, a.Symptoms, a.Notes, a.Active, a.VersionID)
		if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		return nil
	})
	if db.IsUniqueViolation(err) {
		return apperr.New(apperr.Conflict, "no available slots for this date")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1 AND active`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "appointment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// Update writes all mutable fields, guarded by the version the caller
// loaded. Zero rows affected means a concurrent writer won.
func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointment SET
			status=$3, payment_status=$4, payment_order_id=$5, payment_id=$6,
			paid_at=$7, payment_error=$8, notes=$9,
			cancellation_reason=$10, cancelled_at=$11, cancelled_by=$12,
			active=$13, version_id=version_id+1, updated_at=NOW()
		WHERE id = $1 AND version_id = $2`,
		a.ID, a.VersionID,
		a.Status, a.PaymentStatus, a.PaymentOrderID, a.PaymentID,
		a.PaidAt, a.PaymentError, a.Notes,
		a.CancelReason, a.CancelledAt, a.CancelledBy,
		a.Active)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.Conflict, "appointment was modified concurrently, reload and retry")
	}
	a.VersionID++
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter) ([]*Appointment, int, error) {
	return r.list(ctx, "patient_id", patientID, f)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, f ListFilter) ([]*Appointment, int, error) {
	return r.list(ctx, "doctor_id", doctorID, f)
}

func (r *repoPG) list(ctx context.Context, ownerCol string, ownerID uuid.UUID, f ListFilter) ([]*Appointment, int, error) {
	where := fmt.Sprintf("WHERE %s = $1 AND active", ownerCol)
	args := []interface{}{ownerID}

	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Date != nil {
		args = append(args, dateOnly(*f.Date))
		where += fmt.Sprintf(" AND appointment_date = $%d", len(args))
	}
	if f.LocationID != nil {
		args = append(args, *f.LocationID)
		where += fmt.Sprintf(" AND location_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM appointment "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM appointment %s
		ORDER BY appointment_date DESC, queue_number ASC
		LIMIT $%d OFFSET $%d`, apptCols, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repoPG) CountCommitted(ctx context.Context, doctorID uuid.UUID, locationID *uuid.UUID, date time.Time) (int, error) {
	return countCommitted(ctx, r.pool, doctorID, locationID, date)
}

func (r *repoPG) NextQueueNumber(ctx context.Context, doctorID uuid.UUID, locationID *uuid.UUID, date time.Time) (int, error) {
	return nextQueueNumber(ctx, r.pool, doctorID, locationID, date)
}

// countCommitted counts appointments still holding a place in the day.
// A nil locationID scopes to the doctor's whole day.
func countCommitted(ctx context.Context, q queryable, doctorID uuid.UUID, locationID *uuid.UUID, date time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM appointment
		WHERE doctor_id = $1 AND appointment_date = $2
		  AND status NOT IN ('cancelled', 'no-show') AND active`
	args := []interface{}{doctorID, dateOnly(date)}
	if locationID != nil {
		args = append(args, *locationID)
		query += " AND location_id = $3"
	}

	var n int
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count committed appointments: %w", err)
	}
	return n, nil
}

// nextQueueNumber returns one past the highest queue number among
// non-cancelled appointments for the day. Cancelled rows keep their number,
// so positions are never reissued mid-day.
func nextQueueNumber(ctx context.Context, q queryable, doctorID uuid.UUID, locationID *uuid.UUID, date time.Time) (int, error) {
	query := `SELECT COALESCE(MAX(queue_number), 0) FROM appointment
		WHERE doctor_id = $1 AND appointment_date = $2
		  AND status <> 'cancelled' AND active`
	args := []interface{}{doctorID, dateOnly(date)}
	if locationID != nil {
		args = append(args, *locationID)
		query += " AND location_id = $3"
	}

	var max int
	if err := q.QueryRow(ctx, query, args...).Scan(&max); err != nil {
		return 0, fmt.Errorf("max queue number: %w", err)
	}
	return max + 1, nil
}

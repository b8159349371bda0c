package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicq/clinicq/pkg/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const doctorCols = `id, name, email, phone, specialization, consultation_fee,
	street, city, state, zip_code, country, active, created_at, updated_at`

const locationCols = `id, doctor_id, name, street, city, state, zip_code, country,
	consultation_fee, patients_per_day, active, created_at, updated_at`

const slotCols = `id, doctor_id, location_id, day, start_time, end_time, active`

func (r *repoPG) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor
	err := r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1 AND active`, id).
		Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.Specialization, &d.ConsultationFee,
			&d.Address.Street, &d.Address.City, &d.Address.State, &d.Address.ZipCode, &d.Address.Country,
			&d.Active, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "doctor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get doctor: %w", err)
	}

	if err := r.loadLocations(ctx, &d); err != nil {
		return nil, err
	}
	if err := r.loadSlots(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) loadLocations(ctx context.Context, d *Doctor) error {
	rows, err := r.pool.Query(ctx,
		`SELECT `+locationCols+` FROM practice_location WHERE doctor_id = $1 ORDER BY created_at`, d.ID)
	if err != nil {
		return fmt.Errorf("list practice locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var loc PracticeLocation
		if err := rows.Scan(&loc.ID, &loc.DoctorID, &loc.Name,
			&loc.Address.Street, &loc.Address.City, &loc.Address.State, &loc.Address.ZipCode, &loc.Address.Country,
			&loc.ConsultationFee, &loc.PatientsPerDay, &loc.Active, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return fmt.Errorf("scan practice location: %w", err)
		}
		d.Locations = append(d.Locations, loc)
	}
	return rows.Err()
}

// loadSlots attaches weekly slots either to their location or, for legacy
// doctor-level slots, to the doctor itself.
func (r *repoPG) loadSlots(ctx context.Context, d *Doctor) error {
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotCols+` FROM weekly_slot
		WHERE doctor_id = $1
		   OR location_id IN (SELECT id FROM practice_location WHERE doctor_id = $1)
		ORDER BY day, start_time`, d.ID)
	if err != nil {
		return fmt.Errorf("list weekly slots: %w", err)
	}
	defer rows.Close()

	byLocation := make(map[uuid.UUID][]WeeklySlot)
	for rows.Next() {
		var slot WeeklySlot
		var doctorID, locationID *uuid.UUID
		if err := rows.Scan(&slot.ID, &doctorID, &locationID,
			&slot.Day, &slot.StartTime, &slot.EndTime, &slot.Active); err != nil {
			return fmt.Errorf("scan weekly slot: %w", err)
		}
		if locationID != nil {
			byLocation[*locationID] = append(byLocation[*locationID], slot)
		} else {
			d.WeeklySlots = append(d.WeeklySlots, slot)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range d.Locations {
		d.Locations[i].Slots = byLocation[d.Locations[i].ID]
	}
	return nil
}

func (r *repoPG) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, active, created_at, updated_at FROM patient WHERE id = $1 AND active`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "patient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

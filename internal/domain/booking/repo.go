package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows appointment listings. Zero values mean "no filter".
type ListFilter struct {
	Status     Status
	Date       *time.Time
	LocationID *uuid.UUID
	Limit      int
	Offset     int
}

// Repository is the persistence contract for appointments.
//
// Reserve atomically re-checks capacity and the duplicate-booking guard,
// assigns the next queue number, and inserts the appointment. A nil
// LocationID scopes the capacity and queue checks to the doctor's whole
// day, matching how legacy (virtual location) bookings are tracked.
//
// Update applies optimistic concurrency on VersionID and returns a
// conflict error when the row changed underneath the caller.
type Repository interface {
	Reserve(ctx context.Context, a *Appointment, capacity int) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, f ListFilter) ([]*Appointment, int, error)
	CountCommitted(ctx context.Context, doctorID uuid.UUID, locationID *uuid.UUID, date time.Time) (int, error)
	NextQueueNumber(ctx context.Context, doctorID uuid.UUID, locationID *uuid.UUID, date time.Time) (int, error)
}

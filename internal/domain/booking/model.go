package booking

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is the consultation window snapshotted onto an appointment,
// clinic-local "HH:MM" strings.
type TimeSlot struct {
	StartTime string `db:"slot_start" json:"start_time"`
	EndTime   string `db:"slot_end" json:"end_time"`
}

// Appointment is one reserved place in a doctor's day. Patient, doctor, and
// location details are snapshotted at reservation time so later profile
// edits do not rewrite booking history. LocationID is nil for bookings made
// against a legacy doctor's virtual location; those count against the
// doctor's day as a whole.
type Appointment struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	PatientID       uuid.UUID     `db:"patient_id" json:"patient_id"`
	PatientName     string        `db:"patient_name" json:"patient_name"`
	PatientEmail    string        `db:"patient_email" json:"patient_email"`
	PatientPhone    string        `db:"patient_phone" json:"patient_phone"`
	DoctorID        uuid.UUID     `db:"doctor_id" json:"doctor_id"`
	DoctorName      string        `db:"doctor_name" json:"doctor_name"`
	LocationID      *uuid.UUID    `db:"location_id" json:"location_id,omitempty"`
	LocationName    string        `db:"location_name" json:"location_name"`
	LocationAddress string        `db:"location_address" json:"location_address"`
	AppointmentDate time.Time     `db:"appointment_date" json:"appointment_date"`
	TimeSlot        TimeSlot      `json:"time_slot"`
	QueueNumber     int           `db:"queue_number" json:"queue_number"`
	ConsultationFee int           `db:"consultation_fee" json:"consultation_fee"`
	Status          Status        `db:"status" json:"status"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"payment_status"`
	PaymentOrderID  *string       `db:"payment_order_id" json:"payment_order_id,omitempty"`
	PaymentID       *string       `db:"payment_id" json:"payment_id,omitempty"`
	PaidAt          *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	PaymentError    *string       `db:"payment_error" json:"payment_error,omitempty"`
	Symptoms        string        `db:"symptoms" json:"symptoms"`
	Notes           string        `db:"notes" json:"notes"`
	CancelReason    *string       `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledAt     *time.Time    `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancelledBy     *Actor        `db:"cancelled_by" json:"cancelled_by,omitempty"`
	Active          bool          `db:"active" json:"active"`
	VersionID       int           `db:"version_id" json:"version_id"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// GetVersionID returns the current version.
func (a *Appointment) GetVersionID() int { return a.VersionID }

// SetVersionID sets the current version.
func (a *Appointment) SetVersionID(v int) { a.VersionID = v }

// StartsAt resolves the instant the consultation window opens by reading
// the slot's clinic-local start time in the given zone. Slot times are
// wall-clock strings, so the stored date's zone must not be trusted here.
// A malformed slot time degrades to midnight of the appointment day.
func (a *Appointment) StartsAt(zone *time.Location) time.Time {
	if zone == nil {
		zone = time.UTC
	}
	d := a.AppointmentDate
	parsed, err := time.Parse("15:04", a.TimeSlot.StartTime)
	if err != nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, zone)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), parsed.Hour(), parsed.Minute(), 0, 0, zone)
}

// EstimatedWaitMinutes is the rough wait from clinic opening implied by the
// queue position, at a fixed per-consultation pace.
func (a *Appointment) EstimatedWaitMinutes() int {
	if a.QueueNumber < 1 {
		return 0
	}
	return waitPerConsultation * (a.QueueNumber - 1)
}

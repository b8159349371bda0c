package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicq/clinicq/internal/domain/profile"
	"github.com/clinicq/clinicq/pkg/apperr"
)

const (
	maxSymptomsLen = 500
	maxNotesLen    = 1000
	maxReasonLen   = 255
)

type Service struct {
	appointments Repository
	profiles     profile.Repository
	zone         *time.Location
	now          func() time.Time
}

// NewService builds the booking service. zone is the clinic's time zone,
// used to resolve slot wall-clock times against the server clock; nil
// means UTC.
func NewService(appointments Repository, profiles profile.Repository, zone *time.Location) *Service {
	if zone == nil {
		zone = time.UTC
	}
	return &Service{appointments: appointments, profiles: profiles, zone: zone, now: time.Now}
}

// Availability resolves the doctor's bookable locations for a date. A
// doctor with no slot on that weekday, or with every location full, yields
// an empty list rather than an error.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Offer, error) {
	if err := validateBookingDate(date, s.now()); err != nil {
		return nil, err
	}

	doc, err := s.profiles.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	offers := []Offer{}
	for _, sched := range doc.Schedules() {
		sched := sched
		slot := sched.SlotOn(date)
		if slot == nil {
			continue
		}

		locID := reservationLocation(&sched)
		committed, err := s.appointments.CountCommitted(ctx, doctorID, locID, date)
		if err != nil {
			return nil, err
		}
		if committed >= sched.DailyCapacity {
			continue
		}

		next, err := s.appointments.NextQueueNumber(ctx, doctorID, locID, date)
		if err != nil {
			return nil, err
		}
		offers = append(offers, newOffer(&sched, slot, committed, next))
	}
	return offers, nil
}

// BookRequest carries everything needed to reserve an appointment.
type BookRequest struct {
	PatientID  uuid.UUID
	DoctorID   uuid.UUID
	LocationID uuid.UUID
	Date       time.Time
	Symptoms   string
	Notes      string
}

// Book reserves a place in the doctor's day. Capacity, queue assignment,
// and the one-appointment-per-doctor-per-day guard are enforced atomically
// by the repository.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	if req.LocationID == uuid.Nil {
		return nil, apperr.New(apperr.Validation, "location_id is required")
	}
	if err := validateBookingDate(req.Date, s.now()); err != nil {
		return nil, err
	}
	symptoms := strings.TrimSpace(req.Symptoms)
	if len(symptoms) > maxSymptomsLen {
		return nil, apperr.Newf(apperr.Validation, "symptoms must be at most %d characters", maxSymptomsLen)
	}
	notes := strings.TrimSpace(req.Notes)
	if len(notes) > maxNotesLen {
		return nil, apperr.Newf(apperr.Validation, "notes must be at most %d characters", maxNotesLen)
	}

	patient, err := s.profiles.GetPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	doc, err := s.profiles.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	sched := doc.ScheduleFor(req.LocationID)
	if sched == nil {
		return nil, apperr.New(apperr.NotFound, "practice location not found")
	}
	slot := sched.SlotOn(req.Date)
	if slot == nil {
		return nil, apperr.New(apperr.Validation, "doctor is not available on the selected date")
	}

	a := &Appointment{
		PatientID:       patient.ID,
		PatientName:     patient.Name,
		PatientEmail:    patient.Email,
		PatientPhone:    patient.Phone,
		DoctorID:        doc.ID,
		DoctorName:      doc.Name,
		LocationID:      reservationLocation(sched),
		LocationName:    sched.Name,
		LocationAddress: sched.Address.Format(),
		AppointmentDate: dateOnly(req.Date),
		TimeSlot:        TimeSlot{StartTime: slot.StartTime, EndTime: slot.EndTime},
		ConsultationFee: sched.ConsultationFee,
		Symptoms:        symptoms,
		Notes:           notes,
	}
	if err := s.appointments.Reserve(ctx, a, sched.DailyCapacity); err != nil {
		return nil, err
	}
	return a, nil
}

// Get loads an appointment, restricted to its patient or doctor.
func (s *Service) Get(ctx context.Context, id, callerID uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PatientID != callerID && a.DoctorID != callerID {
		return nil, apperr.New(apperr.Forbidden, "you do not have access to this appointment")
	}
	return a, nil
}

// PatientAppointments lists the caller's bookings, newest day first.
func (s *Service) PatientAppointments(ctx context.Context, patientID uuid.UUID, f ListFilter) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, f)
}

// DoctorAppointments lists a doctor's bookings, optionally narrowed to a
// date or location.
func (s *Service) DoctorAppointments(ctx context.Context, doctorID uuid.UUID, f ListFilter) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, f)
}

// Cancel applies the cancellation policy and releases the appointment's
// place in the queue. Either party may cancel their own appointment.
func (s *Service) Cancel(ctx context.Context, id, callerID uuid.UUID, reason string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var actor Actor
	switch callerID {
	case a.PatientID:
		actor = ActorPatient
	case a.DoctorID:
		actor = ActorDoctor
	default:
		return nil, apperr.New(apperr.Forbidden, "you do not have access to this appointment")
	}

	if err := CanCancel(a, s.now(), s.zone); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if len(reason) > maxReasonLen {
		return nil, apperr.Newf(apperr.Validation, "cancellation reason must be at most %d characters", maxReasonLen)
	}

	now := s.now()
	a.Status = StatusCancelled
	a.CancelReason = &reason
	a.CancelledAt = &now
	a.CancelledBy = &actor

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// doctor-updatable statuses; cancellation goes through Cancel so the
// notice policy applies.
var doctorStatusTargets = map[Status]bool{
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusNoShow:     true,
}

// UpdateStatus moves an appointment through its lifecycle. Only the
// treating doctor may do this.
func (s *Service) UpdateStatus(ctx context.Context, id, doctorID uuid.UUID, next Status, notes string) (*Appointment, error) {
	if !doctorStatusTargets[next] {
		return nil, apperr.Newf(apperr.Validation, "status must be one of confirmed, in-progress, completed, no-show")
	}

	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, apperr.New(apperr.Forbidden, "only the treating doctor can update this appointment")
	}
	if !a.Status.CanTransition(next) {
		return nil, apperr.Newf(apperr.Conflict, "cannot move appointment from %s to %s", a.Status, next)
	}

	a.Status = next
	if notes = strings.TrimSpace(notes); notes != "" {
		if len(notes) > maxNotesLen {
			return nil, apperr.Newf(apperr.Validation, "notes must be at most %d characters", maxNotesLen)
		}
		a.Notes = notes
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// PaymentState loads an appointment for payment operations, restricted to
// its patient.
func (s *Service) PaymentState(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PatientID != patientID {
		return nil, apperr.New(apperr.Forbidden, "you do not have access to this appointment")
	}
	return a, nil
}

// AttachPaymentOrder records the gateway order created for an appointment.
func (s *Service) AttachPaymentOrder(ctx context.Context, id, patientID uuid.UUID, orderID string) error {
	a, err := s.PaymentState(ctx, id, patientID)
	if err != nil {
		return err
	}
	if a.PaymentStatus == PaymentPaid {
		return apperr.New(apperr.Conflict, "payment already completed for this appointment")
	}
	a.PaymentOrderID = &orderID
	return s.appointments.Update(ctx, a)
}

// CompletePayment marks the appointment paid and confirms it if it was
// still only scheduled.
func (s *Service) CompletePayment(ctx context.Context, id, patientID uuid.UUID, orderID, paymentID string) (*Appointment, error) {
	a, err := s.PaymentState(ctx, id, patientID)
	if err != nil {
		return nil, err
	}
	if a.PaymentStatus == PaymentPaid {
		return nil, apperr.New(apperr.Conflict, "payment already completed for this appointment")
	}

	now := s.now()
	a.PaymentStatus = PaymentPaid
	a.PaymentOrderID = &orderID
	a.PaymentID = &paymentID
	a.PaidAt = &now
	a.PaymentError = nil
	if a.Status == StatusScheduled {
		a.Status = StatusConfirmed
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// FailPayment records a failed or unverifiable payment attempt. The
// appointment itself stays where it was; the patient can retry.
func (s *Service) FailPayment(ctx context.Context, id, patientID uuid.UUID, reason string) error {
	a, err := s.PaymentState(ctx, id, patientID)
	if err != nil {
		return err
	}
	if a.PaymentStatus == PaymentPaid {
		return apperr.New(apperr.Conflict, "payment already completed for this appointment")
	}

	a.PaymentStatus = PaymentFailed
	a.PaymentError = &reason
	return s.appointments.Update(ctx, a)
}

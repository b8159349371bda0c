// Package billing drives consultation-fee collection through the payment
// gateway and reconciles the result onto appointments.
package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicq/clinicq/internal/domain/booking"
	"github.com/clinicq/clinicq/internal/platform/razorpay"
	"github.com/clinicq/clinicq/pkg/apperr"
)

// Gateway is the slice of the payment provider billing depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// Appointments is the booking surface billing needs: load with patient
// ownership enforced, and persist payment outcomes.
type Appointments interface {
	PaymentState(ctx context.Context, id, patientID uuid.UUID) (*booking.Appointment, error)
	AttachPaymentOrder(ctx context.Context, id, patientID uuid.UUID, orderID string) error
	CompletePayment(ctx context.Context, id, patientID uuid.UUID, orderID, paymentID string) (*booking.Appointment, error)
	FailPayment(ctx context.Context, id, patientID uuid.UUID, reason string) error
}

type Service struct {
	gateway      Gateway
	appointments Appointments
}

func NewService(gateway Gateway, appointments Appointments) *Service {
	return &Service{gateway: gateway, appointments: appointments}
}

// OrderDetails is what a checkout client needs to collect payment.
type OrderDetails struct {
	OrderID       string    `json:"order_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	KeyID         string    `json:"key_id"`
}

// CreateOrder opens a gateway order for the appointment's consultation
// fee. The amount is the fee snapshotted at booking time, in paise. A
// gateway failure leaves the appointment untouched so the patient can
// retry.
func (s *Service) CreateOrder(ctx context.Context, appointmentID, patientID uuid.UUID) (*OrderDetails, error) {
	a, err := s.appointments.PaymentState(ctx, appointmentID, patientID)
	if err != nil {
		return nil, err
	}
	if a.PaymentStatus == booking.PaymentPaid {
		return nil, apperr.New(apperr.Conflict, "payment already completed for this appointment")
	}
	if !a.Status.Committed() {
		return nil, apperr.Newf(apperr.Conflict, "cannot collect payment for a %s appointment", a.Status)
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   int64(a.ConsultationFee) * 100,
		Currency: "INR",
		Receipt:  "apt_" + a.ID.String(),
		Notes: map[string]string{
			"appointment_id": a.ID.String(),
			"patient_id":     a.PatientID.String(),
		},
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create payment order")
	}

	if err := s.appointments.AttachPaymentOrder(ctx, appointmentID, patientID, order.ID); err != nil {
		return nil, err
	}

	return &OrderDetails{
		OrderID:       order.ID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		AppointmentID: a.ID,
		KeyID:         s.gateway.KeyID(),
	}, nil
}

// VerifyRequest carries the checkout callback fields.
type VerifyRequest struct {
	AppointmentID uuid.UUID
	PatientID     uuid.UUID
	OrderID       string
	PaymentID     string
	Signature     string
}

// VerifyResult reports the reconciled state after a successful verification.
type VerifyResult struct {
	AppointmentID     uuid.UUID             `json:"appointment_id"`
	PaymentID         string                `json:"payment_id"`
	PaymentStatus     booking.PaymentStatus `json:"payment_status"`
	AppointmentStatus booking.Status        `json:"appointment_status"`
}

// Verify checks the gateway signature over the order and payment ids. A
// valid signature marks the appointment paid and confirms it; an invalid
// one records a failed payment without touching the appointment status, so
// a forged callback cannot confirm or cancel anything.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, apperr.New(apperr.Validation, "order_id, payment_id, and signature are required")
	}

	a, err := s.appointments.PaymentState(ctx, req.AppointmentID, req.PatientID)
	if err != nil {
		return nil, err
	}
	if a.PaymentOrderID == nil || *a.PaymentOrderID != req.OrderID {
		return nil, apperr.New(apperr.Validation, "order does not belong to this appointment")
	}

	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		if failErr := s.appointments.FailPayment(ctx, req.AppointmentID, req.PatientID, "signature verification failed"); failErr != nil {
			return nil, failErr
		}
		return nil, apperr.New(apperr.PaymentVerification, "payment verification failed")
	}

	updated, err := s.appointments.CompletePayment(ctx, req.AppointmentID, req.PatientID, req.OrderID, req.PaymentID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{
		AppointmentID:     updated.ID,
		PaymentID:         req.PaymentID,
		PaymentStatus:     updated.PaymentStatus,
		AppointmentStatus: updated.Status,
	}, nil
}

// RecordFailure marks a checkout attempt as failed, keeping the
// appointment itself intact so the patient can retry.
func (s *Service) RecordFailure(ctx context.Context, appointmentID, patientID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "payment failed"
	}
	return s.appointments.FailPayment(ctx, appointmentID, patientID, reason)
}

// PaymentDetails is the payment view of one appointment.
type PaymentDetails struct {
	AppointmentID   uuid.UUID             `json:"appointment_id"`
	ConsultationFee int                   `json:"consultation_fee"`
	PaymentStatus   booking.PaymentStatus `json:"payment_status"`
	PaymentOrderID  *string               `json:"payment_order_id,omitempty"`
	PaymentID       *string               `json:"payment_id,omitempty"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	PaymentError    *string               `json:"payment_error,omitempty"`
}

// Details returns the payment state of an appointment for its patient.
func (s *Service) Details(ctx context.Context, appointmentID, patientID uuid.UUID) (*PaymentDetails, error) {
	a, err := s.appointments.PaymentState(ctx, appointmentID, patientID)
	if err != nil {
		return nil, err
	}
	return &PaymentDetails{
		AppointmentID:   a.ID,
		ConsultationFee: a.ConsultationFee,
		PaymentStatus:   a.PaymentStatus,
		PaymentOrderID:  a.PaymentOrderID,
		PaymentID:       a.PaymentID,
		PaidAt:          a.PaidAt,
		PaymentError:    a.PaymentError,
	}, nil
}

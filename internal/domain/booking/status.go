package booking

import "github.com/clinicq/clinicq/pkg/apperr"

// Status is the appointment lifecycle state.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no-show"
)

var validStatuses = map[Status]bool{
	StatusScheduled:  true,
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusNoShow:     true,
}

// ParseStatus validates a status string from an API request.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", apperr.Newf(apperr.Validation, "invalid status %q", s)
	}
	return st, nil
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Committed reports whether the appointment holds a place in the day's
// queue. Cancelled and no-show appointments release their place.
func (s Status) Committed() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Confirmation requires payment-eligible scheduled state; treatment
// may start from scheduled or confirmed; completion only follows treatment.
// No-show can be recorded from any non-terminal state, and cancellation is
// allowed while the appointment has not started.
func (s Status) CanTransition(next Status) bool {
	switch next {
	case StatusConfirmed:
		return s == StatusScheduled
	case StatusInProgress:
		return s == StatusScheduled || s == StatusConfirmed
	case StatusCompleted:
		return s == StatusInProgress
	case StatusNoShow:
		return !s.Terminal()
	case StatusCancelled:
		return s == StatusScheduled || s == StatusConfirmed
	}
	return false
}

// PaymentStatus tracks the payment lifecycle independently of the
// appointment status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Actor identifies who performed a cancellation.
type Actor string

const (
	ActorPatient Actor = "patient"
	ActorDoctor  Actor = "doctor"
	ActorSystem  Actor = "system"
)

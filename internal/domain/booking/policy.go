package booking

import (
	"time"

	"github.com/clinicq/clinicq/pkg/apperr"
)

// CancellationNotice is the minimum time before a consultation's start at
// which it may still be cancelled.
const CancellationNotice = 2 * time.Hour

// BookingWindowDays caps how far ahead appointments can be reserved.
const BookingWindowDays = 90

// waitPerConsultation is the assumed minutes per patient when estimating
// queue waits.
const waitPerConsultation = 15

// CanCancel checks the cancellation policy for a at the given instant. The
// slot's start time is resolved in the clinic's zone.
func CanCancel(a *Appointment, now time.Time, zone *time.Location) error {
	if a.Status != StatusScheduled && a.Status != StatusConfirmed {
		return apperr.Newf(apperr.Conflict, "appointment is already %s", a.Status)
	}
	if a.StartsAt(zone).Sub(now) <= CancellationNotice {
		return apperr.New(apperr.Conflict, "appointments can only be cancelled more than 2 hours before they start")
	}
	return nil
}

// dateOnly truncates t to its calendar day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// calendarDay pins t's calendar components to midnight UTC, so days
// observed in different zones compare by date alone rather than as
// instants.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// validateBookingDate enforces the booking window: no past days, and at
// most BookingWindowDays ahead. Today is bookable.
func validateBookingDate(date, now time.Time) error {
	day := calendarDay(date)
	today := calendarDay(now)
	if day.Before(today) {
		return apperr.New(apperr.Validation, "appointment date cannot be in the past")
	}
	if day.After(today.AddDate(0, 0, BookingWindowDays)) {
		return apperr.Newf(apperr.Validation, "appointments can only be booked up to %d days in advance", BookingWindowDays)
	}
	return nil
}

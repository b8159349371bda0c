package booking

import (
	"github.com/google/uuid"

	"github.com/clinicq/clinicq/internal/domain/profile"
)

// Offer is one bookable location for a doctor on a requested date, with
// live queue information.
type Offer struct {
	LocationID           uuid.UUID `json:"location_id"`
	LocationName         string    `json:"location_name"`
	Address              string    `json:"address"`
	ConsultationFee      int       `json:"consultation_fee"`
	TimeSlot             TimeSlot  `json:"time_slot"`
	TotalCapacity        int       `json:"total_capacity"`
	CurrentBookings      int       `json:"current_bookings"`
	AvailableSpots       int       `json:"available_spots"`
	NextQueueNumber      int       `json:"next_queue_number"`
	EstimatedWaitMinutes int       `json:"estimated_wait_minutes"`
}

// reservationLocation maps a schedule to the location id stored on
// bookings: nil for virtual schedules so they count against the doctor's
// whole day.
func reservationLocation(sched *profile.LocationSchedule) *uuid.UUID {
	if sched.Virtual {
		return nil
	}
	id := sched.LocationID
	return &id
}

func newOffer(sched *profile.LocationSchedule, slot *profile.WeeklySlot, committed, nextQueue int) Offer {
	return Offer{
		LocationID:           sched.LocationID,
		LocationName:         sched.Name,
		Address:              sched.Address.Format(),
		ConsultationFee:      sched.ConsultationFee,
		TimeSlot:             TimeSlot{StartTime: slot.StartTime, EndTime: slot.EndTime},
		TotalCapacity:        sched.DailyCapacity,
		CurrentBookings:      committed,
		AvailableSpots:       sched.DailyCapacity - committed,
		NextQueueNumber:      nextQueue,
		EstimatedWaitMinutes: waitPerConsultation * (nextQueue - 1),
	}
}

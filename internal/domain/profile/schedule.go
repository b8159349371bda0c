package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDailyCapacity applies when a location has no configured limit and
// to legacy doctors without practice locations.
const DefaultDailyCapacity = 10

// defaultConsultationFee applies when neither the location nor the doctor
// has a fee configured.
const defaultConsultationFee = 500

// virtualLocationNS namespaces the deterministic ids minted for legacy
// doctors, so the same doctor always resolves to the same virtual location.
var virtualLocationNS = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// VirtualLocationID derives the stable location id presented for a doctor
// whose schedule predates practice locations.
func VirtualLocationID(doctorID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(virtualLocationNS, doctorID[:])
}

// LocationSchedule is the uniform view the booking flow works with,
// regardless of whether the doctor has real practice locations.
type LocationSchedule struct {
	LocationID      uuid.UUID
	Name            string
	Address         Address
	ConsultationFee int
	DailyCapacity   int
	Slots           []WeeklySlot
	// Virtual marks a schedule synthesized from a legacy doctor profile.
	// Bookings against it are tracked per doctor, not per location.
	Virtual bool
}

// Schedules normalizes the doctor's availability into location schedules.
// Active practice locations win; a doctor with none but with legacy weekly
// slots yields a single virtual schedule. Fee and capacity fall back from
// location to doctor to defaults.
func (d *Doctor) Schedules() []LocationSchedule {
	var out []LocationSchedule
	for _, loc := range d.Locations {
		if !loc.Active {
			continue
		}
		fee := loc.ConsultationFee
		if fee <= 0 {
			fee = d.ConsultationFee
		}
		if fee <= 0 {
			fee = defaultConsultationFee
		}
		capacity := loc.PatientsPerDay
		if capacity <= 0 {
			capacity = DefaultDailyCapacity
		}
		out = append(out, LocationSchedule{
			LocationID:      loc.ID,
			Name:            loc.Name,
			Address:         loc.Address,
			ConsultationFee: fee,
			DailyCapacity:   capacity,
			Slots:           loc.Slots,
		})
	}
	if len(out) > 0 {
		return out
	}

	if len(d.WeeklySlots) == 0 {
		return nil
	}
	fee := d.ConsultationFee
	if fee <= 0 {
		fee = defaultConsultationFee
	}
	return []LocationSchedule{{
		LocationID:      VirtualLocationID(d.ID),
		Name:            d.Name + "'s Clinic",
		Address:         d.Address,
		ConsultationFee: fee,
		DailyCapacity:   DefaultDailyCapacity,
		Slots:           d.WeeklySlots,
		Virtual:         true,
	}}
}

// ScheduleFor returns the schedule with the given location id, or nil.
// Virtual location ids resolve too.
func (d *Doctor) ScheduleFor(locationID uuid.UUID) *LocationSchedule {
	for _, sched := range d.Schedules() {
		if sched.LocationID == locationID {
			s := sched
			return &s
		}
	}
	return nil
}

// SlotOn returns the first active weekly slot matching t's weekday, or nil.
func (s *LocationSchedule) SlotOn(t time.Time) *WeeklySlot {
	for _, slot := range s.Slots {
		if slot.Active && MatchesDay(slot.Day, t) {
			sl := slot
			return &sl
		}
	}
	return nil
}

// MatchesDay reports whether a stored weekday value refers to t's weekday.
// Catalog entries encode weekdays inconsistently ("tuesday", "Tue", "tue"),
// so the full name, the short form, and the 3-letter prefix are all
// accepted, case-insensitively.
func MatchesDay(stored string, t time.Time) bool {
	day := strings.ToLower(strings.TrimSpace(stored))
	if day == "" {
		return false
	}
	full := strings.ToLower(t.Weekday().String())
	short := strings.ToLower(t.Format("Mon"))
	prefix := full[:3]
	return day == full || day == short || day == prefix
}

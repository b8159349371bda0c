package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is a postal address stored inline on doctors and locations.
type Address struct {
	Street  string `db:"street" json:"street"`
	City    string `db:"city" json:"city"`
	State   string `db:"state" json:"state"`
	ZipCode string `db:"zip_code" json:"zip_code"`
	Country string `db:"country" json:"country"`
}

// Format renders the address as a single display line, skipping empty parts.
func (a Address) Format() string {
	parts := []string{a.Street, a.City, a.State, a.ZipCode, a.Country}
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return strings.Join(out, ", ")
}

// WeeklySlot is a recurring consultation window on one weekday. Times are
// clinic-local "HH:MM" strings.
type WeeklySlot struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Day       string    `db:"day" json:"day"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Active    bool      `db:"active" json:"active"`
}

// PracticeLocation is one clinic a doctor consults at, with its own fee,
// capacity, and weekly slots.
type PracticeLocation struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	DoctorID        uuid.UUID    `db:"doctor_id" json:"doctor_id"`
	Name            string       `db:"name" json:"name"`
	Address         Address      `json:"address"`
	ConsultationFee int          `db:"consultation_fee" json:"consultation_fee"`
	PatientsPerDay  int          `db:"patients_per_day" json:"patients_per_day"`
	Active          bool         `db:"active" json:"active"`
	Slots           []WeeklySlot `json:"slots"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// Doctor is a provider profile. Doctors onboarded before multi-location
// support carry WeeklySlots directly instead of practice locations.
type Doctor struct {
	ID              uuid.UUID          `db:"id" json:"id"`
	Name            string             `db:"name" json:"name"`
	Email           string             `db:"email" json:"email"`
	Phone           string             `db:"phone" json:"phone"`
	Specialization  string             `db:"specialization" json:"specialization"`
	ConsultationFee int                `db:"consultation_fee" json:"consultation_fee"`
	Address         Address            `json:"address"`
	Active          bool               `db:"active" json:"active"`
	Locations       []PracticeLocation `json:"locations"`
	WeeklySlots     []WeeklySlot       `json:"weekly_slots"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`
}

// Patient is the subject of appointments. Contact details are snapshotted
// onto bookings at reservation time.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

package models

import "time"

// Doctor represents a practitioner onboarded by the back office.
//
// SlotsBooked is a derived calendar view keyed by date ("2006-01-02") to the
// list of taken time labels for that date. It is maintained exclusively
// through the slot ledger's atomic reserve/release operations and must stay
// rebuildable from the live appointments for the doctor.
type Doctor struct {
	ID           string              `bson:"id" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	Speciality   string              `bson:"speciality" json:"speciality"`
	Degree       string              `bson:"degree" json:"degree"`
	Experience   string              `bson:"experience" json:"experience"`
	About        string              `bson:"about" json:"about"`
	Fee          float64             `bson:"fee" json:"fee"`
	Address      Address             `bson:"address" json:"address"`
	ImageURL     string              `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Available    bool                `bson:"available" json:"available"`
	SlotsBooked  map[string][]string `bson:"slots_booked,omitempty" json:"slots_booked,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

type Address struct {
	Line1 string `bson:"line1" json:"line1"`
	Line2 string `bson:"line2,omitempty" json:"line2,omitempty"`
}

// DoctorDTO is the public listing view of a doctor (no credentials, no calendar).
type DoctorDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Speciality string  `json:"speciality"`
	Degree     string  `json:"degree"`
	Experience string  `json:"experience"`
	About      string  `json:"about"`
	Fee        float64 `json:"fee"`
	Address    Address `json:"address"`
	ImageURL   string  `json:"image_url,omitempty"`
	Available  bool    `json:"available"`
}

// PublicView strips credentials and the booked calendar from a doctor record.
func (d *Doctor) PublicView() DoctorDTO {
	return DoctorDTO{
		ID:         d.ID,
		Name:       d.Name,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Experience: d.Experience,
		About:      d.About,
		Fee:        d.Fee,
		Address:    d.Address,
		ImageURL:   d.ImageURL,
		Available:  d.Available,
	}
}

package models

import (
	"ctb/src/types"
	"time"
)

// Show is one scheduled screening. OccupiedSeats maps seat id ("C14") to the
// claiming user's id and is the single source of truth for occupancy; it is
// the only field that mutates after creation.
type Show struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	MovieID       string      `gorm:"index" json:"movie_id,omitempty"`
	HallID        uint        `gorm:"index:idx_hall_datetime" json:"hall_id,omitempty"`
	DateTime      time.Time   `gorm:"index:idx_hall_datetime" json:"date_time,omitempty"`
	ShowPrice     float64     `json:"show_price"`
	OccupiedSeats types.JSONB `gorm:"type:jsonb" json:"occupied_seats,omitempty"`

	Movie *Movie `gorm:"foreignKey:movie_id" json:"movie,omitempty"`
	Hall  *Hall  `gorm:"foreignKey:hall_id" json:"hall,omitempty"`

	types.Timestamps
}

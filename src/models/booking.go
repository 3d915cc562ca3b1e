package models

import "ctb/src/types"

type Booking struct {
	ID                uint             `gorm:"primarykey" json:"id"`
	UserID            uint             `json:"user_id,omitempty"`
	ShowID            uint             `json:"show_id,omitempty"`
	Amount            float64          `json:"amount"`
	BookedSeats       types.JSONBArray `gorm:"type:jsonb" json:"booked_seats"`
	IsPaid            bool             `gorm:"default:false" json:"is_paid"`
	PaymentLink       string           `json:"payment_link,omitempty"`
	CheckoutSessionId *string          `json:"-"`

	User *User `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Show *Show `gorm:"foreignKey:show_id" json:"show,omitempty"`

	types.Timestamps
}

// SeatIDs returns BookedSeats as plain strings (the JSONB array deserializes
// to []any).
func (b *Booking) SeatIDs() []string {
	seats := make([]string, 0, len(b.BookedSeats))
	for _, s := range b.BookedSeats {
		if id, ok := s.(string); ok {
			seats = append(seats, id)
		}
	}
	return seats
}

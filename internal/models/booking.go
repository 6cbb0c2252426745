package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	BookingID   int64     `bun:"booking_id,pk,autoincrement" json:"booking_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Email       string    `bun:"email,notnull" json:"email"`
	Phone       string    `bun:"phone" json:"phone"`
	ShowID      int64     `bun:"show_id,notnull" json:"show_id"`
	TicketCount int       `bun:"ticket_count,notnull" json:"ticket_count"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

// BookingReceipt is the confirmation handed back after a successful
// issuance. It carries everything the ticket renderer and the dialogue
// confirmation reply need, denormalized from the booking and its show.
type BookingReceipt struct {
	BookingID   int64     `json:"booking_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Movie       string    `json:"movie"`
	ShowDate    time.Time `json:"show_date"`
	Showtime    string    `json:"showtime"`
	TicketCount int       `json:"ticket_count"`
	TotalPrice  float64   `json:"total_price"`
	CreatedAt   time.Time `json:"created_at"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Show struct {
	bun.BaseModel `bun:"table:shows"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	Name           string    `bun:"name,notnull" json:"name"`
	Genre          string    `bun:"genre" json:"genre"`
	Rating         float64   `bun:"rating" json:"rating"`
	Price          float64   `bun:"price,notnull" json:"price"`
	Date           time.Time `bun:"date" json:"date"`
	Showtime       string    `bun:"showtime" json:"showtime"`
	AvailableSeats int       `bun:"available_seats,notnull" json:"available_seats"`
}

// Package ledger stores booking records. Rows are only ever inserted by
// ticket issuance and deleted by cancellation; there is no update path.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ticketgenie/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// Insert persists a new booking and populates the generated BookingID on
// the passed record.
func (d *DB) Insert(ctx context.Context, booking *models.Booking) error {
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	_, err := d.Bun.NewInsert().
		Model(booking).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: insert booking: %v", models.ErrPersistence, err)
	}
	return nil
}

func (d *DB) Get(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("booking_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get booking %d: %v", models.ErrPersistence, id, err)
	}
	return &booking, nil
}

func (d *DB) Delete(ctx context.Context, id int64) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Booking)(nil)).
		Where("booking_id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: delete booking %d: %v", models.ErrPersistence, id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("booking %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func (d *DB) ListByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("email = ?", email).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list bookings for %s: %v", models.ErrPersistence, email, err)
	}
	return bookings, nil
}

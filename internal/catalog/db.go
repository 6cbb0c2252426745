// Package catalog is the store for show records. Seat counts are mutated
// only through ReserveSeats and ReleaseSeats so that the
// available_seats >= 0 invariant is enforced in one place.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ticketgenie/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) ListShows(ctx context.Context) ([]models.Show, error) {
	var shows []models.Show
	err := d.Bun.NewSelect().
		Model(&shows).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list shows: %v", models.ErrPersistence, err)
	}
	return shows, nil
}

func (d *DB) GetShow(ctx context.Context, id int64) (*models.Show, error) {
	var show models.Show
	err := d.Bun.NewSelect().
		Model(&show).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("show %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get show %d: %v", models.ErrPersistence, id, err)
	}
	return &show, nil
}

func (d *DB) SetAvailableSeats(ctx context.Context, id int64, n int) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Show)(nil)).
		Set("available_seats = ?", n).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: set seats for show %d: %v", models.ErrPersistence, id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("show %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// ReserveSeats decrements available_seats by n in a single conditional
// UPDATE. The condition makes the check-then-act atomic at the store, so
// two sessions racing for the last seat cannot both win. Zero rows
// affected means the seats were gone (or the show does not exist).
func (d *DB) ReserveSeats(ctx context.Context, id int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("ticket count %d: %w", n, models.ErrValidation)
	}
	res, err := d.Bun.NewUpdate().
		Model((*models.Show)(nil)).
		Set("available_seats = available_seats - ?", n).
		Where("id = ?", id).
		Where("available_seats >= ?", n).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: reserve %d seats for show %d: %v", models.ErrPersistence, n, id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("show %d: %w", id, models.ErrCapacity)
	}
	return nil
}

// ReleaseSeats gives n seats back, used by cancellation.
func (d *DB) ReleaseSeats(ctx context.Context, id int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("ticket count %d: %w", n, models.ErrValidation)
	}
	res, err := d.Bun.NewUpdate().
		Model((*models.Show)(nil)).
		Set("available_seats = available_seats + ?", n).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: release %d seats for show %d: %v", models.ErrPersistence, n, id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("show %d: %w", id, models.ErrNotFound)
	}
	return nil
}

package auth

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

func (d *DB) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", username, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user %s: %v", models.ErrPersistence, username, err)
	}
	return &user, nil
}

func (d *DB) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := d.Bun.NewInsert().
		Model(user).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: create user %s: %v", models.ErrPersistence, user.Username, err)
	}
	return nil
}

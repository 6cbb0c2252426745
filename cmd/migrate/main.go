// Command migrate creates the TicketGenie schema from the bun models and
// seeds a handful of shows for local development.
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ticketgenie/internal/config"
	"ticketgenie/internal/models"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	log.Println("Creating tables...")
	createTables(ctx, db)

	log.Println("Seeding sample shows...")
	seedShows(ctx, db)

	log.Println("✅ Done.")
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.User)(nil), (*models.Show)(nil), (*models.Booking)(nil)}
	for _, m := range tables {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		if err != nil {
			log.Fatalf("❌ Failed to create table for %T: %v", m, err)
		}
	}
}

func seedShows(ctx context.Context, db *bun.DB) {
	count, err := db.NewSelect().Model((*models.Show)(nil)).Count(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to count shows: %v", err)
	}
	if count > 0 {
		log.Printf("Shows already seeded (%d rows), skipping", count)
		return
	}

	shows := []models.Show{
		{Name: "Dune", Genre: "Sci-Fi", Rating: 8.8, Price: 200, Date: time.Now().AddDate(0, 0, 7), Showtime: "06:30 PM", AvailableSeats: 60},
		{Name: "Oppenheimer", Genre: "Drama", Rating: 8.6, Price: 250, Date: time.Now().AddDate(0, 0, 8), Showtime: "09:00 PM", AvailableSeats: 45},
		{Name: "Inside Out 2", Genre: "Animation", Rating: 7.9, Price: 180, Date: time.Now().AddDate(0, 0, 9), Showtime: "03:15 PM", AvailableSeats: 80},
	}
	if _, err := db.NewInsert().Model(&shows).Exec(ctx); err != nil {
		log.Fatalf("❌ Failed to seed shows: %v", err)
	}
}

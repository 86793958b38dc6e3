package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"songmarket/internal/server/auth"
)

const seedCount = 20

// ErrServerRunning is returned by Seed while a server holds the serve lock.
var ErrServerRunning = errors.New("a server is running against this database")

// SeedUser is a sample account with its plaintext password.
type SeedUser struct {
	Username string
	Email    string
	Password string
}

// SeedUsers returns the sample accounts user1..user20.
func SeedUsers() []SeedUser {
	out := make([]SeedUser, 0, seedCount)
	for i := 1; i <= seedCount; i++ {
		out = append(out, SeedUser{
			Username: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
			Password: fmt.Sprintf("password%d", i),
		})
	}
	return out
}

// SeedSongs returns the sample songs Song 1..Song 20.
func SeedSongs() []Song {
	out := make([]Song, 0, seedCount)
	for i := 1; i <= seedCount; i++ {
		out = append(out, Song{
			Title:    fmt.Sprintf("Song %d", i),
			Artist:   fmt.Sprintf("Artist %d", i),
			Category: fmt.Sprintf("Category %d", i),
			File:     fmt.Sprintf("song%d.mp3", i),
		})
	}
	return out
}

// Seed wipes users and songs and reloads the sample data in one transaction.
// It fails with ErrServerRunning, changing nothing, while any server holds
// the serve lock.
func (db *DB) Seed(ctx context.Context) error {
	users := SeedUsers()
	hashes := make([]string, len(users))
	for i, u := range users {
		h, err := auth.HashPassword(u.Password)
		if err != nil {
			return err
		}
		hashes[i] = h
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked bool
	if err := tx.QueryRow(ctx, "SELECT pg_try_advisory_xact_lock($1)", serveLockKey).Scan(&locked); err != nil {
		return fmt.Errorf("failed to take seed lock: %w", err)
	}
	if !locked {
		return ErrServerRunning
	}

	if _, err := tx.Exec(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM songs"); err != nil {
		return fmt.Errorf("failed to clear songs: %w", err)
	}

	batch := &pgx.Batch{}
	for i, u := range users {
		batch.Queue(`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), u.Username, u.Email, hashes[i])
	}
	// created_at is spaced by the row index so listing keeps seed order.
	for i, s := range SeedSongs() {
		batch.Queue(`INSERT INTO songs (id, title, artist, category, file, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW() + make_interval(secs => $6))`,
			uuid.NewString(), s.Title, s.Artist, s.Category, s.File, float64(i)/1000)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert seed data: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	slog.Info("database seeded", "users", len(users), "songs", seedCount)
	return nil
}

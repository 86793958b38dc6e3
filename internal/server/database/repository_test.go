package database

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestResourceRepositoryStatements(t *testing.T) {
	repo := NewResourceRepository(nil, BannerKind)

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"insert", repo.insertSQL,
			"INSERT INTO banners (id, title, image) VALUES ($1, COALESCE($2, ''), COALESCE($3, '')) RETURNING id, title, image"},
		{"list", repo.listSQL,
			"SELECT id, title, image FROM banners ORDER BY created_at, id"},
		{"get", repo.getSQL,
			"SELECT id, title, image FROM banners WHERE id = $1"},
		{"update", repo.updateSQL,
			"UPDATE banners SET title = COALESCE($2, title), image = COALESCE($3, image) WHERE id = $1 RETURNING id, title, image"},
		{"delete", repo.deleteSQL,
			"DELETE FROM banners WHERE id = $1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got  %q\nwant %q", tt.got, tt.expected)
			}
		})
	}
}

func TestSeedData(t *testing.T) {
	users := SeedUsers()
	if len(users) != 20 {
		t.Fatalf("expected 20 seed users, got %d", len(users))
	}
	if users[0] != (SeedUser{Username: "user1", Email: "user1@example.com", Password: "password1"}) {
		t.Errorf("unexpected first user: %+v", users[0])
	}

	songs := SeedSongs()
	if len(songs) != 20 {
		t.Fatalf("expected 20 seed songs, got %d", len(songs))
	}
	if songs[19] != (Song{Title: "Song 20", Artist: "Artist 20", Category: "Category 20", File: "song20.mp3"}) {
		t.Errorf("unexpected last song: %+v", songs[19])
	}
}

// openTestDB connects to TEST_DATABASE_URL and migrates it, or skips.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := New(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.RunMigrations(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestResourceRepository_Integration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewResourceRepository(db, SongKind)

	id := uuid.NewString()
	created, err := repo.Create(ctx, id, SongFields{
		Title: strPtr("X"), Artist: strPtr("Y"), Category: strPtr("Z"), File: strPtr("x.mp3"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { repo.Delete(context.Background(), id) })

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != *created {
		t.Errorf("round trip mismatch: created %+v, got %+v", *created, *got)
	}

	updated, err := repo.Update(ctx, id, SongFields{Artist: strPtr("W")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Artist != "W" || updated.Title != "X" {
		t.Errorf("expected artist updated and title preserved, got %+v", *updated)
	}

	if _, err := repo.Update(ctx, uuid.NewString(), SongFields{Title: strPtr("ghost")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound updating missing id, got %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSeed_Integration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	t.Run("refuses while a server holds the lock", func(t *testing.T) {
		release, err := db.AcquireServeLock(ctx)
		if err != nil {
			t.Fatalf("acquire serve lock: %v", err)
		}
		defer release()

		if err := db.Seed(ctx); !errors.Is(err, ErrServerRunning) {
			t.Fatalf("expected ErrServerRunning, got %v", err)
		}
	})

	t.Run("loads sample data", func(t *testing.T) {
		if err := db.Seed(ctx); err != nil {
			t.Fatalf("seed: %v", err)
		}

		songs, err := NewResourceRepository(db, SongKind).List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(songs) != 20 {
			t.Fatalf("expected 20 songs, got %d", len(songs))
		}
		if songs[0].Title != "Song 1" {
			t.Errorf("expected seed order, first song is %q", songs[0].Title)
		}

		u, err := NewUserRepository(db).GetByUsername(ctx, "user1")
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if strings.Contains(u.PasswordHash, "password1") {
			t.Error("password stored in plaintext")
		}
	})
}

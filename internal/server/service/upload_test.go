package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"songmarket/internal/server/storage"
)

type failingStore struct{ err error }

func (f failingStore) Init(context.Context) error { return nil }

func (f failingStore) Save(context.Context, string, io.Reader, int64, string) (*storage.Object, error) {
	return nil, f.err
}

func TestUploadService_Upload(t *testing.T) {
	ctx := context.Background()
	arrival := time.UnixMilli(1700000000123)

	t.Run("stores file under timestamped name", func(t *testing.T) {
		dir := t.TempDir()
		svc := NewUploadService(storage.NewFileSystemStore(dir))
		svc.now = func() time.Time { return arrival }

		meta, err := svc.Upload(ctx, &FileUpload{
			Field:       "song",
			Filename:    "track.mp3",
			ContentType: "audio/mpeg",
			Size:        5,
			Data:        strings.NewReader("audio"),
		})
		require.NoError(t, err)

		assert.Equal(t, &FileMetadata{
			FieldName:    "song",
			OriginalName: "track.mp3",
			Encoding:     "7bit",
			MimeType:     "audio/mpeg",
			Destination:  dir,
			Filename:     "1700000000123-track.mp3",
			Path:         filepath.Join(dir, "1700000000123-track.mp3"),
			Size:         5,
		}, meta)

		content, err := os.ReadFile(meta.Path)
		require.NoError(t, err)
		assert.Equal(t, "audio", string(content))
	})

	t.Run("defaults mime type", func(t *testing.T) {
		svc := NewUploadService(storage.NewFileSystemStore(t.TempDir()))

		meta, err := svc.Upload(ctx, &FileUpload{Field: "image", Filename: "b.png", Data: strings.NewReader("png")})
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", meta.MimeType)
		assert.Contains(t, meta.Filename, "b.png")
	})

	t.Run("missing file", func(t *testing.T) {
		svc := NewUploadService(storage.NewFileSystemStore(t.TempDir()))

		_, err := svc.Upload(ctx, nil)
		assert.ErrorIs(t, err, ErrNoFile)

		_, err = svc.Upload(ctx, &FileUpload{Field: "song", Filename: "a.mp3"})
		assert.ErrorIs(t, err, ErrNoFile)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		boom := errors.New("disk full")
		svc := NewUploadService(failingStore{err: boom})

		_, err := svc.Upload(ctx, &FileUpload{Field: "song", Filename: "a.mp3", Data: strings.NewReader("x")})
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNoFile)
	})
}

func TestStorageName(t *testing.T) {
	at := time.UnixMilli(42)
	assert.Equal(t, "42-cover.jpg", storageName(at, "cover.jpg"))
	assert.Equal(t, "42-cover.jpg", storageName(at, "../../etc/cover.jpg"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "song.mp3", "song.mp3"},
		{"strips directory", "/path/to/song.mp3", "song.mp3"},
		{"strips windows path", "C:\\Users\\test\\song.mp3", "song.mp3"},
		{"strips traversal", "../../secret.txt", "secret.txt"},
		{"empty name", "", "upload"},
		{"dot name", ".", "upload"},
		{"dot dot name", "..", "upload"},
		{"keeps spaces", "my song.mp3", "my song.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}

	t.Run("limits length", func(t *testing.T) {
		long := strings.Repeat("a", 300) + ".mp3"
		result := sanitizeFilename(long)
		if len(result) != 200 {
			t.Errorf("expected 200 characters, got %d", len(result))
		}
		if !strings.HasSuffix(result, ".mp3") {
			t.Errorf("expected extension to be kept, got %q", result[len(result)-8:])
		}
	})

	t.Run("keeps multibyte names valid", func(t *testing.T) {
		long := strings.Repeat("€", 100) + ".mp3"
		result := sanitizeFilename(long)
		if !utf8.ValidString(result) {
			t.Errorf("expected valid UTF-8, got %q", result)
		}
		if len(result) > 200 {
			t.Errorf("expected at most 200 bytes, got %d", len(result))
		}
		if !strings.HasSuffix(result, ".mp3") {
			t.Errorf("expected extension to be kept, got %q", result)
		}
		if want := strings.Repeat("€", 65) + ".mp3"; result != want {
			t.Errorf("expected %q, got %q", want, result)
		}
	})
}

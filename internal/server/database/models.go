package database

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// User is a stored credential record. PasswordHash is a bcrypt hash and
// never leaves the server.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
}

// Song is a marketplace item. File references an uploaded asset by name
// and is not checked against storage.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Category string `json:"category"`
	File     string `json:"file"`
}

// SongFields carries caller-supplied song fields; nil means not supplied.
type SongFields struct {
	Title    *string `json:"title"`
	Artist   *string `json:"artist"`
	Category *string `json:"category"`
	File     *string `json:"file"`
}

func (f *SongFields) UnmarshalJSON(data []byte) error {
	return coerceFields(data, map[string]**string{
		"title":    &f.Title,
		"artist":   &f.Artist,
		"category": &f.Category,
		"file":     &f.File,
	})
}

// Banner is a promotional item.
type Banner struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// BannerFields carries caller-supplied banner fields; nil means not supplied.
type BannerFields struct {
	Title *string `json:"title"`
	Image *string `json:"image"`
}

func (f *BannerFields) UnmarshalJSON(data []byte) error {
	return coerceFields(data, map[string]**string{
		"title": &f.Title,
		"image": &f.Image,
	})
}

// coerceFields decodes a JSON object into string fields. Strings, numbers
// and booleans are kept as their text; null or an absent key leaves the
// field unset. Objects and arrays are rejected.
func coerceFields(data []byte, fields map[string]**string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for name, dst := range fields {
		v, ok := raw[name]
		if !ok {
			continue
		}
		s, set, err := coerceString(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if set {
			*dst = &s
		}
	}
	return nil
}

func coerceString(v json.RawMessage) (string, bool, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", false, nil
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case 't', 'f':
		return string(v), true, nil
	case '{', '[':
		return "", false, fmt.Errorf("cannot cast %s to string", jsonKind(v[0]))
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return "", false, err
		}
		return n.String(), true, nil
	}
}

func jsonKind(b byte) string {
	if b == '{' {
		return "object"
	}
	return "array"
}

// Kind describes how a resource type maps onto its table. Every mutable
// column is a string; Fields and Values list them in Columns order.
type Kind[T, F any] struct {
	Label   string
	Table   string
	Columns []string

	ID     func(t *T) *string
	Fields func(t *T) []*string
	Values func(f F) []*string
}

var SongKind = Kind[Song, SongFields]{
	Label:   "Song",
	Table:   "songs",
	Columns: []string{"title", "artist", "category", "file"},
	ID:      func(s *Song) *string { return &s.ID },
	Fields: func(s *Song) []*string {
		return []*string{&s.Title, &s.Artist, &s.Category, &s.File}
	},
	Values: func(f SongFields) []*string {
		return []*string{f.Title, f.Artist, f.Category, f.File}
	},
}

var BannerKind = Kind[Banner, BannerFields]{
	Label:   "Banner",
	Table:   "banners",
	Columns: []string{"title", "image"},
	ID:      func(b *Banner) *string { return &b.ID },
	Fields: func(b *Banner) []*string {
		return []*string{&b.Title, &b.Image}
	},
	Values: func(f BannerFields) []*string {
		return []*string{f.Title, f.Image}
	},
}

// apply copies every supplied value onto t's fields.
func (k Kind[T, F]) apply(t *T, f F) {
	targets := k.Fields(t)
	for i, v := range k.Values(f) {
		if v != nil {
			*targets[i] = *v
		}
	}
}

// scanTargets returns the destinations for a row of id followed by Columns.
func (k Kind[T, F]) scanTargets(t *T) []any {
	fields := k.Fields(t)
	out := make([]any, 0, len(fields)+1)
	out = append(out, k.ID(t))
	for _, f := range fields {
		out = append(out, f)
	}
	return out
}

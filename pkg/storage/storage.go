package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested path does not exist in storage.
var ErrNotFound = errors.New("not found")

// Storage is a flat key/value blob store addressed by slash separated paths.
// Repositories keep one YAML document per record on top of it.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	// List returns the paths directly under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// ErrInvalidKey is returned for record ids that cannot name a document
// directly under their prefix.
var ErrInvalidKey = errors.New("invalid record id")

// RecordPath is the key of the YAML document holding record id under prefix.
// Ids containing a path separator or "..", and empty ids, are rejected so a
// lookup never reaches another prefix.
func RecordPath(prefix, id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("%q: %w", id, ErrInvalidKey)
	}
	return prefix + "/" + id + ".yaml", nil
}

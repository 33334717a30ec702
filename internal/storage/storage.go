package storage

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"minigolf/internal/config"
	"minigolf/internal/course"
)

// ErrNotFound reports a course id with no stored snapshot.
var ErrNotFound = errors.New("course not found")

// CourseStore persists generated course snapshots by course id. Stored
// snapshots are treated as immutable: callers must not modify the slices of a
// snapshot after saving it or after loading it.
type CourseStore interface {
	Save(snapshot course.Snapshot) error
	Load(id string) (course.Snapshot, bool, error)
	Delete(id string) error
	ForEach(fn func(snapshot course.Snapshot) bool) error
	Len() int
	Close() error
}

// Open builds the store selected by cfg.
func Open(cfg config.StorageConfig, logger *log.Logger) (CourseStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "disk":
		return OpenDiskStore(filepath.Join(cfg.DataRoot, "courses.log"), logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

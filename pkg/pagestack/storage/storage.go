// Package storage provides the durable media behind navigation sessions.
//
// A session blob is opaque here: the navigation package produces and consumes
// it, storage only keeps it per host until the next resume.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound indicates no session is stored for a host.
var ErrNotFound = errors.New("session not found")

// Record describes one stored session.
type Record struct {
	HostID    string
	Size      int
	UpdatedAt time.Time
}

// Storage keeps one session blob per navigation host.
type Storage interface {
	Save(ctx context.Context, hostID string, blob []byte) error
	Load(ctx context.Context, hostID string) ([]byte, error)
	Delete(ctx context.Context, hostID string) error
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open creates the storage named by backend. path is a directory for the file
// backend and a database file for sqlite; memory ignores it.
func Open(backend, path string) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendFile:
		return NewFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

func validHostID(hostID string) error {
	if strings.TrimSpace(hostID) == "" {
		return errors.New("host id is required")
	}
	if strings.ContainsAny(hostID, `/\`) || hostID == "." || hostID == ".." {
		return fmt.Errorf("invalid host id %q", hostID)
	}
	return nil
}

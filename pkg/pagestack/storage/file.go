package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const sessionExt = ".session.json"

// File stores each host's session as a JSON file in one directory. Writes go
// through a temporary file and a rename so a crash never leaves a torn blob.
type File struct {
	dir string
}

// NewFile creates a file store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("session directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(hostID string) string {
	return filepath.Join(f.dir, hostID+sessionExt)
}

func (f *File) Save(_ context.Context, hostID string, blob []byte) error {
	if err := validHostID(hostID); err != nil {
		return err
	}
	path := f.path(hostID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

func (f *File) Load(_ context.Context, hostID string) ([]byte, error) {
	if err := validHostID(hostID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(hostID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	return data, nil
}

func (f *File) Delete(_ context.Context, hostID string) error {
	if err := validHostID(hostID); err != nil {
		return err
	}
	if err := os.Remove(f.path(hostID)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (f *File) List(_ context.Context) ([]Record, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	var out []Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, sessionExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Record{
			HostID:    strings.TrimSuffix(name, sessionExt),
			Size:      int(info.Size()),
			UpdatedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HostID < out[j].HostID })
	return out, nil
}

func (f *File) Close() error {
	return nil
}

// Package store manages the upload and output directories.
//
// Types:
//   - Store: one directory of transient files. Every file it creates gets a
//     UUID-prefixed name and is tracked with its creation time.
//
// Expected outputs:
// - Names never collide between concurrent requests
// - Lookups never escape the directory
// - Sweep removes tracked files older than a TTL
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go-filetools/internal/apperrors"
	"go-filetools/internal/utils"

	"github.com/sirupsen/logrus"
)

// File describes a file held by a Store.
type File struct {
	Name      string
	Path      string
	Size      int64
	CreatedAt time.Time
}

type Store struct {
	Dir   string
	files map[string]time.Time
	mutex sync.RWMutex
	log   logrus.FieldLogger
}

func New(dir string, log logrus.FieldLogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return &Store{
		Dir:   dir,
		files: make(map[string]time.Time),
		log:   log,
	}, nil
}

// Path reserves a unique name derived from name and returns its full path.
// The file itself is created by the caller (usually a library writing its
// output).
func (s *Store) Path(name string) (string, string) {
	unique := utils.UniqueName(name)
	s.mutex.Lock()
	s.files[unique] = time.Now()
	s.mutex.Unlock()
	return unique, filepath.Join(s.Dir, unique)
}

// Save copies r into a new uniquely named file.
func (s *Store) Save(r io.Reader, name string) (*File, error) {
	unique, path := s.Path(name)
	dst, err := os.Create(path)
	if err != nil {
		s.forget(unique)
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, r)
	if err != nil {
		os.Remove(path)
		s.forget(unique)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	return &File{Name: unique, Path: path, Size: size, CreatedAt: time.Now()}, nil
}

// WriteFile stores data under a unique name.
func (s *Store) WriteFile(data []byte, name string) (*File, error) {
	unique, path := s.Path(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		s.forget(unique)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	return &File{Name: unique, Path: path, Size: int64(len(data)), CreatedAt: time.Now()}, nil
}

// Stat returns the stored file for name, or a not-found error when the name
// is unsafe or the file is absent.
func (s *Store) Stat(name string) (*File, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, apperrors.NewNotFoundError("File not found")
	}
	path := filepath.Join(s.Dir, name)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil, apperrors.NewNotFoundError("File not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return &File{Name: name, Path: path, Size: info.Size(), CreatedAt: info.ModTime()}, nil
}

// Remove deletes a file and stops tracking it.
func (s *Store) Remove(name string) {
	s.forget(name)
	os.Remove(filepath.Join(s.Dir, name))
}

// Sweep removes tracked files older than ttl and returns how many were removed.
func (s *Store) Sweep(ttl time.Duration) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for name, created := range s.files {
		if time.Since(created) > ttl {
			os.Remove(filepath.Join(s.Dir, name))
			delete(s.files, name)
			removed++
		}
	}
	return removed
}

// Clear deletes every regular file in the directory, tracked or not.
func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			_ = os.Remove(filepath.Join(s.Dir, entry.Name()))
		}
	}
	s.files = make(map[string]time.Time)
}

// Len returns the number of tracked files.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.files)
}

// Janitor sweeps every interval until ctx is done.
func (s *Store) Janitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(ttl); n > 0 {
				s.log.WithFields(logrus.Fields{"dir": s.Dir, "removed": n, "remaining": s.Len()}).Debug("swept expired files")
			}
		}
	}
}

func (s *Store) forget(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.files, name)
}

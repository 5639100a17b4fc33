// Package store composes the block codec, free-block registry, file
// backend, and index into the public key-value operations: load, has,
// get, set, delete, clear, and iteration.
//
// Grounded on the teacher's internal/stashdb.Stash (logger-carrying
// struct, NewStash(cfg, logger) constructor shape) and cmd/stash/main.go
// (zap logger construction).
package store

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"sync"

	"github.com/jkasperson/blockkv/internal/filebackend"
	"github.com/jkasperson/blockkv/internal/freelist"
	"github.com/jkasperson/blockkv/internal/gate"
	"github.com/jkasperson/blockkv/internal/index"
)

// Config recognizes the two store-wide options from spec.md §4.4.
type Config struct {
	// BufferValues: values are raw bytes when true, UTF-8 strings when
	// false (default false).
	BufferValues bool
	// InMemoryValues: when true (default), each index entry caches the
	// value; when false, Get performs a positioned read.
	InMemoryValues bool
}

// DefaultConfig matches spec.md's documented defaults.
func DefaultConfig() Config {
	return Config{BufferValues: false, InMemoryValues: true}
}

// Store is the embedded key-value engine. Not safe to share a single
// *Store across processes; within a process it is safe for concurrent use
// by many goroutines.
type Store struct {
	cfg     Config
	backend *filebackend.Backend
	free    *freelist.Registry
	idx     *index.Index
	gate    *gate.Gate
	sf      singleflight.Group

	// mu guards idx/free against concurrent mutation; it is taken only
	// for the brief moment a mutating operation updates in-memory state,
	// not for the duration of any disk I/O. Synchronous readers (Has,
	// cached Get, Size, Keys) take a read lock so the Go runtime never
	// observes a torn map, while still being free to run concurrently
	// with an in-flight disk write per spec.md §5/§9.
	mu sync.RWMutex

	log *zap.SugaredLogger
}

// Open opens path (creating it if absent) and rebuilds the index from its
// contents per the load/recovery protocol in loaddb.go.
func Open(path string, cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend, err := filebackend.Open(path)
	if err != nil {
		return nil, err
	}

	s := &Store{
		cfg:     cfg,
		backend: backend,
		free:    freelist.New(),
		idx:     index.New(),
		gate:    gate.New(),
		log:     logger.Sugar(),
	}

	if err := s.gate.Do(context.Background(), func() error {
		return s.loadLocked()
	}); err != nil {
		backend.Close()
		return nil, err
	}

	s.log.Infow("store opened", "path", path, "size", s.idx.Size())
	return s, nil
}

// Close releases the underlying file descriptor. It does not flush
// anything: the engine never buffers writes past the positioned write
// that already reached the OS (see spec.md §6 Durability).
func (s *Store) Close() error {
	return s.backend.Close()
}

func validateKey(key string) error {
	if key == "" || !utf8.ValidString(key) {
		return ErrInvalidKey
	}
	return nil
}

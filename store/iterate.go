package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jkasperson/blockkv/internal/index"
	"github.com/jkasperson/blockkv/internal/kvvalue"
)

// KeyValue pairs a key with its resolved value, returned by Entries and
// passed to ForEach/ForEachConcurrent callbacks.
type KeyValue struct {
	Key   string
	Value kvvalue.Value
}

// Keys returns every live key in insertion order. It never touches the
// file.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Keys()
}

func (s *Store) snapshot() []index.KeyEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Entries()
}

func (s *Store) valueFor(key string, entry index.Entry) (kvvalue.Value, error) {
	if entry.Cached {
		return entry.Value, nil
	}
	return s.readValue(key, entry)
}

// Values returns every live value in insertion order, resolving
// non-cached entries with one positioned read apiece.
func (s *Store) Values() ([]kvvalue.Value, error) {
	snap := s.snapshot()
	out := make([]kvvalue.Value, len(snap))
	for i, kv := range snap {
		v, err := s.valueFor(kv.Key, kv.Entry)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Entries returns every live (key, value) pair in insertion order.
func (s *Store) Entries() ([]KeyValue, error) {
	snap := s.snapshot()
	out := make([]KeyValue, len(snap))
	for i, kv := range snap {
		v, err := s.valueFor(kv.Key, kv.Entry)
		if err != nil {
			return nil, err
		}
		out[i] = KeyValue{Key: kv.Key, Value: v}
	}
	return out, nil
}

// ForEach visits every live (key, value) pair in insertion order,
// resolving values one at a time and stopping at the first error fn
// returns.
func (s *Store) ForEach(fn func(key string, value kvvalue.Value) error) error {
	snap := s.snapshot()
	for _, kv := range snap {
		v, err := s.valueFor(kv.Key, kv.Entry)
		if err != nil {
			return err
		}
		if err := fn(kv.Key, v); err != nil {
			return err
		}
	}
	return nil
}

// ForEachConcurrent visits every live (key, value) pair with no ordering
// guarantee, resolving values across a pool of goroutines so non-cached
// stores don't pay a full table's worth of reads serially. It stops
// issuing new callbacks and returns the first error encountered, either
// from a read or from fn itself.
func (s *Store) ForEachConcurrent(ctx context.Context, fn func(key string, value kvvalue.Value) error) error {
	snap := s.snapshot()
	g, _ := errgroup.WithContext(ctx)
	for _, kv := range snap {
		kv := kv
		g.Go(func() error {
			v, err := s.valueFor(kv.Key, kv.Entry)
			if err != nil {
				return err
			}
			return fn(kv.Key, v)
		})
	}
	return g.Wait()
}

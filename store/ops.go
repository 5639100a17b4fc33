package store

import (
	"context"

	"github.com/jkasperson/blockkv/internal/blockcodec"
	"github.com/jkasperson/blockkv/internal/index"
	"github.com/jkasperson/blockkv/internal/kvvalue"
)

// Has reports whether key currently has a live value. It never touches
// the file.
func (s *Store) Has(key string) bool {
	if validateKey(key) != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Has(key)
}

// Size returns the number of live keys.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Size()
}

// Get returns key's value. With InMemoryValues it is a synchronous index
// probe; otherwise it issues a positioned read, coalescing concurrent
// callers asking for the same key through a singleflight group so N
// simultaneous Gets of one key cost one disk read.
func (s *Store) Get(key string) (kvvalue.Value, error) {
	if err := validateKey(key); err != nil {
		return kvvalue.Value{}, err
	}

	s.mu.RLock()
	entry, ok := s.idx.Get(key)
	s.mu.RUnlock()
	if !ok {
		return kvvalue.Value{}, ErrNotFound
	}

	if s.cfg.InMemoryValues {
		return entry.Value, nil
	}

	return s.readValue(key, entry)
}

func (s *Store) readValue(key string, entry index.Entry) (kvvalue.Value, error) {
	v, err, _ := s.sf.Do(key, func() (any, error) {
		buf := make([]byte, entry.ValueLen)
		err := s.gate.Do(context.Background(), func() error {
			return s.backend.ReadAt(entry.Offset+entry.ValueOffset, buf)
		})
		if err != nil {
			return nil, err
		}
		return kvvalue.Normalize(s.cfg.BufferValues, buf), nil
	})
	if err != nil {
		return kvvalue.Value{}, err
	}
	return v.(kvvalue.Value), nil
}

// Set stores value under key, normalizing it to the store's configured
// kind (spec.md §4.4). A new key's index entry becomes visible before its
// block is written to disk, matching the source's documented race
// (spec.md §9); updates to an existing key write first.
func (s *Store) Set(key string, value any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.gate.Do(context.Background(), func() error {
		return s.setLocked(key, value)
	})
}

func (s *Store) setLocked(key string, value any) error {
	v := kvvalue.Normalize(s.cfg.BufferValues, value)
	keyBytes := []byte(key)
	valBytes := v.AsBytes()
	recordLen, _ := blockcodec.RecordLen(len(keyBytes), len(valBytes))

	s.mu.RLock()
	existing, exists := s.idx.Get(key)
	s.mu.RUnlock()

	if !exists {
		return s.insertNew(key, keyBytes, valBytes, recordLen, v)
	}

	if uint64(recordLen) <= existing.Size {
		return s.updateInPlace(key, keyBytes, valBytes, existing, v)
	}
	return s.relocate(key, keyBytes, valBytes, recordLen, existing, v)
}

func (s *Store) insertNew(key string, keyBytes, valBytes []byte, recordLen int, v kvvalue.Value) error {
	size, err := sizeWithGrowth(recordLen)
	if err != nil {
		return err
	}
	offset := s.reservePlacement(size)
	entry := s.buildEntry(offset, size, len(keyBytes), len(valBytes), v)

	s.mu.Lock()
	s.idx.Set(key, entry)
	s.mu.Unlock()

	block := blockcodec.EncodeRecord(keyBytes, valBytes, size)
	if err := s.backend.WriteAt(offset, block); err != nil {
		return err
	}
	s.log.Debugw("insert", "key", key, "offset", offset, "size", size)
	return nil
}

func (s *Store) updateInPlace(key string, keyBytes, valBytes []byte, existing index.Entry, v kvvalue.Value) error {
	block := blockcodec.EncodeRecord(keyBytes, valBytes, existing.Size)
	if err := s.backend.WriteAt(existing.Offset, block); err != nil {
		return err
	}
	entry := s.buildEntry(existing.Offset, existing.Size, len(keyBytes), len(valBytes), v)
	s.mu.Lock()
	s.idx.Set(key, entry)
	s.mu.Unlock()
	s.log.Debugw("update in place", "key", key, "offset", existing.Offset, "size", existing.Size)
	return nil
}

func (s *Store) relocate(key string, keyBytes, valBytes []byte, recordLen int, existing index.Entry, v kvvalue.Value) error {
	size, err := sizeWithGrowth(recordLen)
	if err != nil {
		return err
	}
	offset := s.reservePlacement(size)

	block := blockcodec.EncodeRecord(keyBytes, valBytes, size)
	if err := s.backend.WriteAt(offset, block); err != nil {
		return err
	}

	entry := s.buildEntry(offset, size, len(keyBytes), len(valBytes), v)
	s.mu.Lock()
	s.idx.Set(key, entry)
	s.mu.Unlock()

	freeBlock := blockcodec.EncodeFreeBlock(existing.Size)
	if err := s.backend.WriteAt(existing.Offset, freeBlock); err != nil {
		return err
	}
	s.free.Release(existing.Size, existing.Offset)
	s.log.Debugw("relocate", "key", key, "oldOffset", existing.Offset, "oldSize", existing.Size,
		"newOffset", offset, "newSize", size)
	return nil
}

func (s *Store) buildEntry(offset int64, size uint64, keyLen, valueLen int, v kvvalue.Value) index.Entry {
	if s.cfg.InMemoryValues {
		return index.Entry{Offset: offset, Size: size, Cached: true, Value: v}
	}
	large := blockcodec.NeedsLargeLPS(keyLen, valueLen)
	header := blockcodec.HeaderLen(large)
	return index.Entry{
		Offset:      offset,
		Size:        size,
		Cached:      false,
		ValueOffset: int64(header + keyLen),
		ValueLen:    valueLen,
	}
}

// Delete removes key. It is idempotent: deleting an absent or
// already-deleted key succeeds without error.
func (s *Store) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.gate.Do(context.Background(), func() error {
		return s.deleteLocked(key)
	})
}

func (s *Store) deleteLocked(key string) error {
	s.mu.RLock()
	entry, ok := s.idx.Get(key)
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	freeBlock := blockcodec.EncodeFreeBlock(entry.Size)
	if err := s.backend.WriteAt(entry.Offset, freeBlock); err != nil {
		return err
	}

	s.mu.Lock()
	s.idx.Delete(key)
	s.mu.Unlock()

	s.free.Release(entry.Size, entry.Offset)
	s.log.Debugw("delete", "key", key, "offset", entry.Offset, "size", entry.Size)
	return nil
}

// Clear discards every key and truncates the backing file to zero bytes.
func (s *Store) Clear() error {
	return s.gate.Do(context.Background(), func() error {
		if err := s.backend.Truncate(); err != nil {
			return err
		}
		s.mu.Lock()
		s.idx.Clear()
		s.mu.Unlock()
		s.free.ForgetAll()
		s.log.Infow("clear")
		return nil
	})
}

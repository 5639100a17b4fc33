package store

import "github.com/jkasperson/blockkv/internal/blockcodec"

// growthPad returns ceil(n * 1.2), spec.md §4.1's insert-time growth
// padding, computed with integer arithmetic (1.2 == 6/5) to avoid float
// rounding surprises near ladder boundaries.
func growthPad(n int) uint64 {
	a := uint64(n) * 6
	return (a + 4) / 5
}

// reservePlacement picks an offset for a block of size: reuse a free
// block of the exact size if the registry has one, otherwise extend the
// tracked end-of-file. It does not write anything; the caller writes the
// block afterward (see store.go/§9 on the documented insert-before-write
// race for brand-new keys).
func (s *Store) reservePlacement(size uint64) int64 {
	if off, ok := s.free.Take(size); ok {
		return off
	}
	return s.backend.ReserveAppend(int64(size))
}

// sizeWithGrowth sizes a block for a record that has no existing home yet
// (a brand-new key, or a relocation), applying the insert-time growth
// padding from spec.md §4.1.
func sizeWithGrowth(recordLen int) (uint64, error) {
	size, _, _, err := blockcodec.ForBytes(growthPad(recordLen))
	return size, err
}

// Package blockcodec implements the on-disk block format: flags byte, the
// power-of-two-with-half-step sizing ladder, and the length-prefixed
// key/value record layout within a block.
package blockcodec

import "fmt"

// ErrBlockTooLarge is returned when the sizing ladder would need an
// exponent beyond 31 to hold the requested number of bytes.
type ErrBlockTooLarge struct {
	Requested uint64
}

func (e *ErrBlockTooLarge) Error() string {
	return fmt.Sprintf("blockcodec: block too large for %d bytes", e.Requested)
}

// ErrCorruptBlock is returned when a block's decoded lengths are not
// representable or would overrun the buffer/file it was read from.
type ErrCorruptBlock struct {
	Offset int64
	Reason string
}

func (e *ErrCorruptBlock) Error() string {
	return fmt.Sprintf("blockcodec: corrupt block at offset %d: %s", e.Offset, e.Reason)
}

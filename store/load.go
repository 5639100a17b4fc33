package store

import (
	"github.com/jkasperson/blockkv/internal/blockcodec"
	"github.com/jkasperson/blockkv/internal/index"
	"github.com/jkasperson/blockkv/internal/kvvalue"
)

// loadLocked rebuilds the index and free registry by scanning the backend
// from offset 0 to its end-of-file cursor, one block at a time. Each block
// declares its own size via its flags byte, so the scan never needs to
// know where a block ends before reading its header: FREE blocks are
// pushed onto the free registry, live blocks are decoded and inserted
// into the index in file order, and the cursor always advances by the
// block's declared size regardless of liveness. A block whose declared
// size would run past the tracked end of file means the file is corrupt,
// and the load fails outright rather than guess.
func (s *Store) loadLocked() error {
	eof := s.backend.EOF()
	var offset int64

	for offset < eof {
		remain := eof - offset
		prefixLen := int64(blockcodec.MaxPrefixLen)
		if remain < prefixLen {
			prefixLen = remain
		}

		prefix := make([]byte, prefixLen)
		if err := s.backend.ReadAt(offset, prefix); err != nil {
			return err
		}

		flags := blockcodec.Flags(prefix[0])
		blockSize := flags.BlockSize()
		if offset+int64(blockSize) > eof {
			return &blockcodec.ErrCorruptBlock{Offset: offset, Reason: "block extends past end of file"}
		}

		if flags.Free() {
			s.free.Release(blockSize, offset)
			offset += int64(blockSize)
			continue
		}

		header, err := blockcodec.DecodeRecordHeader(flags, prefix)
		if err != nil {
			return err
		}

		recordLen := header.HeaderLen + header.KeyLen + header.ValueLen
		if int64(recordLen) > int64(blockSize) {
			return &blockcodec.ErrCorruptBlock{Offset: offset, Reason: "record length exceeds block size"}
		}

		full := make([]byte, recordLen)
		if err := s.backend.ReadAt(offset, full); err != nil {
			return err
		}

		key := string(blockcodec.Key(full, header))
		entry := index.Entry{Offset: offset, Size: blockSize}
		if s.cfg.InMemoryValues {
			value := blockcodec.Value(full, header)
			entry.Cached = true
			entry.Value = kvvalue.Normalize(s.cfg.BufferValues, append([]byte(nil), value...))
		} else {
			entry.ValueOffset = int64(header.HeaderLen + header.KeyLen)
			entry.ValueLen = header.ValueLen
		}

		s.idx.Set(key, entry)
		offset += int64(blockSize)
	}

	return nil
}

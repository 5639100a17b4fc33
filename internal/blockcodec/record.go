package blockcodec

import "encoding/binary"

const (
	smallHeaderLen = 1 + 1 + 2 // flags + key length (1B) + value length (2B)
	largeHeaderLen = 1 + 2 + 4 // flags + key length (2B) + value length (4B)

	// MaxPrefixLen is the worst-case number of bytes needed to decode a
	// record's flags and both length prefixes, used by the loader so it
	// never has to guess how much of a block to read first.
	MaxPrefixLen = largeHeaderLen
)

// NeedsLargeLPS reports whether key/value lengths overflow the small
// (1-byte key length, 2-byte value length) prefix form.
func NeedsLargeLPS(keyLen, valueLen int) bool {
	return keyLen > 0xff || valueLen > 0xffff
}

// HeaderLen returns the number of bytes the flags byte and length prefixes
// occupy for the given LPS width.
func HeaderLen(large bool) int {
	if large {
		return largeHeaderLen
	}
	return smallHeaderLen
}

// RecordLen returns the total number of record bytes (header + key +
// value) and whether the large length-prefix form is required.
func RecordLen(keyLen, valueLen int) (total int, large bool) {
	large = NeedsLargeLPS(keyLen, valueLen)
	return HeaderLen(large) + keyLen + valueLen, large
}

// EncodeRecord renders key/value into a freshly zeroed block of exactly
// blockSize bytes. blockSize must be large enough to hold the record; the
// caller (the placement/sizing logic in package store) is responsible for
// that.
func EncodeRecord(key, value []byte, blockSize uint64) []byte {
	large := NeedsLargeLPS(len(key), len(value))
	header := HeaderLen(large)

	buf := make([]byte, blockSize)
	buf[0] = byte(encodeRecordFlags(large, blockSize))

	if large {
		binary.BigEndian.PutUint16(buf[1:3], uint16(len(key)))
		binary.BigEndian.PutUint32(buf[3:7], uint32(len(value)))
	} else {
		buf[1] = byte(len(key))
		binary.BigEndian.PutUint16(buf[2:4], uint16(len(value)))
	}

	copy(buf[header:], key)
	copy(buf[header+len(key):], value)
	return buf
}

func encodeRecordFlags(large bool, blockSize uint64) Flags {
	_, exponent, half, err := ForBytes(blockSize)
	if err != nil {
		// blockSize was already validated by the caller via ForBytes;
		// this can only happen if it passed a size outside the ladder.
		panic("blockcodec: EncodeRecord given a non-ladder block size")
	}
	return EncodeFlags(false, large, half, exponent)
}

// EncodeFreeBlock renders a block of the given ladder size marked FREE.
// Length prefixes and payload are left zeroed and undefined.
func EncodeFreeBlock(size uint64) []byte {
	_, exponent, half, err := ForBytes(size)
	if err != nil {
		panic("blockcodec: EncodeFreeBlock given a non-ladder block size")
	}
	buf := make([]byte, size)
	buf[0] = byte(EncodeFlags(true, false, half, exponent))
	return buf
}

// RecordHeader describes a decoded record's length prefixes.
type RecordHeader struct {
	Large     bool
	HeaderLen int
	KeyLen    int
	ValueLen  int
}

// DecodeRecordHeader parses the flags byte and length prefixes from the
// front of a block. buf must contain at least MaxPrefixLen bytes, or at
// least HeaderLen(flags.LargeLPS()) bytes if the caller already knows the
// LPS width from a previously-read flags byte.
func DecodeRecordHeader(flags Flags, buf []byte) (RecordHeader, error) {
	large := flags.LargeLPS()
	header := HeaderLen(large)
	if len(buf) < header {
		return RecordHeader{}, &ErrCorruptBlock{Reason: "buffer shorter than record header"}
	}

	var keyLen, valueLen int
	if large {
		keyLen = int(binary.BigEndian.Uint16(buf[1:3]))
		valueLen = int(binary.BigEndian.Uint32(buf[3:7]))
	} else {
		keyLen = int(buf[1])
		valueLen = int(binary.BigEndian.Uint16(buf[2:4]))
	}

	return RecordHeader{Large: large, HeaderLen: header, KeyLen: keyLen, ValueLen: valueLen}, nil
}

// Key returns the key slice within a fully-read block.
func Key(buf []byte, h RecordHeader) []byte {
	return buf[h.HeaderLen : h.HeaderLen+h.KeyLen]
}

// Value returns the value slice within a fully-read block.
func Value(buf []byte, h RecordHeader) []byte {
	start := h.HeaderLen + h.KeyLen
	return buf[start : start+h.ValueLen]
}

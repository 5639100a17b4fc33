package store

import "errors"

// ErrNotFound is returned by Get when the key has no live entry.
var ErrNotFound = errors.New("store: key not found")

// ErrInvalidKey is returned when a caller supplies an empty key. Go
// strings are always valid UTF-8 once constructed from a []byte with the
// standard conversion, so the only caller-observable invalid case here is
// emptiness.
var ErrInvalidKey = errors.New("store: invalid key")

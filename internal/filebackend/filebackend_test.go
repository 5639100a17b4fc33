package filebackend

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func tempPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), uuid.NewString()+".db")
}

func TestBackend_OpenMissingFileIsEmpty(t *testing.T) {
	b, err := Open(tempPath(t))
	require.NoError(t, err)
	defer b.Close()
	require.EqualValues(t, 0, b.EOF())
}

func TestBackend_AppendReadAt(t *testing.T) {
	b, err := Open(tempPath(t))
	require.NoError(t, err)
	defer b.Close()

	off, err := b.Append([]byte("hello"))
	require.NoError(t, err)
	require.EqualValues(t, 0, off)
	require.EqualValues(t, 5, b.EOF())

	off2, err := b.Append([]byte("world!"))
	require.NoError(t, err)
	require.EqualValues(t, 5, off2)
	require.EqualValues(t, 11, b.EOF())

	buf := make([]byte, 5)
	require.NoError(t, b.ReadAt(0, buf))
	require.Equal(t, "hello", string(buf))

	buf2 := make([]byte, 6)
	require.NoError(t, b.ReadAt(5, buf2))
	require.Equal(t, "world!", string(buf2))
}

func TestBackend_WriteAtInPlaceDoesNotMoveEOF(t *testing.T) {
	b, err := Open(tempPath(t))
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Append(make([]byte, 32))
	require.NoError(t, err)
	require.NoError(t, b.WriteAt(4, []byte("abcd")))
	require.EqualValues(t, 32, b.EOF())
}

func TestBackend_Truncate(t *testing.T) {
	b, err := Open(tempPath(t))
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Append([]byte("some bytes"))
	require.NoError(t, err)
	require.NoError(t, b.Truncate())
	require.EqualValues(t, 0, b.EOF())

	off, err := b.Append([]byte("x"))
	require.NoError(t, err)
	require.EqualValues(t, 0, off)
}

func TestBackend_ReopenPreservesLength(t *testing.T) {
	path := tempPath(t)
	b, err := Open(path)
	require.NoError(t, err)
	_, err = b.Append([]byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, b.Close())

	b2, err := Open(path)
	require.NoError(t, err)
	defer b2.Close()
	require.EqualValues(t, len("persisted"), b2.EOF())
}

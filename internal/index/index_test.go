package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkasperson/blockkv/internal/kvvalue"
)

func TestIndex_InsertionOrderIteration(t *testing.T) {
	ix := New()
	for _, k := range []string{"c", "a", "b", "z", "m"} {
		ix.Set(k, Entry{Offset: int64(len(k))})
	}

	require.Equal(t, []string{"c", "a", "b", "z", "m"}, ix.Keys())
	require.Equal(t, 5, ix.Size())
}

func TestIndex_UpdateKeepsPosition(t *testing.T) {
	ix := New()
	ix.Set("a", Entry{Offset: 1})
	ix.Set("b", Entry{Offset: 2})
	ix.Set("c", Entry{Offset: 3})
	ix.Set("b", Entry{Offset: 20})

	require.Equal(t, []string{"a", "b", "c"}, ix.Keys())
	e, ok := ix.Get("b")
	require.True(t, ok)
	require.EqualValues(t, 20, e.Offset)
}

func TestIndex_DeleteThenReinsertGoesToEnd(t *testing.T) {
	ix := New()
	ix.Set("a", Entry{})
	ix.Set("b", Entry{})
	ix.Set("c", Entry{})

	_, ok := ix.Delete("b")
	require.True(t, ok)
	require.False(t, ix.Has("b"))

	ix.Set("b", Entry{})
	require.Equal(t, []string{"a", "c", "b"}, ix.Keys())
}

// TestIndex_DeleteTwoChildNodeKeepsOtherKeysIntact exercises the case
// where the deleted key's tree node has two children, so the tree swaps
// content with its in-order predecessor instead of unlinking the node
// directly. Get must keep returning each surviving key's own entry, not
// whatever the swap happened to leave behind under that key's node.
func TestIndex_DeleteTwoChildNodeKeepsOtherKeysIntact(t *testing.T) {
	ix := New()
	keys := []string{"k0", "k1", "k2", "k3", "k4", "k5", "k6"}
	for i, k := range keys {
		ix.Set(k, Entry{Offset: int64(i)})
	}

	_, ok := ix.Delete("k1")
	require.True(t, ok)
	require.False(t, ix.Has("k1"))

	for i, k := range keys {
		if k == "k1" {
			continue
		}
		e, ok := ix.Get(k)
		require.True(t, ok, "key %s should still be present", k)
		require.EqualValues(t, i, e.Offset, "key %s returned the wrong entry after deleting k1", k)
	}
}

func TestIndex_DeleteIdempotent(t *testing.T) {
	ix := New()
	ix.Set("a", Entry{})
	_, ok := ix.Delete("a")
	require.True(t, ok)
	_, ok = ix.Delete("a")
	require.False(t, ok)
}

func TestIndex_ClearResetsSequence(t *testing.T) {
	ix := New()
	ix.Set("a", Entry{})
	ix.Set("b", Entry{})
	ix.Clear()
	require.Equal(t, 0, ix.Size())
	require.Empty(t, ix.Keys())

	ix.Set("z", Entry{})
	require.Equal(t, []string{"z"}, ix.Keys())
}

func TestIndex_EntriesCarryCachedValue(t *testing.T) {
	ix := New()
	ix.Set("a", Entry{Offset: 10, Size: 32, Cached: true, Value: kvvalue.String("hi")})

	entries := ix.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Key)
	require.Equal(t, "hi", entries[0].Entry.Value.AsString())
}

// TestIndex_LargeRandomOrderSurvivesTreeOperations exercises enough
// inserts/deletes to walk every rotation case in the underlying tree.
func TestIndex_LargeRandomOrderSurvivesTreeOperations(t *testing.T) {
	ix := New()
	var want []string
	for i := 0; i < 500; i++ {
		k := fmt.Sprintf("key-%d", i)
		ix.Set(k, Entry{Offset: int64(i)})
		want = append(want, k)
	}
	require.Equal(t, want, ix.Keys())

	// delete every third key, in order preserved for the rest
	var survivors []string
	for i, k := range want {
		if i%3 == 0 {
			_, ok := ix.Delete(k)
			require.True(t, ok)
			continue
		}
		survivors = append(survivors, k)
	}
	require.Equal(t, survivors, ix.Keys())
	require.Equal(t, len(survivors), ix.Size())
}

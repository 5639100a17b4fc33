package index

// Index is the authoritative in-memory map from key to index entry,
// iterated in insertion order. Not safe for concurrent use; the store
// serializes mutations through its gate and relies on the documented
// racy-read behavior for synchronous lookups (see store package).
type Index struct {
	byKey map[string]*node
	order tree
	next  uint64
}

// New returns an empty index.
func New() *Index {
	return &Index{byKey: make(map[string]*node)}
}

// Has reports whether key has a live entry.
func (ix *Index) Has(key string) bool {
	_, ok := ix.byKey[key]
	return ok
}

// Get returns the entry for key, if live.
func (ix *Index) Get(key string) (Entry, bool) {
	n, ok := ix.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return n.entry, true
}

// Set creates or updates key's entry. An update keeps the key's original
// position in iteration order; a fresh key is appended at the end.
func (ix *Index) Set(key string, entry Entry) {
	if n, ok := ix.byKey[key]; ok {
		n.entry = entry
		return
	}
	n := &node{seq: ix.next, key: key, entry: entry}
	ix.next++
	ix.order.insert(n)
	ix.byKey[key] = n
}

// Delete removes key's entry, returning it if it was present.
func (ix *Index) Delete(key string) (Entry, bool) {
	n, ok := ix.byKey[key]
	if !ok {
		return Entry{}, false
	}
	entry := n.entry
	delete(ix.byKey, key)
	if moved, movedKey := ix.order.remove(n); moved != nil {
		ix.byKey[movedKey] = moved
	}
	return entry, true
}

// Clear empties the index and resets the insertion sequence.
func (ix *Index) Clear() {
	ix.byKey = make(map[string]*node)
	ix.order.clear()
	ix.next = 0
}

// Size returns the number of live keys.
func (ix *Index) Size() int {
	return len(ix.byKey)
}

// Keys returns every live key in insertion order.
func (ix *Index) Keys() []string {
	keys := make([]string, 0, ix.Size())
	it := ix.Iterator()
	for it.Next() {
		keys = append(keys, it.Key())
	}
	return keys
}

// Entries returns every live (key, entry) pair in insertion order.
func (ix *Index) Entries() []KeyEntry {
	out := make([]KeyEntry, 0, ix.Size())
	it := ix.Iterator()
	for it.Next() {
		out = append(out, KeyEntry{Key: it.Key(), Entry: it.Entry()})
	}
	return out
}

// KeyEntry pairs a key with its index entry, returned by Entries.
type KeyEntry struct {
	Key   string
	Entry Entry
}

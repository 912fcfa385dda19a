package store

import "github.com/dragginzgame/icydb-go/key"

// IndexStore is one declared index's store, keyed by RawIndexKey and
// holding a RawIndexEntry (the set of primary keys sharing that key)
// as its value.
type IndexStore struct {
	ord *Ordered
}

func NewIndexStore() *IndexStore { return &IndexStore{ord: NewOrdered()} }

func (s *IndexStore) Get(k key.RawIndexKey) (key.RawIndexEntry, bool) {
	v, ok := s.ord.Get(k)
	if !ok {
		return nil, false
	}
	return key.RawIndexEntry(v), true
}

func (s *IndexStore) Put(k key.RawIndexKey, e key.RawIndexEntry) {
	s.ord.Set(k, e)
}

func (s *IndexStore) Delete(k key.RawIndexKey) {
	s.ord.Delete(k)
}

func (s *IndexStore) Len() int { return s.ord.Len() }

// Ascend walks index entries in IndexKey order starting at from (or the
// beginning, if nil): the access pattern behind IndexPrefix/IndexRange
// plans.
func (s *IndexStore) Ascend(from key.RawIndexKey, fn func(k key.RawIndexKey, e key.RawIndexEntry) bool) {
	s.ord.Ascend(from, func(k, v []byte) bool {
		return fn(key.RawIndexKey(k), key.RawIndexEntry(v))
	})
}

// Clear empties the store, the first half of a full rebuild.
func (s *IndexStore) Clear() { s.ord = NewOrdered() }

func (s *IndexStore) Snapshot() (keys, vals [][]byte) { return s.ord.Snapshot() }
func (s *IndexStore) Restore(keys, vals [][]byte)     { s.ord.Restore(keys, vals) }

package store

import "github.com/dragginzgame/icydb-go/key"

// DataStore is one entity's row store, keyed by RawDataKey.
type DataStore struct {
	ord *Ordered
}

func NewDataStore() *DataStore { return &DataStore{ord: NewOrdered()} }

func (s *DataStore) Get(k key.RawDataKey) (key.RawRow, bool) {
	v, ok := s.ord.Get(k)
	if !ok {
		return nil, false
	}
	return key.RawRow(v), true
}

func (s *DataStore) Put(k key.RawDataKey, row key.RawRow) (prev key.RawRow, existed bool) {
	old, had := s.ord.Set(k, row)
	if had {
		return key.RawRow(old), true
	}
	return nil, false
}

func (s *DataStore) Delete(k key.RawDataKey) (prev key.RawRow, existed bool) {
	old, had := s.ord.Delete(k)
	if had {
		return key.RawRow(old), true
	}
	return nil, false
}

func (s *DataStore) Len() int { return s.ord.Len() }

// Ascend walks rows in primary-key order starting at from (or the
// beginning, if nil), the data store's one access pattern besides
// point lookup.
func (s *DataStore) Ascend(from key.RawDataKey, fn func(k key.RawDataKey, row key.RawRow) bool) {
	s.ord.Ascend(from, func(k, v []byte) bool {
		return fn(key.RawDataKey(k), key.RawRow(v))
	})
}

func (s *DataStore) Snapshot() (keys, vals [][]byte) { return s.ord.Snapshot() }
func (s *DataStore) Restore(keys, vals [][]byte)     { s.ord.Restore(keys, vals) }

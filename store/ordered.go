// Package store implements the engine's storage primitives:
// byte-ordered in-memory maps backed by tidwall/btree, plus a host
// simulation layer  that snapshots those maps through afero so
// tests can exercise crash-recovery across a simulated process restart.
package store

import (
	"bytes"

	"github.com/tidwall/btree"
)

type entry struct {
	key []byte
	val []byte
}

func entryLess(a, b entry) bool { return bytes.Compare(a.key, b.key) < 0 }

// Ordered is a byte-key, byte-value ordered map: the engine's one
// storage primitive, reused for the data store and the index store (the
// commit marker lives in a separate one-slot CommitSlot). Every entity,
// and every index, owns
// its own Ordered instance so per-entity/per-index iteration never
// crosses unrelated keys.
type Ordered struct {
	t *btree.BTreeG[entry]
}

// NewOrdered builds an empty ordered map.
func NewOrdered() *Ordered {
	return &Ordered{t: btree.NewBTreeG(entryLess)}
}

// Get returns the value stored under key, if present.
func (o *Ordered) Get(key []byte) ([]byte, bool) {
	e, ok := o.t.Get(entry{key: key})
	if !ok {
		return nil, false
	}
	return e.val, true
}

// Set inserts or overwrites key's value, returning the previous value
// if one existed.
func (o *Ordered) Set(key, val []byte) (prev []byte, existed bool) {
	old, had := o.t.Set(entry{key: append([]byte(nil), key...), val: append([]byte(nil), val...)})
	if had {
		return old.val, true
	}
	return nil, false
}

// Delete removes key, returning the value that was removed.
func (o *Ordered) Delete(key []byte) (prev []byte, existed bool) {
	old, had := o.t.Delete(entry{key: key})
	if had {
		return old.val, true
	}
	return nil, false
}

// Len reports the number of entries.
func (o *Ordered) Len() int { return o.t.Len() }

// Ascend iterates entries with key >= from (or from the start, if from
// is nil) in ascending order until fn returns false.
func (o *Ordered) Ascend(from []byte, fn func(key, val []byte) bool) {
	walk := func(e entry) bool { return fn(e.key, e.val) }
	if from == nil {
		o.t.Scan(walk)
		return
	}
	o.t.Ascend(entry{key: from}, walk)
}

// Snapshot copies every entry into a fresh slice pair, used by the host
// simulation layer to serialize a store's contents.
func (o *Ordered) Snapshot() (keys, vals [][]byte) {
	o.t.Scan(func(e entry) bool {
		keys = append(keys, append([]byte(nil), e.key...))
		vals = append(vals, append([]byte(nil), e.val...))
		return true
	})
	return keys, vals
}

// Restore replaces the map's contents with the given key/value pairs,
// used when the host simulation layer replays a snapshot after a
// simulated restart.
func (o *Ordered) Restore(keys, vals [][]byte) {
	o.t = btree.NewBTreeG(entryLess)
	for i := range keys {
		o.Set(keys[i], vals[i])
	}
}

package index

import (
	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/store"
)

// Stores maps an index name to its backing IndexStore: every declared
// index owns its own ordered map.
type Stores map[string]*store.IndexStore

// Preflight checks every delta's After IndexKey against a unique
// index's "at most one PK" invariant, without mutating any store —
// conflicts must surface before the commit marker is even written. A conflict against
// the row's own current PK (an update that doesn't actually change the
// index key) is not a conflict.
func Preflight(deltas []Delta, stores Stores, pk key.RawDataKey) error {
	for _, d := range deltas {
		if !d.Index.Unique || d.After == nil {
			continue
		}
		if d.Case() == CaseUnchanged {
			continue
		}
		s, ok := stores[d.Index.Name]
		if !ok {
			return icyerr.Invariant(icyerr.OriginIndex, "no store for index %s", d.Index.Name)
		}
		raw, found := s.Get(d.After.Encode())
		if !found {
			continue
		}
		entry, err := key.DecodeIndexEntry(raw)
		if err != nil {
			return err
		}
		for _, existing := range entry.PKs() {
			if string(existing) != string(pk) {
				return icyerr.ConflictErr(icyerr.OriginIndex, "UniqueIndexViolation{index=%s}", d.Index.Name)
			}
		}
	}
	return nil
}

// Apply mutates every index store per delta.
// Preflight must have already succeeded for this pk; a unique-index
// conflict detected here instead is an InvariantViolation, since it
// means Preflight's check and Apply's view of the stores diverged.
func Apply(deltas []Delta, stores Stores, pk key.RawDataKey) error {
	for _, d := range deltas {
		s, ok := stores[d.Index.Name]
		if !ok {
			return icyerr.Invariant(icyerr.OriginIndex, "no store for index %s", d.Index.Name)
		}
		switch d.Case() {
		case CaseUnchanged:
			continue
		case CaseInsertOnly:
			if err := addPK(s, *d.After, pk, d.Index.Unique); err != nil {
				return err
			}
		case CaseDeleteOnly:
			removePK(s, *d.Before, pk)
		case CaseKeyChanged:
			removePK(s, *d.Before, pk)
			if err := addPK(s, *d.After, pk, d.Index.Unique); err != nil {
				return err
			}
		}
	}
	return nil
}

func addPK(s *store.IndexStore, k key.IndexKey, pk key.RawDataKey, unique bool) error {
	raw := k.Encode()
	var entry key.IndexEntry
	if existing, ok := s.Get(raw); ok {
		decoded, err := key.DecodeIndexEntry(existing)
		if err != nil {
			return err
		}
		entry = decoded
	}
	if unique && entry.Len() > 0 {
		for _, existing := range entry.PKs() {
			if string(existing) != string(pk) {
				return icyerr.Invariant(icyerr.OriginIndex, "unique index conflict survived preflight")
			}
		}
	}
	entry.Add(pk)
	s.Put(raw, entry.Encode())
	return nil
}

func removePK(s *store.IndexStore, k key.IndexKey, pk key.RawDataKey) {
	raw := k.Encode()
	existing, ok := s.Get(raw)
	if !ok {
		return
	}
	entry, err := key.DecodeIndexEntry(existing)
	if err != nil {
		return
	}
	if entry.Remove(pk) {
		s.Delete(raw)
	} else {
		s.Put(raw, entry.Encode())
	}
}

package index

import (
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/schema"
)

// Mismatch describes one row whose current field values don't match
// where it's actually filed in an index's store.
type Mismatch struct {
	PK       key.RawDataKey
	Index    string
	Expected key.IndexKey
	Found    bool
}

// Verify recomputes the expected IndexKey for every row src yields and
// checks that the index's store actually files that row's PK under it.
// It never mutates the store; callers that find mismatches call Rebuild.
func Verify(model *schema.EntityModel, ix schema.IndexModel, s Stores, src RowSource) ([]Mismatch, error) {
	store, ok := s[ix.Name]
	if !ok {
		return nil, nil
	}
	var mismatches []Mismatch
	var outerErr error
	src(func(pk key.RawDataKey, row Row) bool {
		k, ok, err := indexKeyFor(model.Name, ix, row)
		if err != nil {
			outerErr = err
			return false
		}
		if !ok {
			return true
		}
		raw, found := store.Get(k.Encode())
		if !found {
			mismatches = append(mismatches, Mismatch{PK: pk, Index: ix.Name, Expected: k, Found: false})
			return true
		}
		entry, err := key.DecodeIndexEntry(raw)
		if err != nil {
			outerErr = err
			return false
		}
		present := false
		for _, existing := range entry.PKs() {
			if string(existing) == string(pk) {
				present = true
				break
			}
		}
		if !present {
			mismatches = append(mismatches, Mismatch{PK: pk, Index: ix.Name, Expected: k, Found: false})
		}
		return true
	})
	return mismatches, outerErr
}

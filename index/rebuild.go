package index

import (
	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/schema"
)

// RowSource enumerates every row of an entity's data store, decoded into
// an index.Row view: a full rebuild needs every current row, not just
// one row op's before/after.
type RowSource func(yield func(pk key.RawDataKey, row Row) bool)

// Rebuild clears ix's store and rescans every row from src, rebuilding
// it from nothing. Used after an index is newly declared
// against existing data, or to repair a store suspected of drifting
// from the data it indexes.
func Rebuild(model *schema.EntityModel, ix schema.IndexModel, s Stores, src RowSource) error {
	store, ok := s[ix.Name]
	if !ok {
		return icyerr.Invariant(icyerr.OriginIndex, "no store for index %s", ix.Name)
	}
	store.Clear()

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
		if err := addPK(store, k, pk, ix.Unique); err != nil {
			outerErr = err
			return false
		}
		return true
	})
	return outerErr
}

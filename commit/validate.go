package commit

import "github.com/dragginzgame/icydb-go/icyerr"

// MaxRowOpsPerCommit bounds how many rows a single commit marker may
// touch, keeping one marker's replay cost bounded regardless of how a
// caller batches its mutation.
const MaxRowOpsPerCommit = 10_000

// Validate checks a decoded marker's structural shape, deliberately kept
// separate from Decode: a marker can be syntactically well-formed CBOR and still
// violate an invariant the engine relies on, and callers that only need
// to inspect a marker's shape (e.g. debug tooling) should be able to
// decode without also paying for semantic validation.
func Validate(m Marker) error {
	if len(m.RowOps) == 0 {
		return icyerr.Invariant(icyerr.OriginStore, "commit marker has no row ops")
	}
	if len(m.RowOps) > MaxRowOpsPerCommit {
		return icyerr.UnsupportedErr(icyerr.OriginStore, "CommitTooLarge{ops=%d,max=%d}", len(m.RowOps), MaxRowOpsPerCommit)
	}
	for i, op := range m.RowOps {
		if op.EntityPath == "" {
			return icyerr.Corrupt(icyerr.OriginStore, "row op %d missing entity path", i)
		}
		if len(op.Key) == 0 {
			return icyerr.Corrupt(icyerr.OriginStore, "row op %d missing key", i)
		}
		if op.Before == nil && op.After == nil {
			return icyerr.Invariant(icyerr.OriginStore, "row op %d is a no-op (both before and after nil)", i)
		}
	}
	return nil
}

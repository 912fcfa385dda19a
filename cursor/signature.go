// Package cursor implements the continuation-cursor protocol: a
// versioned wire token binding a plan's shape, an ordered
// boundary to resume after, and the validation/advancement rules that
// make a cursor unusable against any plan but the one it was issued for.
package cursor

import (
	"crypto/sha256"

	"github.com/dragginzgame/icydb-go/plan"
)

// Signature binds one cursor to the exact plan shape it was issued
// against: a plan fingerprint plus whether the query groups
// rows (Distinct), since a grouped cursor has a stricter advancement
// rule (ascending only) than an ungrouped one.
type Signature [32]byte

// SignatureOf derives the Signature a cursor issued for lp must carry.
func SignatureOf(lp plan.LogicalPlan) Signature {
	fp := plan.Of(lp)
	h := sha256.New()
	h.Write(fp[:])
	if lp.Distinct {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	var out Signature
	copy(out[:], h.Sum(nil))
	return out
}

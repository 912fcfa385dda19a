package plan

import (
	"bytes"
	"crypto/sha256"

	"github.com/dragginzgame/icydb-go/predicate"
)

// Fingerprint is the 32-byte plan-cache key:
// a SHA-256 hash of everything that determines which AccessPlan Choose
// would pick for a LogicalPlan, so two equivalent queries (same entity,
// same normalized predicate, same ordering/pagination shape) always hit
// the same cache entry. The predicate's literal operands are part of
// the hash, since the cached access carries them (a ByKey key, an index
// prefix).
type Fingerprint [32]byte

// Of computes the Fingerprint of a validated LogicalPlan.
func Of(lp LogicalPlan) Fingerprint {
	var buf bytes.Buffer
	buf.WriteString(lp.Model.Path)
	buf.WriteByte(0)
	predFP := predicate.Fingerprint(lp.Predicate)
	buf.Write(predFP[:])
	for _, t := range lp.OrderBy {
		buf.WriteString(t.Field)
		buf.WriteByte(byte(t.Direction))
	}
	writeBool(&buf, lp.Limit != nil)
	writeBool(&buf, lp.Offset != 0)
	writeBool(&buf, lp.Distinct)
	writeBool(&buf, lp.DeleteLimit != nil)
	if lp.Aggregate != nil {
		buf.WriteByte(byte(lp.Aggregate.Kind))
		buf.WriteString(lp.Aggregate.Field)
	}

	return Fingerprint(sha256.Sum256(buf.Bytes()))
}

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

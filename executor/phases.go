package executor

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/dragginzgame/icydb-go/cursor"
	"github.com/dragginzgame/icydb-go/plan"
	"github.com/dragginzgame/icydb-go/predicate"
	"github.com/dragginzgame/icydb-go/value"
)

// Row pairs a decoded row with the primary key it was filed under, the
// unit every post-access phase below operates on.
type Row struct {
	PK     []byte
	Fields Fields
}

// Filter drops every row that doesn't satisfy p, preserving order.
func Filter(rows []Row, p predicate.Predicate) ([]Row, error) {
	var out []Row
	for _, r := range rows {
		ok, err := Eval(p, r.Fields)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Order sorts rows by a LogicalPlan's OrderBy terms. Callers on the
// PK-ordered fast path (OrderBy is exactly [primary key] ascending, and
// the stream already came back in PK order) can skip calling this
// entirely.
func Order(rows []Row, terms []plan.OrderTerm) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, t := range terms {
			a, aok := rows[i].Fields[t.Field]
			b, bok := rows[j].Fields[t.Field]
			if !aok || !bok {
				continue
			}
			c := value.Compare(a, b)
			if t.Direction == plan.Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// groupKey is the hashable projection of a row used by the distinct
// phase: an xxhash digest of its field bytes, with the raw encoded
// components retained so a hash collision is broken by an exact
// comparison rather than silently dropping a distinct row.
type groupKey struct {
	hash  uint64
	parts [][]byte
}

func newGroupKey(row Row, fields []string) (groupKey, error) {
	h := xxhash.New()
	parts := make([][]byte, 0, len(fields))
	for _, f := range fields {
		v, ok := row.Fields[f]
		var enc []byte
		if ok {
			e, err := value.EncodeComponent(v)
			if err != nil {
				return groupKey{}, err
			}
			enc = e
		}
		parts = append(parts, enc)
		_, _ = h.Write(enc)
		_, _ = h.Write([]byte{0})
	}
	return groupKey{hash: h.Sum64(), parts: parts}, nil
}

func (k groupKey) equal(o groupKey) bool {
	if len(k.parts) != len(o.parts) {
		return false
	}
	for i := range k.parts {
		if string(k.parts[i]) != string(o.parts[i]) {
			return false
		}
	}
	return true
}

// Distinct removes rows whose projection onto distinctFields repeats an
// earlier row's, keeping the first occurrence. distinctFields is the
// query's OrderBy field list: this engine only supports DISTINCT ON the
// declared ordering, so a grouped cursor's boundary stays meaningful
// across pages.
func Distinct(rows []Row, distinctFields []string) ([]Row, error) {
	seen := map[uint64][]groupKey{}
	var out []Row
	for _, r := range rows {
		k, err := newGroupKey(r, distinctFields)
		if err != nil {
			return nil, err
		}
		dup := false
		for _, existing := range seen[k.hash] {
			if existing.equal(k) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[k.hash] = append(seen[k.hash], k)
		out = append(out, r)
	}
	return out, nil
}

// SkipPastBoundary drops every row that does not sort strictly past the
// boundary under terms, the keyset-pagination resume step. rows must
// already be in the plan's declared order. This compares values rather
// than matching the anchor row by identity, so it tolerates the anchor
// having been deleted between page fetches: rows are still skipped by
// where they fall relative to the boundary, not by finding an exact
// match.
func SkipPastBoundary(rows []Row, b cursor.Boundary, terms []plan.OrderTerm) []Row {
	if b.Empty() {
		return rows
	}
	for i, r := range rows {
		if boundaryAdvanced(r, b, terms) {
			return rows[i:]
		}
	}
	return nil
}

// boundaryAdvanced reports whether r sorts strictly past b under terms:
// direction==Ascending keeps rows greater than the boundary slot,
// direction==Descending keeps rows less than it, compared slot by slot
// in declared order with the first non-equal slot deciding.
func boundaryAdvanced(r Row, b cursor.Boundary, terms []plan.OrderTerm) bool {
	n := len(b.Slots)
	if len(terms) < n {
		n = len(terms)
	}
	for i := 0; i < n; i++ {
		slot := b.Slots[i]
		term := terms[i]
		v, ok := r.Fields[slot.Field]
		if !ok {
			return true
		}
		c := value.Compare(v, slot.Value)
		if term.Direction == plan.Descending {
			c = -c
		}
		if c != 0 {
			return c > 0
		}
	}
	return false
}

// Paginate applies offset then limit, the last phase before a result
// page is handed back to the caller.
func Paginate(rows []Row, offset int, limit *int) []Row {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit != nil && *limit < len(rows) {
		rows = rows[:*limit]
	}
	return rows
}

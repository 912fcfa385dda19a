package plan

import (
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/predicate"
	"github.com/dragginzgame/icydb-go/schema"
	"github.com/dragginzgame/icydb-go/value"
)

// AccessKind enumerates the physical access strategies the executor can
// drive over a store.
type AccessKind uint8

const (
	AccessByKey AccessKind = iota
	AccessByKeys
	AccessKeyRange
	AccessIndexPrefix
	AccessIndexRange
	AccessFullScan
	AccessUnion
	AccessIntersection
)

// Access is one node of an AccessPlan tree. Exactly the fields relevant
// to Kind are populated, mirroring the tagged-struct pattern used
// elsewhere (value.Value, predicate.Predicate).
type Access struct {
	Kind     AccessKind
	Key      value.Value   // ByKey
	Keys     []value.Value // ByKeys
	Low, High *value.Value // KeyRange/IndexRange: nil means unbounded
	LowIncl, HighIncl bool
	IndexName string        // IndexPrefix/IndexRange: the declared index's name, used to look up its store
	IndexId   key.IndexId   // IndexPrefix/IndexRange: derived id, used to build the physical index key
	Prefix    []value.Value // IndexPrefix: leading index field values
	Children  []Access      // Union/Intersection
}

// Choose picks an access plan for a validated LogicalPlan, preferring
// point/range access over a full scan whenever the predicate pins the
// primary key or a declared index.
// This is deliberately conservative: anything the predicate shape
// doesn't obviously support narrows to, it falls back to FullScan and
// lets the post-access filter phase do the rest.
func Choose(lp LogicalPlan) Access {
	if a, ok := choosePK(lp); ok {
		return Canonicalize(a)
	}
	if a, ok := chooseIndex(lp); ok {
		return Canonicalize(a)
	}
	return Access{Kind: AccessFullScan}
}

func choosePK(lp LogicalPlan) (Access, bool) {
	if eq, ok := equalityOn(lp.Predicate, lp.Model.PrimaryKey); ok {
		return Access{Kind: AccessByKey, Key: eq}, true
	}
	if vals, ok := membershipOn(lp.Predicate, lp.Model.PrimaryKey); ok {
		return Access{Kind: AccessByKeys, Keys: vals}, true
	}
	return Access{}, false
}

func chooseIndex(lp LogicalPlan) (Access, bool) {
	for _, ix := range lp.Model.Indexes {
		prefix := make([]value.Value, 0, len(ix.Fields))
		matched := len(ix.Fields)
		var membership []value.Value
		for i, f := range ix.Fields {
			if eq, ok := equalityOn(lp.Predicate, f); ok {
				prefix = append(prefix, eq)
				continue
			}
			if vals, ok := membershipOn(lp.Predicate, f); ok {
				membership = vals
				matched = i + 1
			}
			break
		}
		if len(prefix) == 0 && membership == nil {
			continue
		}
		id := key.DeriveIndexId(lp.Model.Name, ix.Fields)
		if membership != nil {
			return indexMembershipAccess(ix, id, prefix, membership, matched == len(ix.Fields)), true
		}
		if len(prefix) == len(ix.Fields) {
			return Access{Kind: AccessIndexPrefix, IndexName: ix.Name, IndexId: id, Prefix: prefix}, true
		}
		return Access{Kind: AccessIndexRange, IndexName: ix.Name, IndexId: id, Prefix: prefix}, true
	}
	return Access{}, false
}

// indexMembershipAccess builds a union of one index access per value an
// In predicate names on the first unmatched index field, each access
// extending the equality prefix already pinned by leading fields.
func indexMembershipAccess(ix schema.IndexModel, id key.IndexId, prefix, membership []value.Value, full bool) Access {
	kind := AccessIndexRange
	if full {
		kind = AccessIndexPrefix
	}
	children := make([]Access, len(membership))
	for i, v := range membership {
		p := make([]value.Value, 0, len(prefix)+1)
		p = append(p, prefix...)
		p = append(p, v)
		children[i] = Access{Kind: kind, IndexName: ix.Name, IndexId: id, Prefix: p}
	}
	return Access{Kind: AccessUnion, Children: children}
}

// equalityOn looks for a top-level Eq comparison on field within an
// And-rooted (or single-node) normalized predicate. It does not search
// beneath Or or Not: only a conjunction of equalities pins an index or
// primary-key access path unambiguously.
func equalityOn(p predicate.Predicate, field string) (value.Value, bool) {
	switch p.Kind {
	case predicate.KindCompare:
		if p.Op == predicate.OpEq && p.Field == field {
			return p.Operand, true
		}
		return value.Value{}, false
	case predicate.KindAnd:
		for _, c := range p.Children {
			if v, ok := equalityOn(c, field); ok {
				return v, true
			}
		}
		return value.Value{}, false
	default:
		return value.Value{}, false
	}
}

// membershipOn looks for a top-level In comparison on field, the same
// way equalityOn looks for Eq: at the predicate root or directly under
// an And. NotIn normalizes to Not(In) and is deliberately not unwrapped
// here, since "not one of a set" doesn't narrow an ordered access path.
func membershipOn(p predicate.Predicate, field string) ([]value.Value, bool) {
	switch p.Kind {
	case predicate.KindCompare:
		if p.Op == predicate.OpIn && p.Field == field {
			if vals, ok := p.Operand.AsList(); ok {
				return vals, true
			}
		}
		return nil, false
	case predicate.KindAnd:
		for _, c := range p.Children {
			if v, ok := membershipOn(c, field); ok {
				return v, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// Canonicalize flattens nested Union/Intersection nodes of the same kind
// into one flat list, the AccessPlan-level analogue of predicate
// normalization.
func Canonicalize(a Access) Access {
	switch a.Kind {
	case AccessUnion, AccessIntersection:
		var flat []Access
		for _, c := range a.Children {
			c = Canonicalize(c)
			if c.Kind == a.Kind {
				flat = append(flat, c.Children...)
			} else {
				flat = append(flat, c)
			}
		}
		if len(flat) == 1 {
			return flat[0]
		}
		return Access{Kind: a.Kind, Children: flat}
	default:
		return a
	}
}

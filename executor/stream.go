package executor

import (
	"bytes"
	"sort"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/plan"
	"github.com/dragginzgame/icydb-go/store"
	"github.com/dragginzgame/icydb-go/value"
)

// encodeComponent turns an access plan's literal key value into the same
// byte encoding the data store keys on, so a resolved RawDataKey can be
// looked up or range-compared directly against store entries.
func encodeComponent(v value.Value) ([]byte, error) {
	return value.EncodeComponent(v)
}

// Stream is the materialized candidate key stream an Access resolves
// to, plus the stat bits the fast-path phases below use to skip work a
// full generic path would otherwise repeat.
type Stream struct {
	Keys []key.RawDataKey
	// PKOrdered reports whether Keys is already in ascending primary-key
	// order, letting the order phase skip a full sort when the query's
	// OrderBy is exactly [primary key].
	PKOrdered bool
	// ExactCount, when non-negative, is an exact count of Keys without
	// needing to decode a single row — the fast-path count pushdown for
	// a COUNT with a trivially true predicate, over any access kind.
	ExactCount int
}

// Resolve walks an Access plan and materializes its candidate primary
// keys; this engine is in-memory, so there is no benefit to a lazy
// iterator over what's already resident.
func Resolve(a plan.Access, ds *store.DataStore, ixs map[string]*store.IndexStore) (Stream, error) {
	switch a.Kind {
	case plan.AccessByKey:
		enc, err := encodeComponent(a.Key)
		if err != nil {
			return Stream{}, err
		}
		if _, ok := ds.Get(key.RawDataKey(enc)); !ok {
			return Stream{PKOrdered: true, ExactCount: 0}, nil
		}
		return Stream{Keys: []key.RawDataKey{key.RawDataKey(enc)}, PKOrdered: true, ExactCount: 1}, nil

	case plan.AccessByKeys:
		var keys []key.RawDataKey
		for _, v := range a.Keys {
			enc, err := encodeComponent(v)
			if err != nil {
				return Stream{}, err
			}
			if _, ok := ds.Get(key.RawDataKey(enc)); ok {
				keys = append(keys, key.RawDataKey(enc))
			}
		}
		sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
		return Stream{Keys: keys, PKOrdered: true, ExactCount: len(keys)}, nil

	case plan.AccessKeyRange:
		var from []byte
		if a.Low != nil {
			enc, err := encodeComponent(*a.Low)
			if err != nil {
				return Stream{}, err
			}
			from = enc
		}
		var keys []key.RawDataKey
		ds.Ascend(from, func(k key.RawDataKey, _ key.RawRow) bool {
			if a.High != nil {
				enc, err := encodeComponent(*a.High)
				if err == nil {
					c := bytes.Compare(k, enc)
					if c > 0 || (c == 0 && !a.HighIncl) {
						return false
					}
				}
			}
			if a.Low != nil && !a.LowIncl && bytes.Equal(k, from) {
				return true
			}
			keys = append(keys, k)
			return true
		})
		return Stream{Keys: keys, PKOrdered: true, ExactCount: len(keys)}, nil

	case plan.AccessFullScan:
		var keys []key.RawDataKey
		ds.Ascend(nil, func(k key.RawDataKey, _ key.RawRow) bool {
			keys = append(keys, k)
			return true
		})
		return Stream{Keys: keys, PKOrdered: true, ExactCount: len(keys)}, nil

	case plan.AccessIndexPrefix, plan.AccessIndexRange:
		return resolveIndex(a, ixs)

	case plan.AccessUnion:
		return resolveSetOp(a, ds, ixs, union)

	case plan.AccessIntersection:
		return resolveSetOp(a, ds, ixs, intersect)

	default:
		return Stream{}, icyerr.Invariant(icyerr.OriginExecutor, "unknown access kind %d", a.Kind)
	}
}

func resolveIndex(a plan.Access, ixs map[string]*store.IndexStore) (Stream, error) {
	s, ok := ixs[a.IndexName]
	if !ok {
		return Stream{}, icyerr.Invariant(icyerr.OriginExecutor, "no store for index %s", a.IndexName)
	}

	var keys []key.RawDataKey
	// Stored keys carry the index's full component count, which the
	// encoding of a shorter prefix does not, so the scan starts at the
	// index id and the prefix components are matched after the count byte.
	var idBytes, prefixBytes []byte
	if len(a.Prefix) > 0 {
		ixKey, err := key.NewIndexKey(a.IndexId, a.Prefix)
		if err != nil {
			return Stream{}, err
		}
		enc := ixKey.Encode()
		idBytes, prefixBytes = enc[:key.KeyPrefix-1], enc[key.KeyPrefix:]
	}
	s.Ascend(key.RawIndexKey(idBytes), func(k key.RawIndexKey, e key.RawIndexEntry) bool {
		if idBytes != nil && !bytes.HasPrefix(k, idBytes) {
			return false
		}
		if len(k) < key.KeyPrefix || !bytes.HasPrefix(k[key.KeyPrefix:], prefixBytes) {
			return true
		}
		entry, err := key.DecodeIndexEntry(e)
		if err != nil {
			return true
		}
		keys = append(keys, entry.PKs()...)
		return true
	})
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return Stream{Keys: keys, PKOrdered: true, ExactCount: len(keys)}, nil
}

func union(a, b []key.RawDataKey) []key.RawDataKey {
	seen := map[string]bool{}
	var out []key.RawDataKey
	for _, k := range append(append([]key.RawDataKey{}, a...), b...) {
		if !seen[string(k)] {
			seen[string(k)] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}

func intersect(a, b []key.RawDataKey) []key.RawDataKey {
	inB := map[string]bool{}
	for _, k := range b {
		inB[string(k)] = true
	}
	var out []key.RawDataKey
	for _, k := range a {
		if inB[string(k)] {
			out = append(out, k)
		}
	}
	return out
}

func resolveSetOp(a plan.Access, ds *store.DataStore, ixs map[string]*store.IndexStore, combine func(a, b []key.RawDataKey) []key.RawDataKey) (Stream, error) {
	if len(a.Children) == 0 {
		return Stream{}, nil
	}
	acc, err := Resolve(a.Children[0], ds, ixs)
	if err != nil {
		return Stream{}, err
	}
	keys := acc.Keys
	for _, c := range a.Children[1:] {
		next, err := Resolve(c, ds, ixs)
		if err != nil {
			return Stream{}, err
		}
		keys = combine(keys, next.Keys)
	}
	return Stream{Keys: keys, PKOrdered: true, ExactCount: len(keys)}, nil
}

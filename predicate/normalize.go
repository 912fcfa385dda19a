package predicate

import (
	"bytes"
	"sort"

	"github.com/dragginzgame/icydb-go/value"
)

// Normalize rewrites a predicate into one canonical shape so that two
// predicates with identical meaning always normalize to identical trees
//: nested And/Or are flattened, True/False are
// constant-folded out of And/Or, double negation collapses, Ne rewrites
// to Not(Eq), and And/Or operands sort into a fixed order. Plan
// fingerprinting and plan-cache keying both depend on this.
func Normalize(p Predicate) Predicate {
	switch p.Kind {
	case KindNot:
		child := Normalize(p.Children[0])
		if child.Kind == KindNot {
			return child.Children[0] // Not(Not(x)) -> x
		}
		return Predicate{Kind: KindNot, Children: []Predicate{child}}
	case KindAnd:
		return normalizeAssoc(p, KindAnd, KindTrue, KindFalse)
	case KindOr:
		return normalizeAssoc(p, KindOr, KindFalse, KindTrue)
	case KindCompare:
		if p.Op == OpNe {
			return Predicate{Kind: KindNot, Children: []Predicate{
				{Kind: KindCompare, Field: p.Field, Op: OpEq, Operand: p.Operand, CI: p.CI},
			}}
		}
		if p.Op == OpNotIn {
			return Predicate{Kind: KindNot, Children: []Predicate{
				{Kind: KindCompare, Field: p.Field, Op: OpIn, Operand: p.Operand, CI: p.CI},
			}}
		}
		return p
	default:
		return p
	}
}

// normalizeAssoc flattens nested nodes of `kind`, drops `identity` leaves
// (True inside And, False inside Or), and short-circuits to `absorb` if
// any child is that absorbing element (False inside And, True inside Or).
func normalizeAssoc(p Predicate, kind, identity, absorb Kind) Predicate {
	var flat []Predicate
	var flatten func(Predicate)
	flatten = func(c Predicate) {
		c = Normalize(c)
		if c.Kind == kind {
			for _, gc := range c.Children {
				flatten(gc)
			}
			return
		}
		flat = append(flat, c)
	}
	for _, c := range p.Children {
		flatten(c)
	}

	out := flat[:0:0]
	for _, c := range flat {
		if c.Kind == absorb {
			return Predicate{Kind: absorb}
		}
		if c.Kind == identity {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return Predicate{Kind: identity}
	}
	if len(out) == 1 {
		return out[0]
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(canonicalBytes(out[i]), canonicalBytes(out[j])) < 0 })
	return Predicate{Kind: kind, Children: out}
}

// canonicalBytes produces a deterministic byte representation of a
// predicate tree, used both to sort And/Or operands into canonical order
// and as the fingerprint preimage (see fingerprint.go).
func canonicalBytes(p Predicate) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, p)
	return buf.Bytes()
}

func writeCanonical(buf *bytes.Buffer, p Predicate) {
	buf.WriteByte(byte(p.Kind))
	switch p.Kind {
	case KindAnd, KindOr:
		buf.WriteByte(byte(len(p.Children)))
		for _, c := range p.Children {
			writeCanonical(buf, c)
		}
	case KindNot:
		writeCanonical(buf, p.Children[0])
	case KindCompare:
		buf.WriteString(p.Field)
		buf.WriteByte(0)
		buf.WriteByte(byte(p.Op))
		writeCI(buf, p.CI)
		writeOperand(buf, p.Operand)
	case KindIsNull, KindIsMissing, KindIsEmpty, KindIsNotEmpty:
		buf.WriteString(p.Field)
	case KindTextContains:
		buf.WriteString(p.Field)
		buf.WriteByte(0)
		writeCI(buf, p.CI)
		s, _ := p.Operand.AsText()
		buf.WriteString(s)
	}
}

func writeCI(buf *bytes.Buffer, ci bool) {
	if ci {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

// writeOperand encodes a single literal directly; a List operand (In/
// NotIn) is encoded element by element so two predicates over different
// membership sets never collide in the canonical byte stream.
func writeOperand(buf *bytes.Buffer, v value.Value) {
	if elems, ok := v.AsList(); ok {
		buf.WriteByte(byte(value.KindList))
		buf.WriteByte(byte(len(elems)))
		encoded := make([][]byte, len(elems))
		for i, e := range elems {
			var eb bytes.Buffer
			writeOperand(&eb, e)
			encoded[i] = eb.Bytes()
		}
		// In/NotIn test set membership, so two operand lists with the
		// same elements in different orders must fingerprint identically.
		sort.Slice(encoded, func(i, j int) bool { return bytes.Compare(encoded[i], encoded[j]) < 0 })
		for _, eb := range encoded {
			buf.Write(eb)
		}
		return
	}
	enc, err := value.EncodeComponent(v)
	if err == nil {
		buf.WriteByte(byte(v.Kind()))
		buf.Write(enc)
	} else {
		buf.WriteByte(byte(v.Kind()))
	}
}

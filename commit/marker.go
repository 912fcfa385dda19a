// Package commit implements the crash-safe multi-row mutation protocol
//: a single commit marker, durably written before any row is
// touched and cleared only once every row op has been applied, so a
// crash mid-mutation is always recoverable by replaying the marker's
// row ops idempotently.
package commit

import (
	"bytes"

	"github.com/google/uuid"
	"github.com/ugorji/go/codec"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/key"
)

// MaxMarkerBytes bounds the wire-encoded marker: generous
// enough for a large batched mutation, small enough that a single
// commit marker can never itself blow past a stable-memory page budget.
const MaxMarkerBytes = 16 * 1024 * 1024

// RowOp is one row's before/after state within a commit.
// Before == nil means the op is an insert; After == nil means a delete;
// both set means an update. Before and After are the schema
// collaborator's opaque row bytes, exactly as they will land in (or are
// currently sitting in) the entity's data store.
type RowOp struct {
	EntityPath string
	Key        key.RawDataKey
	Before     key.RawRow // nil if this op inserts
	After      key.RawRow // nil if this op deletes
}

func (op RowOp) IsInsert() bool { return op.Before == nil && op.After != nil }
func (op RowOp) IsDelete() bool { return op.Before != nil && op.After == nil }
func (op RowOp) IsUpdate() bool { return op.Before != nil && op.After != nil }

// Marker is the durable record of one in-flight multi-row mutation
//. Applying every RowOp in order, using the
// absolute Before/After values rather than deltas, is what makes replay
// idempotent: re-applying an already-applied op just writes the same
// After bytes again.
type Marker struct {
	ID     [16]byte
	RowOps []RowOp
}

// NewMarker mints a fresh marker with a random 16-byte id; google/uuid's
// random v4 satisfies that shape without pulling in a dedicated ULID
// generator.
func NewMarker(ops []RowOp) Marker {
	id := uuid.New()
	var raw [16]byte
	copy(raw[:], id[:])
	return Marker{ID: raw, RowOps: ops}
}

// wireRowOp and wireMarker are the ugorji/go/codec projections of RowOp
// and Marker: plain exported-field structs so the CBOR handle can encode
// them with canonical field ordering.
type wireRowOp struct {
	EntityPath string
	Key        []byte
	Before     []byte
	After      []byte
}

type wireMarker struct {
	ID     []byte
	RowOps []wireRowOp
}

func cborHandle() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.Canonical = true
	// ErrorIfNoField rejects wire bytes carrying a field this build's
	// struct doesn't know about: the marker format is explicitly not
	// forward-compatible  — an old binary must never silently
	// ignore a field a newer one added.
	h.ErrorIfNoField = true
	return h
}

// Encode serializes a marker to its wire bytes.
func Encode(m Marker) ([]byte, error) {
	w := wireMarker{ID: append([]byte(nil), m.ID[:]...)}
	for _, op := range m.RowOps {
		w.RowOps = append(w.RowOps, wireRowOp{
			EntityPath: op.EntityPath,
			Key:        []byte(op.Key),
			Before:     []byte(op.Before),
			After:      []byte(op.After),
		})
	}
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, cborHandle())
	if err := enc.Encode(w); err != nil {
		return nil, icyerr.Wrap(err, icyerr.Internal, icyerr.OriginSerialize, "encode commit marker")
	}
	if buf.Len() > MaxMarkerBytes {
		return nil, icyerr.UnsupportedErr(icyerr.OriginSerialize, "CommitMarkerTooLarge{size=%d,max=%d}", buf.Len(), MaxMarkerBytes)
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode. Any decode failure — malformed CBOR, an
// unknown field, a truncated buffer — is Corruption: nothing should ever
// write a marker this build cannot read back.
func Decode(raw []byte) (Marker, error) {
	if len(raw) > MaxMarkerBytes {
		return Marker{}, icyerr.Corrupt(icyerr.OriginSerialize, "CommitMarkerTooLarge{size=%d,max=%d}", len(raw), MaxMarkerBytes)
	}
	var w wireMarker
	dec := codec.NewDecoder(bytes.NewReader(raw), cborHandle())
	if err := dec.Decode(&w); err != nil {
		return Marker{}, icyerr.Wrap(err, icyerr.Corruption, icyerr.OriginSerialize, "decode commit marker")
	}
	if len(w.ID) != 16 {
		return Marker{}, icyerr.Corrupt(icyerr.OriginSerialize, "malformed commit marker id")
	}
	m := Marker{}
	copy(m.ID[:], w.ID)
	for _, wo := range w.RowOps {
		op := RowOp{EntityPath: wo.EntityPath, Key: key.RawDataKey(wo.Key)}
		if wo.Before != nil {
			op.Before = key.RawRow(wo.Before)
		}
		if wo.After != nil {
			op.After = key.RawRow(wo.After)
		}
		m.RowOps = append(m.RowOps, op)
	}
	return m, nil
}

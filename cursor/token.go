package cursor

import (
	"bytes"
	"encoding/hex"

	"github.com/ugorji/go/codec"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/value"
)

// Version identifies a token's wire shape. V2 added a redundant Offset
// field so an offset-paginated query's cursor can be cross-checked
// against the request's declared offset; V1 tokens (keyset pagination
// only) carry no offset and are never subject to that check — a
// versioning wrinkle worth reproducing rather than "fixing away".
type Version uint8

const (
	V1 Version = 1
	V2 Version = 2
)

// MaxTokenBytes bounds the hex-encoded token string.
const MaxTokenBytes = 8 * 1024

// Token is the decoded continuation cursor.
type Token struct {
	Version   Version
	Signature Signature
	Boundary  Boundary
	Offset    int // meaningful only for V2
}

type wireSlot struct {
	Field string
	Kind  uint8
	Value []byte
}

type wireToken struct {
	Version   uint8
	Signature []byte
	Slots     []wireSlot
	Offset    int
}

func cborHandle() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.Canonical = true
	h.ErrorIfNoField = true
	return h
}

// Encode serializes t into its hex-encoded wire form.
func Encode(t Token) (string, error) {
	w := wireToken{Version: uint8(t.Version), Signature: append([]byte(nil), t.Signature[:]...), Offset: t.Offset}
	for _, s := range t.Boundary.Slots {
		enc, err := value.EncodeComponent(s.Value)
		if err != nil {
			return "", err
		}
		w.Slots = append(w.Slots, wireSlot{Field: s.Field, Kind: uint8(s.Kind), Value: enc})
	}
	var buf bytes.Buffer
	if err := codec.NewEncoder(&buf, cborHandle()).Encode(w); err != nil {
		return "", icyerr.Wrap(err, icyerr.Internal, icyerr.OriginResponse, "encode cursor token")
	}
	out := hex.EncodeToString(buf.Bytes())
	if len(out) > MaxTokenBytes {
		return "", icyerr.UnsupportedErr(icyerr.OriginResponse, "CursorTokenTooLarge{size=%d,max=%d}", len(out), MaxTokenBytes)
	}
	return out, nil
}

// Decode reverses Encode. Malformed hex, malformed CBOR, or an unknown
// field is Corruption: a cursor that fails this cheaply is indistinguishable
// from one a client has tampered with, and the engine treats both the
// same way.
func Decode(s string) (Token, error) {
	if len(s) > MaxTokenBytes {
		return Token{}, icyerr.Corrupt(icyerr.OriginResponse, "CursorTokenTooLarge{size=%d,max=%d}", len(s), MaxTokenBytes)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Token{}, icyerr.Wrap(err, icyerr.Corruption, icyerr.OriginResponse, "decode cursor token hex")
	}
	var w wireToken
	if err := codec.NewDecoder(bytes.NewReader(raw), cborHandle()).Decode(&w); err != nil {
		return Token{}, icyerr.Wrap(err, icyerr.Corruption, icyerr.OriginResponse, "decode cursor token cbor")
	}
	if len(w.Signature) != 32 {
		return Token{}, icyerr.Corrupt(icyerr.OriginResponse, "malformed cursor signature")
	}
	t := Token{Version: Version(w.Version), Offset: w.Offset}
	copy(t.Signature[:], w.Signature)
	for _, ws := range w.Slots {
		v, err := value.DecodeComponent(value.Kind(ws.Kind), ws.Value)
		if err != nil {
			return Token{}, err
		}
		t.Boundary.Slots = append(t.Boundary.Slots, BoundarySlot{Field: ws.Field, Kind: value.Kind(ws.Kind), Value: v})
	}
	return t, nil
}

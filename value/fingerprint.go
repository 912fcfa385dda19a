package value

import "lukechampine.com/blake3"

// Fingerprint16 is a 16-byte fingerprint of a Value's canonical-ordered
// byte encoding, used as one IndexKey component. BLAKE3 is
// used for its native variable-length output (an XOF), truncated to 16
// bytes, rather than a fixed-width hash that would need ad hoc slicing.
func Fingerprint16(v Value) ([16]byte, error) {
	encoded, err := EncodeComponent(v)
	if err != nil {
		return [16]byte{}, err
	}
	var out [16]byte
	h := blake3.New(16, nil)
	_, _ = h.Write(encoded)
	copy(out[:], h.Sum(nil))
	return out, nil
}

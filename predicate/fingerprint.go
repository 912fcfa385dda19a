package predicate

import "crypto/sha256"

// Fingerprint hashes a predicate's canonical form with SHA-256: unlike
// the BLAKE3 XOF used for 16-byte index fingerprints, there is no
// variable-length output need here, so the standard library's sha256 is
// used directly rather than reaching for a third-party hash.
func Fingerprint(p Predicate) [32]byte {
	return sha256.Sum256(canonicalBytes(Normalize(p)))
}

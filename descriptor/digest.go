package descriptor

import (
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/opencontainers/go-digest"
)

// Digest computes the content digest of a serialized page configuration. The
// payload is canonicalized first so that semantically identical documents
// with different key order or whitespace digest identically.
func Digest(body []byte) (digest.Digest, error) {
	canonical, err := jsoncanonicalizer.Transform(body)
	if err != nil {
		return "", fmt.Errorf("could not canonicalize page config for digesting: %w", err)
	}
	return digest.SHA256.FromBytes(canonical), nil
}

package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"strings"

	inErrors "github.com/ofblood/website/internal/errors"
)

// Scheme is one candidate way a vendor may have produced the signature
// header: a digest algorithm paired with a text encoding of the digest.
type Scheme struct {
	Hash   func() hash.Hash
	Decode func(string) ([]byte, error)
}

// Verifier authenticates a webhook body against its signature header by
// evaluating an ordered list of candidate schemes, short-circuiting on the
// first match. All digest comparisons are constant time.
type Verifier struct {
	secret  []byte
	schemes []Scheme
	// splitScheme accepts the header in "scheme=digest" form in addition
	// to a bare digest.
	splitScheme bool
}

// NewShopifyVerifier verifies Shopify's X-Shopify-Hmac-Sha256 header:
// a single HMAC-SHA256 over the raw body, base64 encoded.
func NewShopifyVerifier(secret string) Verifier {
	return Verifier{
		secret: []byte(secret),
		schemes: []Scheme{
			{Hash: sha256.New, Decode: base64.StdEncoding.DecodeString},
		},
	}
}

// NewPrintfulVerifier verifies Printful's X-Printful-Signature header.
// The vendor sends either SHA-256 or SHA-1, encoded as hex or base64,
// optionally prefixed "scheme=".
func NewPrintfulVerifier(secret string) Verifier {
	return Verifier{
		secret: []byte(secret),
		schemes: []Scheme{
			{Hash: sha256.New, Decode: hex.DecodeString},
			{Hash: sha256.New, Decode: base64.StdEncoding.DecodeString},
			{Hash: sha1.New, Decode: hex.DecodeString},
			{Hash: sha1.New, Decode: base64.StdEncoding.DecodeString},
		},
		splitScheme: true,
	}
}

// Verify returns nil when the header authenticates the body. A missing
// secret fails closed with ErrSecretUnconfigured, distinct from a bad
// signature; a missing header is rejected before any digest is computed.
func (v Verifier) Verify(body []byte, header string) error {
	if len(v.secret) == 0 {
		return inErrors.ErrSecretUnconfigured
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return inErrors.ErrMissingSignature
	}

	candidates := []string{header}
	if v.splitScheme {
		if _, digest, found := strings.Cut(header, "="); found && digest != "" {
			candidates = append(candidates, digest)
		}
	}

	for _, scheme := range v.schemes {
		mac := hmac.New(scheme.Hash, v.secret)
		mac.Write(body)
		computed := mac.Sum(nil)
		for _, candidate := range candidates {
			claimed, err := scheme.Decode(candidate)
			if err != nil || len(claimed) == 0 {
				continue
			}
			if hmac.Equal(computed, claimed) {
				return nil
			}
		}
	}
	return inErrors.ErrInvalidSignature
}

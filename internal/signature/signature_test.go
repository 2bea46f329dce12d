package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	inErrors "github.com/ofblood/website/internal/errors"
)

func shopifyDigest(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestShopifyVerifierAcceptsExactDigest(t *testing.T) {
	body := []byte(`{"financial_status":"paid","id":1234}`)
	verifier := NewShopifyVerifier("shopify-secret")

	assert.NoError(t, verifier.Verify(body, shopifyDigest("shopify-secret", body)))
}

func TestShopifyVerifierRejectsMutatedBody(t *testing.T) {
	body := []byte(`{"financial_status":"paid","id":1234}`)
	header := shopifyDigest("shopify-secret", body)
	verifier := NewShopifyVerifier("shopify-secret")

	for i := range body {
		mutated := make([]byte, len(body))
		copy(mutated, body)
		mutated[i] ^= 0x01
		err := verifier.Verify(mutated, header)
		assert.ErrorIs(t, err, inErrors.ErrInvalidSignature, "mutation at byte %d accepted", i)
	}
}

func TestPrintfulVerifierAcceptsAllEncodings(t *testing.T) {
	body := []byte(`{"type":"package.shipped"}`)
	secret := "printful-secret"

	sha256Mac := hmac.New(sha256.New, []byte(secret))
	sha256Mac.Write(body)
	sha256Sum := sha256Mac.Sum(nil)

	sha1Mac := hmac.New(sha1.New, []byte(secret))
	sha1Mac.Write(body)
	sha1Sum := sha1Mac.Sum(nil)

	tests := []struct {
		name   string
		header string
	}{
		{name: "sha256 hex", header: hex.EncodeToString(sha256Sum)},
		{name: "sha256 base64", header: base64.StdEncoding.EncodeToString(sha256Sum)},
		{name: "sha1 hex", header: hex.EncodeToString(sha1Sum)},
		{name: "sha1 base64", header: base64.StdEncoding.EncodeToString(sha1Sum)},
		{name: "scheme prefixed hex", header: "sha256=" + hex.EncodeToString(sha256Sum)},
		{name: "scheme prefixed sha1", header: "sha1=" + hex.EncodeToString(sha1Sum)},
	}

	verifier := NewPrintfulVerifier(secret)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.NoError(t, verifier.Verify(body, test.header))
		})
	}
}

func TestPrintfulVerifierRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"type":"package.shipped"}`)

	mac := hmac.New(sha256.New, []byte("other-secret"))
	mac.Write(body)

	verifier := NewPrintfulVerifier("printful-secret")
	err := verifier.Verify(body, hex.EncodeToString(mac.Sum(nil)))
	assert.ErrorIs(t, err, inErrors.ErrInvalidSignature)
}

func TestVerifierFailsClosedWithoutSecret(t *testing.T) {
	body := []byte(`{}`)
	verifier := NewShopifyVerifier("")

	err := verifier.Verify(body, shopifyDigest("", body))
	assert.ErrorIs(t, err, inErrors.ErrSecretUnconfigured)
}

func TestVerifierRejectsMissingHeader(t *testing.T) {
	verifier := NewShopifyVerifier("shopify-secret")

	assert.ErrorIs(t, verifier.Verify([]byte(`{}`), ""), inErrors.ErrMissingSignature)
	assert.ErrorIs(t, verifier.Verify([]byte(`{}`), "   "), inErrors.ErrMissingSignature)
}

package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	inErrors "github.com/ofblood/website/internal/errors"
)

// Lifetime is how long an issued admin session stays valid. There is no
// server-side revocation: logout only deletes the cookie, a leaked token
// stays valid until natural expiry.
const Lifetime = 7 * 24 * time.Hour

// clockSkew tolerates small drift between the issuing and verifying clock.
const clockSkew = 2 * time.Minute

// Issue creates an opaque admin session token of the form
// nonce.issuedAtUnix.signature where signature = hex(HMAC-SHA256(secret,
// nonce+"."+issuedAtUnix)).
func Issue(secret string) (string, error) {
	return issueAt(secret, time.Now())
}

func issueAt(secret string, now time.Time) (string, error) {
	if secret == "" {
		return "", inErrors.ErrSessionUnconfigured
	}
	nonce := uuid.NewString()
	issuedAt := strconv.FormatInt(now.Unix(), 10)
	return fmt.Sprintf("%s.%s.%s", nonce, issuedAt, sign(secret, nonce, issuedAt)), nil
}

// Verify checks the token's shape, age and signature. Malformed tokens are
// rejected before any digest is computed.
func Verify(secret, token string) error {
	return verifyAt(secret, token, time.Now())
}

func verifyAt(secret, token string, now time.Time) error {
	if secret == "" {
		return inErrors.ErrSessionUnconfigured
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return inErrors.ErrTokenInvalid
	}
	nonce, issuedAt, signature := parts[0], parts[1], parts[2]
	if nonce == "" || signature == "" {
		return inErrors.ErrTokenInvalid
	}

	issuedAtUnix, err := strconv.ParseInt(issuedAt, 10, 64)
	if err != nil {
		return inErrors.ErrTokenInvalid
	}
	issued := time.Unix(issuedAtUnix, 0)
	if issued.After(now.Add(clockSkew)) {
		return inErrors.ErrTokenInvalid
	}
	if now.Sub(issued) > Lifetime {
		return inErrors.ErrTokenExpired
	}

	expected := sign(secret, nonce, issuedAt)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return inErrors.ErrTokenInvalid
	}
	return nil
}

func sign(secret, nonce, issuedAt string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(nonce + "." + issuedAt))
	return hex.EncodeToString(mac.Sum(nil))
}

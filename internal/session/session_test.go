package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	inErrors "github.com/ofblood/website/internal/errors"
)

func TestIssueAndVerify(t *testing.T) {
	token, err := Issue("session-secret")
	assert.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	assert.NoError(t, Verify("session-secret", token))
}

func TestVerifyExpired(t *testing.T) {
	issued := time.Now().Add(-Lifetime - time.Minute)
	token, err := issueAt("session-secret", issued)
	assert.NoError(t, err)

	err = Verify("session-secret", token)
	assert.ErrorIs(t, err, inErrors.ErrTokenExpired)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "wrong segment count", token: "nonce.123"},
		{name: "too many segments", token: "a.b.c.d"},
		{name: "non numeric timestamp", token: "nonce.notatime.deadbeef"},
		{name: "empty nonce", token: ".123.deadbeef"},
		{name: "empty signature", token: "nonce.123."},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Verify("session-secret", test.token)
			assert.ErrorIs(t, err, inErrors.ErrTokenInvalid)
		})
	}
}

func TestVerifyRejectsFutureIssuedAt(t *testing.T) {
	issued := time.Now().Add(time.Hour)
	token, err := issueAt("session-secret", issued)
	assert.NoError(t, err)

	assert.ErrorIs(t, Verify("session-secret", token), inErrors.ErrTokenInvalid)
}

func TestVerifyToleratesSmallSkew(t *testing.T) {
	issued := time.Now().Add(30 * time.Second)
	token, err := issueAt("session-secret", issued)
	assert.NoError(t, err)

	assert.NoError(t, Verify("session-secret", token))
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	token, err := Issue("session-secret")
	assert.NoError(t, err)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("0", len(parts[2]))

	assert.ErrorIs(t, Verify("session-secret", tampered), inErrors.ErrTokenInvalid)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := Issue("session-secret")
	assert.NoError(t, err)

	assert.ErrorIs(t, Verify("other-secret", token), inErrors.ErrTokenInvalid)
}

func TestMissingSecretFailsClosed(t *testing.T) {
	_, err := Issue("")
	assert.ErrorIs(t, err, inErrors.ErrSessionUnconfigured)

	token, err := Issue("session-secret")
	assert.NoError(t, err)
	assert.ErrorIs(t, Verify("", token), inErrors.ErrSessionUnconfigured)
}

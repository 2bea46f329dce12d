package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ofblood/website/internal/admin/repository"
	"github.com/ofblood/website/internal/config"
	commonErrors "github.com/ofblood/website/internal/errors"
	"github.com/ofblood/website/internal/session"
)

const sessionSecret = "test-session-secret"

func loginService(password string) AdminService {
	return NewAdminService(repository.ShowRepository{}, config.Admin{
		Password:      password,
		SessionSecret: sessionSecret,
	})
}

func TestLoginWithPlainPassword(t *testing.T) {
	svc := loginService("correct horse battery staple")

	token, err := svc.Login(context.Background(), "correct horse battery staple")
	require.NoError(t, err)
	assert.NoError(t, session.Verify(sessionSecret, token))

	_, err = svc.Login(context.Background(), "wrong")
	assert.ErrorIs(t, err, commonErrors.ErrPasswordInvalid)
}

func TestLoginWithBcryptHash(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := loginService(string(hashed))

	token, err := svc.Login(context.Background(), "hunter2")
	require.NoError(t, err)
	assert.NoError(t, session.Verify(sessionSecret, token))

	_, err = svc.Login(context.Background(), "hunter3")
	assert.ErrorIs(t, err, commonErrors.ErrPasswordInvalid)
}

func TestLoginFailsClosedWithoutPassword(t *testing.T) {
	svc := loginService("")

	_, err := svc.Login(context.Background(), "anything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, commonErrors.ErrPasswordInvalid,
		"an unconfigured password is a server problem, not a bad credential")
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
)

func newTestAuthService() *AuthService {
	return NewAuthService(nil, nil, AuthConfig{
		Email:    "admin@forum.local",
		Password: "forum-admin",
		Secret:   "secret",
		TTL:      time.Hour,
	}, nil)
}

func TestAuthServiceAuthenticateSuccess(t *testing.T) {
	svc := newTestAuthService()

	session, err := svc.Authenticate(context.Background(), models.LoginRequest{Email: " admin@forum.local ", Password: "forum-admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))
	assert.NoError(t, svc.Verify(session.Token))
}

func TestAuthServiceRejectsWrongPair(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Login(context.Background(), "admin@forum.local", "Forum-admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	assert.Equal(t, "Email ou mot de passe incorrect", appErrors.FromError(err).Message)

	_, err = svc.Login(context.Background(), "ADMIN@forum.local", "forum-admin")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceMissingFields(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Authenticate(context.Background(), models.LoginRequest{Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "email", appErrors.FromError(err).Field)

	_, err = svc.Authenticate(context.Background(), models.LoginRequest{Email: "admin@forum.local"})
	require.Error(t, err)
	assert.Equal(t, "password", appErrors.FromError(err).Field)
}

func TestAuthServiceVerifyRejectsForeignMarkers(t *testing.T) {
	svc := newTestAuthService()

	assert.ErrorIs(t, svc.Verify(""), appErrors.ErrUnauthorized)
	assert.ErrorIs(t, svc.Verify("true"), appErrors.ErrUnauthorized)

	other := NewAuthService(nil, nil, AuthConfig{Email: "admin@forum.local", Password: "forum-admin", Secret: "other"}, nil)
	token, err := other.Login(context.Background(), "admin@forum.local", "forum-admin")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Verify(token), appErrors.ErrUnauthorized)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		AdminLoggedIn:    false,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "forum-inscriptions-api"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Verify(forged), appErrors.ErrUnauthorized)
}

func TestAuthServiceVerifyExpired(t *testing.T) {
	svc := newTestAuthService()
	token, err := svc.Login(context.Background(), "admin@forum.local", "forum-admin")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.ErrorIs(t, svc.Verify(token), appErrors.ErrUnauthorized)
}

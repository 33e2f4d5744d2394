package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absentia-hq/absentia/internal/domain"
	"github.com/absentia-hq/absentia/internal/peoplehr"
	"github.com/absentia-hq/absentia/pkg/auth"
	"github.com/absentia-hq/absentia/pkg/config"
)

type stubPortal struct {
	user *peoplehr.AuthUser
	err  error
}

func (s *stubPortal) Login(_ context.Context, email, password string) (*peoplehr.Session, *peoplehr.AuthUser, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return nil, s.user, nil
}

func authCfg() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "test-secret", SessionTokenTTL: time.Hour}
}

func TestLoginIssuesSessionToken(t *testing.T) {
	portal := &stubPortal{user: &peoplehr.AuthUser{Email: "alice@example.com", FullName: "Alice W"}}
	svc := NewAuthService(portal, authCfg())

	res, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "Alice@Example.com", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, "Alice W", res.User.FullName)

	claims, err := auth.Parse(res.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice W", claims.FullName)
}

func TestLoginPropagatesPortalRejection(t *testing.T) {
	portal := &stubPortal{err: &peoplehr.AuthenticationError{Email: "alice@example.com"}}
	svc := NewAuthService(portal, authCfg())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "alice@example.com", Password: "bad"})
	var ae *peoplehr.AuthenticationError
	assert.ErrorAs(t, err, &ae)
}

func TestLoginValidatesInput(t *testing.T) {
	svc := NewAuthService(&stubPortal{}, authCfg())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "alice@example.com"})
	assert.True(t, domain.IsValidation(err))
}

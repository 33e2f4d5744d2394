package service

import (
	"context"

	"github.com/absentia-hq/absentia/internal/domain"
	"github.com/absentia-hq/absentia/internal/peoplehr"
	"github.com/absentia-hq/absentia/pkg/auth"
	"github.com/absentia-hq/absentia/pkg/config"
	"github.com/absentia-hq/absentia/pkg/logger"
)

// PortalAuth is the login-only slice of the remote portal client.
type PortalAuth interface {
	Login(ctx context.Context, email, password string) (*peoplehr.Session, *peoplehr.AuthUser, error)
}

type AuthService interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResult, error)
}

type authService struct {
	portal PortalAuth
	cfg    config.AuthConfig
}

func NewAuthService(portal PortalAuth, cfg config.AuthConfig) AuthService {
	return &authService{portal: portal, cfg: cfg}
}

// Login delegates the credential check entirely to the remote portal; there
// is no local password store. The session ends at the portal's answer — the
// cookie jar it produced is discarded, and the caller gets a short-lived
// signed token instead of an echo of the password.
func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, user, err := s.portal.Login(ctx, req.Email, req.Password)
	if err != nil {
		logger.WarnContext(ctx, "Portal login failed", "email", req.Email, "error", err)
		return nil, err
	}

	token, err := auth.NewSessionToken(user.Email, user.FullName, s.cfg.JWTSecret, s.cfg.SessionTokenTTL)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		User:  domain.UserInfo{Email: user.Email, FullName: user.FullName},
		Token: token,
	}, nil
}

package auth

import (
	"context"
	"strings"

	"github.com/baechuer/iset-library/internal/domain"
)

// Login authenticates a user against the (email, role) pair and issues a token.
// IMPORTANT: unknown email, wrong role and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password, role string) (LoginResult, error) {
	email = normalizeEmail(email)
	role = strings.TrimSpace(role)

	if email == "" || password == "" || role == "" {
		return LoginResult{}, domain.ErrInvalidRequest()
	}

	u, err := s.users.GetByEmailAndRole(ctx, email, role)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			s.audit.LoginFailed(ctx, email, role, "no_match")
			return LoginResult{}, domain.ErrInvalidCredentialsOrRole()
		}
		// storage failure: surfaced as such, it says nothing about the account
		return LoginResult{}, err
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		s.audit.LoginFailed(ctx, email, role, "password_mismatch")
		return LoginResult{}, domain.ErrInvalidCredentialsOrRole()
	}

	tok, err := s.signer.SignAccessToken(u.ID, u.Role)
	if err != nil {
		if domain.Is(err, "token_sign_failed") {
			return LoginResult{}, err
		}
		return LoginResult{}, domain.ErrTokenSignFailed(err)
	}

	s.audit.LoginSuccess(ctx, u.ID, u.Email, u.Role)
	return LoginResult{User: u, Token: tok}, nil
}

// Me returns the profile of the authenticated caller.
func (s *Service) Me(ctx context.Context, actor Actor) (domain.User, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return domain.User{}, domain.ErrTokenInvalid()
	}
	return s.users.GetByID(ctx, actor.UserID)
}

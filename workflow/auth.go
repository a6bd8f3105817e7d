package workflow

import (
	"context"
	"errors"

	"cinema-cli/api"
	"cinema-cli/domain"
)

// GooglePassword is the fixed password Google sign-ins register and log in with.
const GooglePassword = "google-oauth-placeholder"

func (s *Service) Register(ctx context.Context, email, password, name string) (domain.User, error) {
	resp, err := s.backend.Register(ctx, api.RegisterRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return domain.User{}, backendError(err, msgRegister)
	}
	return s.authenticate(resp, "")
}

func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	resp, err := s.backend.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return domain.User{}, backendError(err, msgLogin)
	}
	return s.authenticate(resp, "")
}

// LoginWithGoogle registers the account on first use and logs in on every later one.
func (s *Service) LoginWithGoogle(ctx context.Context, email, name string) (domain.User, error) {
	resp, err := s.backend.Register(ctx, api.RegisterRequest{Email: email, Password: GooglePassword, Name: name})
	if err == nil {
		return s.authenticate(resp, domain.AuthGoogle)
	}
	s.logger.Debug().Err(err).Str("email", email).Msg("google register refused, trying login")

	resp, err = s.backend.Login(ctx, api.LoginRequest{Email: email, Password: GooglePassword})
	if err != nil {
		return domain.User{}, backendError(err, msgGoogleLogin)
	}
	return s.authenticate(resp, domain.AuthGoogle)
}

func (s *Service) authenticate(resp api.AuthResponse, authType domain.AuthType) (domain.User, error) {
	user := domain.ToUser(resp.User)
	if authType != "" {
		user.AuthType = authType
	}
	if err := s.session.Authenticate(resp.Token, user); err != nil {
		return domain.User{}, storageError(err)
	}
	return user, nil
}

func (s *Service) Logout() error {
	if err := s.session.Clear(); err != nil {
		return storageError(err)
	}
	return nil
}

// VerifyToken asks the backend whether token is valid and caches the returned profile.
func (s *Service) VerifyToken(ctx context.Context, token string) (domain.User, error) {
	user, valid, err := s.Verify(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	if !valid {
		return domain.User{}, newError(KindAuthRequired, msgInvalidToken)
	}
	if err := s.session.CacheUser(user); err != nil {
		return domain.User{}, storageError(err)
	}
	return user, nil
}

// Verify satisfies session.Verifier. A nil error with valid=false means the
// backend rejected the token.
func (s *Service) Verify(ctx context.Context, token string) (domain.User, bool, error) {
	resp, err := s.backend.Verify(ctx, token)
	if err != nil {
		return domain.User{}, false, backendError(err, msgVerify)
	}
	if !resp.Valid || resp.User == nil {
		return domain.User{}, false, nil
	}
	return domain.ToUser(*resp.User), true, nil
}

// RestoreSession resolves the stored session against the backend.
func (s *Service) RestoreSession(ctx context.Context) (domain.User, error) {
	if _, err := s.session.Restore(ctx, s); err != nil {
		var wfErr *Error
		if errors.As(err, &wfErr) {
			return domain.User{}, wfErr
		}
		return domain.User{}, storageError(err)
	}
	user, ok := s.session.CurrentUser()
	if !ok {
		return domain.User{}, newError(KindAuthRequired, msgAuthRequired)
	}
	return user, nil
}

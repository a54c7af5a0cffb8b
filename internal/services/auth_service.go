package services

import (
	"context"
	"errors"

	"medicatalog/internal/auth"
	"medicatalog/internal/domain"
	"medicatalog/internal/repos"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrEmailTaken = errors.New("an account with this email already exists")
)

type AuthService struct {
	Users  *repos.UserRepo
	Tokens *auth.Tokens
}

func (s *AuthService) check(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrBadCreds
		}
		return nil, domain.Transient("users.by_email", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	return u, nil
}

// Login binds the session to the user on valid credentials.
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.check(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// IssueToken returns an API bearer token on valid credentials.
func (s *AuthService) IssueToken(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.check(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	tok, err := s.Tokens.Issue(u)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Register creates a USER account and returns an API token for it.
// Inputs are expected to be validated by the caller.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (string, *domain.User, error) {
	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return "", nil, ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", nil, domain.Transient("users.by_email", err)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}
	u := domain.User{ID: uuid.NewString(), Email: email, Name: name, Hash: string(h), Role: domain.RoleUser}
	if err := s.Users.Create(ctx, u); err != nil {
		return "", nil, err
	}
	tok, err := s.Tokens.Issue(&u)
	if err != nil {
		return "", nil, err
	}
	return tok, &u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	return s.Users.SessionUser(ctx, sid)
}

// TokenUser resolves a bearer token to a current user record; a token for a
// deleted user is rejected.
func (s *AuthService) TokenUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return s.Users.ByID(ctx, claims.Subject)
}

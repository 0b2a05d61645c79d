package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidGoogleToken = errors.New("invalid google token")
)

// GoogleVerifier validates a Google ID token and returns (email, name).
// Abstracted so tests can stub the network call.
type GoogleVerifier func(ctx context.Context, rawToken string) (email, name string, err error)

// NewGoogleVerifier verifies tokens against the given OAuth client id using
// Google's public keys.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return func(ctx context.Context, rawToken string) (string, string, error) {
		payload, err := idtoken.Validate(ctx, rawToken, clientID)
		if err != nil {
			return "", "", ErrInvalidGoogleToken
		}
		email, _ := payload.Claims["email"].(string)
		if email == "" {
			return "", "", ErrInvalidGoogleToken
		}
		name, _ := payload.Claims["name"].(string)
		return email, name, nil
	}
}

// UserStore is what Service needs from persistence. *Repo implements it.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	PasswordHash(ctx context.Context, userID string) (string, error)
	CreateWithPassword(ctx context.Context, email, name, passwordHash string) (*User, error)
	CreateWithoutPassword(ctx context.Context, email, name string) (*User, error)
}

type Service struct {
	Repo     UserStore
	Tokens   *TokenIssuer
	VerifyID GoogleVerifier
}

func (s *Service) Register(ctx context.Context, email, name, password string) (*User, error) {
	if _, err := s.Repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.Repo.CreateWithPassword(ctx, email, name, string(hash))
}

func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	u, err := s.Repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	hash, err := s.Repo.PasswordHash(ctx, u.ID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	tok, err := s.Tokens.Mint(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: tok}, nil
}

// GoogleLogin verifies the Google ID token, creates the user on first login
// and mints the same access token password login does.
func (s *Service) GoogleLogin(ctx context.Context, rawToken string) (*TokenResponse, error) {
	email, name, err := s.VerifyID(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	u, err := s.Repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		if name == "" {
			name = "Google User"
		}
		u, err = s.Repo.CreateWithoutPassword(ctx, email, name)
	}
	if err != nil {
		return nil, err
	}

	tok, err := s.Tokens.Mint(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: tok}, nil
}

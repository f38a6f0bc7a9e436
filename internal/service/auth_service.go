package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"agrimap/internal/auth"
	apperrors "agrimap/internal/errors"
	"agrimap/internal/model"
	"agrimap/internal/repository"
)

const bcryptCost = 10

// RegisterInput carries the mandatory registration fields, already validated
// at the HTTP boundary.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Sex       string
	ContactNo string
}

// AuthService handles registration, authentication and token lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, rawToken string) error
	Profile(ctx context.Context, userID uint) (*model.User, error)
}

type authService struct {
	users       repository.UserRepository
	jwtService  *auth.JWTService
	revocations auth.RevocationStore
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, revocations auth.RevocationStore) AuthService {
	return &authService{
		users:       users,
		jwtService:  jwtService,
		revocations: revocations,
	}
}

// Register creates a new user with a bcrypt password hash. Email uniqueness is
// checked case-insensitively and the address is stored lowercased.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        strings.ToLower(in.Email),
		PasswordHash: string(hashed),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Sex:          in.Sex,
		ContactNo:    in.ContactNo,
		Role:         model.DefaultRole,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the existence check; the
		// unique index on email settles the race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and issues a token. Unknown email and wrong
// password are logged distinctly for audit trails but return the same error,
// so the response never reveals whether the account exists.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		log.Printf("login rejected: unknown email")
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("login rejected: wrong password for user %d", user.ID)
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}

// Logout adds the token's identifier to the revocation set for the remainder
// of its lifetime. An unparseable token is a no-op; the session is gone either
// way.
func (s *authService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.jwtService.ExtractClaims(rawToken)
	if err != nil || claims.ID == "" {
		return nil
	}

	ttl := time.Duration(0)
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}

// Profile returns the user record for the authenticated caller.
func (s *authService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

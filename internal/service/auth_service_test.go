package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"agrimap/internal/auth"
	apperrors "agrimap/internal/errors"
	"agrimap/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockRevocationStore is a mock implementation of auth.RevocationStore.
type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		LastName:  "Surveyor",
		Sex:       "F",
		ContactNo: "09170000000",
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			input: registerInput("test@example.com"),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "email already registered",
			input: registerInput("existing@example.com"),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:  "concurrent registration loses unique index race",
			input: registerInput("raced@example.com"),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "raced@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:  "email stored lowercased, duplicate check case-insensitive",
			input: registerInput("Mixed@Example.COM"),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "Mixed@Example.COM").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "mixed@example.com"
				})).Return(nil)
			},
			expectedError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret", time.Hour)
			svc := NewAuthService(mockRepo, jwtService, new(MockRevocationStore))

			user, err := svc.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, model.DefaultRole, user.Role)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.input.Password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("x"), 10)
	require.NoError(t, err)
	stored := &model.User{
		ID:           17,
		Email:        "a@b.com",
		PasswordHash: string(hashed),
		Role:         model.DefaultRole,
	}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "a@b.com",
			password: "x",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(stored, nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "x",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "a@b.com",
			password: "y",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(stored, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret", time.Hour)
			svc := NewAuthService(mockRepo, jwtService, new(MockRevocationStore))

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				// Unknown email and wrong password must be indistinguishable.
				assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				require.NotNil(t, user)
				assert.Equal(t, uint(17), user.ID)

				claims, err := jwtService.Verify(token)
				require.NoError(t, err)
				assert.Equal(t, uint(17), claims.UserID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	token, err := jwtService.Issue(5, "a@b.com", model.DefaultRole)
	require.NoError(t, err)
	claims, err := jwtService.Verify(token)
	require.NoError(t, err)

	mockStore := new(MockRevocationStore)
	mockStore.On("Revoke", mock.Anything, claims.ID, mock.AnythingOfType("time.Duration")).Return(nil)

	svc := NewAuthService(new(MockUserRepository), jwtService, mockStore)
	require.NoError(t, svc.Logout(context.Background(), token))

	mockStore.AssertExpectations(t)
}

func TestAuthService_LogoutGarbageToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	mockStore := new(MockRevocationStore)

	svc := NewAuthService(new(MockUserRepository), jwtService, mockStore)
	assert.NoError(t, svc.Logout(context.Background(), "not-a-token"))

	mockStore.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Profile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(9)).Return(&model.User{ID: 9, Email: "a@b.com"}, nil)
	mockRepo.On("FindByID", mock.Anything, uint(10)).Return(nil, gorm.ErrRecordNotFound)

	jwtService := auth.NewJWTService("test-secret", time.Hour)
	svc := NewAuthService(mockRepo, jwtService, new(MockRevocationStore))

	user, err := svc.Profile(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, uint(9), user.ID)

	_, err = svc.Profile(context.Background(), 10)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

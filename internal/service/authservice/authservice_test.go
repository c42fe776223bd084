package authservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockRepo, *auth.MockHashServiceInterface, *auth.MockJWTServiceInterface) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	hashService := auth.NewMockHashServiceInterface(ctrl)
	jwtService := auth.NewMockJWTServiceInterface(ctrl)

	service := New(repo, hashService, jwtService)
	return service, repo, hashService, jwtService
}

func TestRegister(t *testing.T) {
	service, adminRepo, passwordHasher, _ := NewMock(t)

	tests := []struct {
		name          string
		login         string
		password      string
		prepareMock   func()
		expectedAdmin *domain.Admin
		expectedError error
	}{
		{
			name:     "Successful registration",
			login:    "cashier",
			password: "password123",
			prepareMock: func() {
				adminRepo.EXPECT().FindByLogin(gomock.Any(), "cashier").Return(nil, nil)
				passwordHasher.EXPECT().HashPassword("password123").Return("hashedpassword", nil)
				adminRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
					admin.ID = 2
					return admin, nil
				})
			},
			expectedAdmin: &domain.Admin{ID: 2, Login: "cashier", PasswordHash: "hashedpassword"},
		},
		{
			name:     "Admin already exists",
			login:    "cashier",
			password: "password123",
			prepareMock: func() {
				adminRepo.EXPECT().FindByLogin(gomock.Any(), "cashier").Return(&domain.Admin{Login: "cashier"}, nil)
			},
			expectedError: domain.ErrDuplicate,
		},
		{
			name:     "Weak password",
			login:    "cashier",
			password: "short",
			prepareMock: func() {
				adminRepo.EXPECT().FindByLogin(gomock.Any(), "cashier").Return(nil, nil)
				passwordHasher.EXPECT().HashPassword("short").Return("", auth.ErrWeakPassword)
			},
			expectedError: domain.ErrWeakPassword,
		},
		{
			name:     "Error finding admin",
			login:    "cashier",
			password: "password123",
			prepareMock: func() {
				adminRepo.EXPECT().FindByLogin(gomock.Any(), "cashier").Return(nil, errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
		{
			name:     "Error creating admin",
			login:    "cashier",
			password: "password123",
			prepareMock: func() {
				adminRepo.EXPECT().FindByLogin(gomock.Any(), "cashier").Return(nil, nil)
				passwordHasher.EXPECT().HashPassword("password123").Return("hashedpassword", nil)
				adminRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("creation failed"))
			},
			expectedError: errors.New("creation failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			admin, err := service.Register(context.Background(), 1, tt.login, tt.password)
			if tt.expectedError != nil {
				assert.Error(t, err)
				if de := (*domain.Error)(nil); errors.As(tt.expectedError, &de) {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.Equal(t, tt.expectedError.Error(), err.Error())
				}
				assert.Nil(t, admin)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedAdmin, admin)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	service, adminRepo, passwordHasher, _ := NewMock(t)

	tests := []struct {
		name        string
		prepareMock func()
		expectErr   bool
	}{
		{
			name: "Valid credentials",
			prepareMock: func() {
				adminRepo.EXPECT().FindByLogin(gomock.Any(), "root").Return(&domain.Admin{ID: 1, Login: "root", PasswordHash: "hash"}, nil)
				passwordHasher.EXPECT().ComparePassword("hash", "password123").Return(true)
			},
		},
		{
			name: "Unknown admin",
			prepareMock: func() {
				adminRepo.EXPECT().FindByLogin(gomock.Any(), "root").Return(nil, nil)
			},
			expectErr: true,
		},
		{
			name: "Wrong password",
			prepareMock: func() {
				adminRepo.EXPECT().FindByLogin(gomock.Any(), "root").Return(&domain.Admin{ID: 1, Login: "root", PasswordHash: "hash"}, nil)
				passwordHasher.EXPECT().ComparePassword("hash", "password123").Return(false)
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			admin, err := service.Authenticate(context.Background(), "root", "password123")
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				assert.Nil(t, admin)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, admin.ID)
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	service, _, _, jwtService := NewMock(t)

	jwtService.EXPECT().GenerateJWT(1, gomock.Any()).DoAndReturn(func(id int, exp time.Time) (string, error) {
		assert.WithinDuration(t, time.Now().Add(tokenTTL), exp, time.Minute)
		return "token", nil
	})
	token, err := service.GenerateToken(1)
	assert.NoError(t, err)
	assert.Equal(t, "token", token)

	jwtService.EXPECT().GenerateJWT(1, gomock.Any()).Return("", errors.New("signing failed"))
	_, err = service.GenerateToken(1)
	assert.Error(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	service, adminRepo, passwordHasher, _ := NewMock(t)

	t.Run("disabled without login", func(t *testing.T) {
		assert.NoError(t, service.EnsureAdmin(context.Background(), "", ""))
	})

	t.Run("existing admin is kept", func(t *testing.T) {
		adminRepo.EXPECT().FindByLogin(gomock.Any(), "root").Return(&domain.Admin{ID: 1, Login: "root"}, nil)
		assert.NoError(t, service.EnsureAdmin(context.Background(), "root", "password123"))
	})

	t.Run("missing admin is created", func(t *testing.T) {
		adminRepo.EXPECT().FindByLogin(gomock.Any(), "root").Return(nil, nil).Times(2)
		passwordHasher.EXPECT().HashPassword("password123").Return("hash", nil)
		adminRepo.EXPECT().Create(gomock.Any(), &domain.Admin{Login: "root", PasswordHash: "hash"}).
			Return(&domain.Admin{ID: 1, Login: "root", PasswordHash: "hash"}, nil)
		assert.NoError(t, service.EnsureAdmin(context.Background(), "root", "password123"))
	})
}

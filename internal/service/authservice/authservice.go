package authservice

//go:generate mockgen -source=authservice.go -destination=mock_authservice.go -package=authservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"go.uber.org/zap"
)

const tokenTTL = 15 * time.Minute

var ErrInvalidCredentials = errors.New("invalid credentials")

type Repo interface {
	FindByLogin(ctx context.Context, login string) (*domain.Admin, error)
	Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
}

type Service struct {
	adminRepo   Repo
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
}

func New(repo Repo, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface) *Service {
	return &Service{
		adminRepo:   repo,
		hashService: hashService,
		jwtService:  jwtService,
	}
}

// Register creates a back-office account on behalf of actor.
func (s *Service) Register(ctx context.Context, actor int, login, password string) (*domain.Admin, error) {
	existing, err := s.adminRepo.FindByLogin(ctx, login)
	if err != nil {
		zap.L().Error("can't find admin", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		zap.L().Info("admin already exists", zap.String("login", login))
		return nil, fmt.Errorf("admin %s: %w", login, domain.ErrDuplicate)
	}
	hashed, err := s.hashService.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, domain.ErrWeakPassword
		}
		zap.L().Error("can't hash password", zap.Error(err))
		return nil, err
	}
	admin, err := s.adminRepo.Create(ctx, &domain.Admin{Login: login, PasswordHash: hashed})
	if err != nil {
		zap.L().Error("can't create admin", zap.Error(err))
		return nil, err
	}

	zap.L().Info("admin registered", zap.String("login", login), zap.Int("actor", actor))
	return admin, nil
}

func (s *Service) Authenticate(ctx context.Context, login, password string) (*domain.Admin, error) {
	admin, err := s.adminRepo.FindByLogin(ctx, login)
	if err != nil || admin == nil {
		zap.L().Warn("invalid credentials", zap.String("login", login), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if ok := s.hashService.ComparePassword(admin.PasswordHash, password); !ok {
		zap.L().Warn("invalid credentials", zap.String("login", login))
		return nil, ErrInvalidCredentials
	}
	zap.L().Info("admin authenticated", zap.String("login", login))
	return admin, nil
}

func (s *Service) GenerateToken(adminID int) (string, error) {
	token, err := s.jwtService.GenerateJWT(adminID, time.Now().Add(tokenTTL))
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return "", err
	}
	return token, nil
}

// EnsureAdmin creates the bootstrap account when it does not exist yet.
// An empty login disables bootstrapping.
func (s *Service) EnsureAdmin(ctx context.Context, login, password string) error {
	if login == "" {
		return nil
	}
	existing, err := s.adminRepo.FindByLogin(ctx, login)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.Register(ctx, 0, login, password)
	if errors.Is(err, domain.ErrDuplicate) {
		return nil
	}
	return err
}

package userservice

//go:generate mockgen -source=userservice.go -destination=mock_userservice.go -package=userservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"go.uber.org/zap"
)

const membershipTerm = 365 * 24 * time.Hour

type Repo interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByMemberID(ctx context.Context, memberID string) (*domain.User, error)
}

type NewUser struct {
	Name      string
	Phone     string
	Email     string
	MemberID  string
	SponsorID string
	IsMember  bool
}

type Service struct {
	userRepo Repo
	now      func() time.Time
}

func New(repo Repo) *Service {
	return &Service{
		userRepo: repo,
		now:      time.Now,
	}
}

// Register stores a user together with the upline inherited from the sponsor.
// The snapshot is taken once and never recomputed.
func (s *Service) Register(ctx context.Context, actor int, in NewUser) (*domain.User, error) {
	user := &domain.User{
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		MemberID:  strings.TrimSpace(in.MemberID),
		SponsorID: strings.TrimSpace(in.SponsorID),
		IsMember:  in.IsMember,
	}

	if user.SponsorID != "" {
		sponsor, err := s.userRepo.FindByMemberID(ctx, user.SponsorID)
		if err != nil {
			zap.L().Error("can't resolve sponsor", zap.String("sponsor_id", user.SponsorID), zap.Error(err))
			return nil, err
		}
		if sponsor == nil {
			return nil, fmt.Errorf("sponsor %s: %w", user.SponsorID, domain.ErrUnknownSponsor)
		}
		user.Upline = sponsor.Upline.Inherit(sponsor.ID)
	}

	if user.IsMember {
		started := s.now()
		expires := started.Add(membershipTerm)
		user.MembershipStartedAt, user.MembershipExpiresAt = &started, &expires
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	zap.L().Info("user registered",
		zap.Int("id", created.ID),
		zap.String("sponsor_id", created.SponsorID),
		zap.Int("upline_depth", len(created.Upline.Populated())),
		zap.Int("actor", actor),
	)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return user, nil
}

func (s *Service) GetByMemberID(ctx context.Context, memberID string) (*domain.User, error) {
	user, err := s.userRepo.FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("member %s: %w", memberID, domain.ErrNotFound)
	}
	return user, nil
}

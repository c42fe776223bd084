package productservice

//go:generate mockgen -source=productservice.go -destination=mock_productservice.go -package=productservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	SaveExtraction(ctx context.Context, id int, tags []string, attributes map[string]string, processedAt time.Time) error
}

type Service struct {
	repo Repo
	now  func() time.Time
}

func New(repo Repo) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) Create(ctx context.Context, actor int, name string, price decimal.Decimal, description string) (*domain.Product, error) {
	if price.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	product, err := s.repo.Create(ctx, &domain.Product{
		Name:        strings.TrimSpace(name),
		Price:       price,
		Description: description,
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("product created", zap.Int("id", product.ID), zap.Int("actor", actor))
	return product, nil
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return product, nil
}

// ProcessProduct re-derives tags and attributes from the product description.
func (s *Service) ProcessProduct(ctx context.Context, id int) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	tags, attrs := Extract(product.Description)
	if err := s.repo.SaveExtraction(ctx, id, tags, attrs, s.now()); err != nil {
		return err
	}
	zap.L().Debug("product processed", zap.Int("id", id), zap.Int("tags", len(tags)), zap.Int("attributes", len(attrs)))
	return nil
}

package dto

import (
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateProductRequestDTO struct {
	Name        string          `json:"name" validate:"required,max=255" example:"Herbal tea 250g"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"25000"`
	Description string          `json:"description" example:"#herbal #tea\nWeight: 250g"`
}

type ProductResponseDTO struct {
	ID          int               `json:"id" example:"3"`
	Name        string            `json:"name" example:"Herbal tea 250g"`
	Price       decimal.Decimal   `json:"price" swaggertype:"string" example:"25000"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func NewProductResponse(p *domain.Product) ProductResponseDTO {
	return ProductResponseDTO{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Tags:        p.Tags,
		Attributes:  p.Attributes,
		ProcessedAt: p.ProcessedAt,
		CreatedAt:   p.CreatedAt,
	}
}

type BatchProcessRequestDTO struct {
	ProductIDs []int `json:"product_ids" validate:"required,min=1,dive,gt=0" example:"3,4"`
}

type BatchProcessResponseDTO struct {
	Queued int `json:"queued" example:"2"`
}

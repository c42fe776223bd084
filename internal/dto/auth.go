package dto

import (
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
)

type LoginRequestDTO struct {
	Login    string `json:"login" validate:"required,min=3,max=50" example:"admin"`
	Password string `json:"password" validate:"required,min=8" example:"password123"`
}

type LoginResponseDTO struct {
	Message string `json:"message"`
}

type RegisterAdminRequestDTO struct {
	Login    string `json:"login" validate:"required,min=3,max=50" example:"cashier"`
	Password string `json:"password" validate:"required,min=8" example:"password123"`
}

type AdminResponseDTO struct {
	ID        int       `json:"id" example:"2"`
	Login     string    `json:"login" example:"cashier"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAdminResponse(a *domain.Admin) AdminResponseDTO {
	return AdminResponseDTO{ID: a.ID, Login: a.Login, CreatedAt: a.CreatedAt}
}

package dto

import (
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
)

type CreateUserRequestDTO struct {
	Name      string `json:"name" validate:"required,max=255" example:"Amina Nakato"`
	Phone     string `json:"phone" validate:"omitempty,max=32" example:"+256772000000"`
	Email     string `json:"email" validate:"omitempty,email" example:"amina@example.com"`
	MemberID  string `json:"member_id" validate:"required,max=64" example:"DTEHM0042"`
	SponsorID string `json:"sponsor_id" validate:"omitempty,max=64" example:"DTEHM0001"`
	IsMember  bool   `json:"is_dtehm_member" example:"true"`
}

type UserResponseDTO struct {
	ID                  int        `json:"id" example:"42"`
	Name                string     `json:"name" example:"Amina Nakato"`
	Phone               string     `json:"phone,omitempty"`
	Email               string     `json:"email,omitempty"`
	MemberID            string     `json:"member_id" example:"DTEHM0042"`
	SponsorID           string     `json:"sponsor_id,omitempty" example:"DTEHM0001"`
	Upline              []int      `json:"upline" example:"1,0,0,0,0,0,0,0,0,0"`
	IsMember            bool       `json:"is_dtehm_member"`
	MembershipStartedAt *time.Time `json:"membership_started_at,omitempty"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func NewUserResponse(u *domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:                  u.ID,
		Name:                u.Name,
		Phone:               u.Phone,
		Email:               u.Email,
		MemberID:            u.MemberID,
		SponsorID:           u.SponsorID,
		Upline:              u.Upline[:],
		IsMember:            u.IsMember,
		MembershipStartedAt: u.MembershipStartedAt,
		MembershipExpiresAt: u.MembershipExpiresAt,
		CreatedAt:           u.CreatedAt,
	}
}

package dto

import (
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateWithdrawRequestDTO struct {
	UserID      int             `json:"user_id" validate:"required,gt=0" example:"42"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"20000"`
	Description string          `json:"description" validate:"max=500" example:"School fees"`
}

type WithdrawResponseDTO struct {
	ID                   int             `json:"id" example:"5"`
	UserID               int             `json:"user_id" example:"42"`
	Amount               decimal.Decimal `json:"amount" swaggertype:"string" example:"20000"`
	Status               string          `json:"status" example:"pending"`
	BalanceBefore        decimal.Decimal `json:"account_balance_before" swaggertype:"string" example:"30000"`
	AccountTransactionID *int            `json:"account_transaction_id,omitempty"`
	ProcessedBy          int             `json:"processed_by,omitempty"`
	ProcessedAt          *time.Time      `json:"processed_at,omitempty"`
	Description          string          `json:"description,omitempty"`
	AdminNote            string          `json:"admin_note,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

func NewWithdrawResponse(wr *domain.WithdrawRequest) WithdrawResponseDTO {
	return WithdrawResponseDTO{
		ID:                   wr.ID,
		UserID:               wr.UserID,
		Amount:               wr.Amount,
		Status:               string(wr.Status),
		BalanceBefore:        wr.BalanceBefore,
		AccountTransactionID: wr.AccountTransactionID,
		ProcessedBy:          wr.ProcessedBy,
		ProcessedAt:          wr.ProcessedAt,
		Description:          wr.Description,
		AdminNote:            wr.AdminNote,
		CreatedAt:            wr.CreatedAt,
	}
}

package dto

import (
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/shopspring/decimal"
)

type BalanceResponseDTO struct {
	UserID    int             `json:"user_id" example:"42"`
	Current   decimal.Decimal `json:"current" swaggertype:"string" example:"15500.00"`
	Withdrawn decimal.Decimal `json:"withdrawn" swaggertype:"string" example:"0"`
}

func NewBalanceResponse(b *domain.Balance) BalanceResponseDTO {
	return BalanceResponseDTO{UserID: b.UserID, Current: b.Current, Withdrawn: b.Withdrawn}
}

type RecordTransactionRequestDTO struct {
	UserID      int             `json:"user_id" validate:"required,gt=0" example:"42"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"30000"`
	Source      string          `json:"source" validate:"required,max=32" example:"manual"`
	Description string          `json:"description" validate:"max=500" example:"Opening balance"`
}

type TransactionResponseDTO struct {
	ID                int             `json:"id" example:"7"`
	UserID            int             `json:"user_id" example:"42"`
	Amount            decimal.Decimal `json:"amount" swaggertype:"string" example:"-20000"`
	Source            string          `json:"source" example:"withdrawal"`
	Description       string          `json:"description"`
	TransactionDate   time.Time       `json:"transaction_date"`
	CreatedBy         int             `json:"created_by" example:"1"`
	OrderedItemID     *int            `json:"ordered_item_id,omitempty"`
	WithdrawRequestID *int            `json:"withdraw_request_id,omitempty"`
}

func NewTransactionResponse(tx *domain.AccountTransaction) TransactionResponseDTO {
	return TransactionResponseDTO{
		ID:                tx.ID,
		UserID:            tx.UserID,
		Amount:            tx.Amount,
		Source:            string(tx.Source),
		Description:       tx.Description,
		TransactionDate:   tx.TransactionDate,
		CreatedBy:         tx.CreatedBy,
		OrderedItemID:     tx.OrderedItemID,
		WithdrawRequestID: tx.WithdrawRequestID,
	}
}

func NewTransactionsResponse(txs []domain.AccountTransaction) []TransactionResponseDTO {
	resp := make([]TransactionResponseDTO, 0, len(txs))
	for i := range txs {
		resp = append(resp, NewTransactionResponse(&txs[i]))
	}
	return resp
}

package dto

import (
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/commissionservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/orderservice"
	"github.com/shopspring/decimal"
)

type CreateOrderRequestDTO struct {
	UserID      int    `json:"user_id" validate:"required,gt=0" example:"42"`
	OrderNumber string `json:"order_number" validate:"required,numeric,luhn" example:"2377225624"`
}

type OrderResponseDTO struct {
	ID          int             `json:"id" example:"5"`
	UserID      int             `json:"user_id" example:"42"`
	OrderNumber string          `json:"order_number" example:"2377225624"`
	Total       decimal.Decimal `json:"total" swaggertype:"string" example:"0"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewOrderResponse(o *domain.Order) OrderResponseDTO {
	return OrderResponseDTO{ID: o.ID, UserID: o.UserID, OrderNumber: o.OrderNumber, Total: o.Total, CreatedAt: o.CreatedAt}
}

type CreateItemRequestDTO struct {
	OrderID        *int            `json:"order_id,omitempty" example:"5"`
	ProductID      int             `json:"product_id" validate:"required,gt=0" example:"3"`
	Qty            int             `json:"qty" validate:"required,min=1" example:"2"`
	UnitPrice      decimal.Decimal `json:"unit_price" swaggertype:"string" example:"0"`
	Color          string          `json:"color" validate:"max=64" example:"green"`
	Size           string          `json:"size" validate:"max=64" example:"L"`
	SellerMemberID string          `json:"dtehm_seller_id" validate:"max=64" example:"DTEHM0042"`
}

type LevelShareDTO struct {
	Level  int             `json:"level" example:"1"`
	UserID int             `json:"user_id" example:"1"`
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"3000"`
}

type CommissionDTO struct {
	Seller      decimal.Decimal `json:"seller" swaggertype:"string" example:"10000"`
	Levels      []LevelShareDTO `json:"levels"`
	Total       decimal.Decimal `json:"total" swaggertype:"string" example:"15500"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

// NewCommissionDTO lists populated levels only.
func NewCommissionDTO(c domain.Commission) CommissionDTO {
	levels := make([]LevelShareDTO, 0, domain.UplineDepth)
	for k, lvl := range c.Levels {
		if lvl.UserID == 0 {
			continue
		}
		levels = append(levels, LevelShareDTO{Level: k + 1, UserID: lvl.UserID, Amount: lvl.Amount})
	}
	return CommissionDTO{Seller: c.Seller, Levels: levels, Total: c.Total, ProcessedAt: c.ProcessedAt}
}

type OrderedItemResponseDTO struct {
	ID              int             `json:"id" example:"101"`
	OrderID         *int            `json:"order_id,omitempty"`
	MultipleOrderID *int            `json:"multiple_order_id,omitempty"`
	ProductID       int             `json:"product_id" example:"3"`
	Qty             int             `json:"qty" example:"2"`
	UnitPrice       decimal.Decimal `json:"unit_price" swaggertype:"string" example:"50000"`
	Subtotal        decimal.Decimal `json:"subtotal" swaggertype:"string" example:"100000"`
	Color           string          `json:"color,omitempty"`
	Size            string          `json:"size,omitempty"`
	HasDtehmSeller  bool            `json:"has_dtehm_seller"`
	SellerID        int             `json:"dtehm_user_id,omitempty"`
	Paid            bool            `json:"item_is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CommissionState string          `json:"commission_state" example:"PENDING"`
	Commission      *CommissionDTO  `json:"commission,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func NewOrderedItemResponse(item *domain.OrderedItem) OrderedItemResponseDTO {
	resp := OrderedItemResponseDTO{
		ID:              item.ID,
		OrderID:         item.OrderID,
		MultipleOrderID: item.MultipleOrderID,
		ProductID:       item.ProductID,
		Qty:             item.Qty,
		UnitPrice:       item.UnitPrice,
		Subtotal:        item.Subtotal,
		Color:           item.Color,
		Size:            item.Size,
		HasDtehmSeller:  item.HasDtehmSeller,
		SellerID:        item.SellerID,
		Paid:            item.Paid,
		PaidAt:          item.PaidAt,
		CommissionState: string(item.CommissionState),
		CreatedAt:       item.CreatedAt,
	}
	if item.CommissionState == domain.CommissionProcessed {
		c := NewCommissionDTO(item.Commission)
		resp.Commission = &c
	}
	return resp
}

type CommissionOutcomeDTO struct {
	ItemID           int                      `json:"item_id" example:"101"`
	AlreadyProcessed bool                     `json:"already_processed"`
	Commission       CommissionDTO            `json:"commission"`
	Transactions     []TransactionResponseDTO `json:"transactions,omitempty"`
}

func NewCommissionOutcome(out *commissionservice.Outcome) *CommissionOutcomeDTO {
	if out == nil {
		return nil
	}
	return &CommissionOutcomeDTO{
		ItemID:           out.ItemID,
		AlreadyProcessed: out.AlreadyProcessed,
		Commission:       NewCommissionDTO(out.Commission),
		Transactions:     NewTransactionsResponse(out.Transactions),
	}
}

type ItemPaymentResponseDTO struct {
	Item            OrderedItemResponseDTO `json:"item"`
	Commission      *CommissionOutcomeDTO  `json:"commission,omitempty"`
	CommissionError string                 `json:"commission_error,omitempty"`
}

func NewItemPaymentResponse(out *orderservice.PaymentOutcome) ItemPaymentResponseDTO {
	return ItemPaymentResponseDTO{
		Item:            NewOrderedItemResponse(out.Item),
		Commission:      NewCommissionOutcome(out.Commission),
		CommissionError: out.CommissionError,
	}
}

package dto

import (
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/checkoutservice"
	"github.com/shopspring/decimal"
)

type CartLineDTO struct {
	ProductID int             `json:"product_id" validate:"required,gt=0" example:"3"`
	Quantity  int             `json:"quantity" validate:"required,min=1" example:"2"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string" example:"0"`
	Subtotal  decimal.Decimal `json:"subtotal" swaggertype:"string" example:"50000"`
	Color     string          `json:"color,omitempty" validate:"max=64"`
	Size      string          `json:"size,omitempty" validate:"max=64"`
}

type CreateMultipleOrderRequestDTO struct {
	UserID     int           `json:"user_id" validate:"required,gt=0" example:"42"`
	SponsorID  string        `json:"sponsor_id" validate:"max=64" example:"DTEHM0001"`
	StockistID string        `json:"stockist_id" validate:"max=64" example:"STK-KLA-01"`
	Items      []CartLineDTO `json:"items" validate:"required,min=1,dive"`
}

func (r CreateMultipleOrderRequestDTO) Lines() []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(r.Items))
	for _, it := range r.Items {
		lines = append(lines, domain.CartLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Color:     it.Color,
			Size:      it.Size,
		})
	}
	return lines
}

type MarkPaidRequestDTO struct {
	Note string `json:"note" validate:"required,max=500" example:"Cash received at Kampala stockist"`
}

type MultipleOrderResponseDTO struct {
	ID                int             `json:"id" example:"18"`
	UserID            int             `json:"user_id" example:"42"`
	SponsorID         string          `json:"sponsor_id,omitempty"`
	StockistID        string          `json:"stockist_id,omitempty"`
	Items             []CartLineDTO   `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal" swaggertype:"string" example:"100000"`
	DeliveryFee       decimal.Decimal `json:"delivery_fee" swaggertype:"string" example:"5000"`
	Total             decimal.Decimal `json:"total_amount" swaggertype:"string" example:"105000"`
	PaymentStatus     string          `json:"payment_status" example:"PENDING"`
	ConversionStatus  string          `json:"conversion_status" example:"PENDING"`
	MerchantReference string          `json:"merchant_reference" example:"17829849600000007"`
	TrackingID        string          `json:"pesapal_tracking_id,omitempty"`
	RedirectURL       string          `json:"pesapal_redirect_url,omitempty"`
	PaidByAdmin       bool            `json:"is_paid_by_admin"`
	AdminNote         string          `json:"admin_payment_note,omitempty"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	ConvertedAt       *time.Time      `json:"converted_at,omitempty"`
	ConversionResult  []int           `json:"conversion_result,omitempty"`
	ConversionError   string          `json:"conversion_error,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

func NewMultipleOrderResponse(m *domain.MultipleOrder) MultipleOrderResponseDTO {
	items := make([]CartLineDTO, 0, len(m.Items))
	for _, line := range m.Items {
		items = append(items, CartLineDTO{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
			Color:     line.Color,
			Size:      line.Size,
		})
	}
	return MultipleOrderResponseDTO{
		ID:                m.ID,
		UserID:            m.UserID,
		SponsorID:         m.SponsorID,
		StockistID:        m.StockistID,
		Items:             items,
		Subtotal:          m.Subtotal,
		DeliveryFee:       m.DeliveryFee,
		Total:             m.Total,
		PaymentStatus:     string(m.PaymentStatus),
		ConversionStatus:  string(m.ConversionStatus),
		MerchantReference: m.MerchantReference,
		TrackingID:        m.TrackingID,
		RedirectURL:       m.RedirectURL,
		PaidByAdmin:       m.PaidByAdmin,
		AdminNote:         m.AdminNote,
		PaidAt:            m.PaidAt,
		ConvertedAt:       m.ConvertedAt,
		ConversionResult:  m.ConversionResult,
		ConversionError:   m.ConversionError,
		CreatedAt:         m.CreatedAt,
	}
}

type ConversionOutcomeDTO struct {
	MultipleOrderID  int                     `json:"multiple_order_id" example:"18"`
	AlreadyConverted bool                    `json:"already_converted"`
	ItemIDs          []int                   `json:"item_ids" example:"101,102"`
	Commissions      []*CommissionOutcomeDTO `json:"commissions,omitempty"`
	CommissionErrors map[int]string          `json:"commission_errors,omitempty"`
}

func NewConversionOutcome(out *checkoutservice.ConversionOutcome) *ConversionOutcomeDTO {
	if out == nil {
		return nil
	}
	resp := &ConversionOutcomeDTO{
		MultipleOrderID:  out.MultipleOrderID,
		AlreadyConverted: out.AlreadyConverted,
		ItemIDs:          out.ItemIDs,
		CommissionErrors: out.CommissionErrors,
	}
	for _, c := range out.Commissions {
		resp.Commissions = append(resp.Commissions, NewCommissionOutcome(c))
	}
	return resp
}

type CartPaymentResponseDTO struct {
	Order           MultipleOrderResponseDTO `json:"order"`
	Conversion      *ConversionOutcomeDTO    `json:"conversion,omitempty"`
	ConversionError string                   `json:"conversion_error,omitempty"`
}

func NewCartPaymentResponse(out *checkoutservice.PaymentOutcome) CartPaymentResponseDTO {
	return CartPaymentResponseDTO{
		Order:           NewMultipleOrderResponse(out.Order),
		Conversion:      NewConversionOutcome(out.Conversion),
		ConversionError: out.ConversionError,
	}
}

// IPNResponseDTO is the acknowledgement PesaPal expects from a notification endpoint.
type IPNResponseDTO struct {
	NotificationType  string `json:"orderNotificationType" example:"IPNCHANGE"`
	TrackingID        string `json:"orderTrackingId" example:"b945e4af-80a5-4ec1-8706-e03f8332fb04"`
	MerchantReference string `json:"orderMerchantReference" example:"17829849600000007"`
	Status            int    `json:"status" example:"200"`
}

package orders

//go:generate mockgen -source=orders.go -destination=mock_orders.go -package=orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/dto"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/commissionservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/orderservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/utils"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/validate"
)

type Service interface {
	CreateOrder(ctx context.Context, actor, userID int, orderNumber string) (*domain.Order, error)
	GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error)
	CreateItem(ctx context.Context, actor int, in orderservice.NewItem) (*domain.OrderedItem, error)
	GetItem(ctx context.Context, id int) (*domain.OrderedItem, error)
	MarkItemPaid(ctx context.Context, actor, id int) (*orderservice.PaymentOutcome, error)
	ProcessCommission(ctx context.Context, actor, id int) (*commissionservice.Outcome, error)
}

type OrderHandler struct {
	orderService Service
}

func New(orderService Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// AddOrder godoc
//
//	@Summary		Add an order
//	@Description	Register an order number for a user. Order numbers must pass the Luhn check.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateOrderRequestDTO	true	"Order"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.OrderResponseDTO	"Order created"
//	@Success		200	{object}	dto.OrderResponseDTO	"Order already added for this user"
//	@Failure		400	{object}	utils.Response			"Invalid request body"
//	@Failure		409	{object}	utils.Response			"Order already added for another user"
//	@Failure		422	{object}	utils.Response			"Invalid order number"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/orders [post]
func (h *OrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OrderNumber != "" && !validate.IsLuhn(req.OrderNumber) {
		utils.RespondWithDomainError(w, domain.ErrInvalidOrderNumber)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.orderService.CreateOrder(r.Context(), auth.Actor(r.Context()), req.UserID, req.OrderNumber)
	if errors.Is(err, orderservice.ErrOrderAlreadyExistsByUser) {
		utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderResponse(order))
		return
	}
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewOrderResponse(order))
}

// GetOrder godoc
//
//	@Summary	Get an order by number
//	@Tags		Orders
//	@Produce	json
//	@Param		number	path	string	true	"Order number"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.OrderResponseDTO
//	@Failure	404	{object}	utils.Response	"Order not found"
//	@Router		/api/orders/{number} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}

// CreateItem godoc
//
//	@Summary		Add an ordered item
//	@Description	Unit price defaults to the product price. The seller is given by DTEHM member id.
//	@Tags			Ordered items
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateItemRequestDTO	true	"Ordered item"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.OrderedItemResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		422	{object}	utils.Response	"Unknown product or seller"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/ordered-items [post]
func (h *OrderHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.orderService.CreateItem(r.Context(), auth.Actor(r.Context()), orderservice.NewItem{
		OrderID:        req.OrderID,
		ProductID:      req.ProductID,
		Qty:            req.Qty,
		UnitPrice:      req.UnitPrice,
		Color:          req.Color,
		Size:           req.Size,
		SellerMemberID: req.SellerMemberID,
	})
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewOrderedItemResponse(item))
}

// GetItem godoc
//
//	@Summary	Get an ordered item
//	@Tags		Ordered items
//	@Produce	json
//	@Param		id	path	int	true	"Ordered item id"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.OrderedItemResponseDTO
//	@Failure	404	{object}	utils.Response	"Ordered item not found"
//	@Router		/api/ordered-items/{id} [get]
func (h *OrderHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.orderService.GetItem(r.Context(), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderedItemResponse(item))
}

// PayItem godoc
//
//	@Summary		Mark an ordered item paid
//	@Description	Sets the paid flag once and distributes the commission. A commission failure is reported in the body and retried later.
//	@Tags			Ordered items
//	@Produce		json
//	@Param			id	path	int	true	"Ordered item id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ItemPaymentResponseDTO
//	@Failure		404	{object}	utils.Response	"Ordered item not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/ordered-items/{id}/pay [post]
func (h *OrderHandler) PayItem(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := h.orderService.MarkItemPaid(r.Context(), auth.Actor(r.Context()), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewItemPaymentResponse(out))
}

// ProcessCommission godoc
//
//	@Summary		Distribute the commission of an ordered item
//	@Description	Idempotent. A second call reports already_processed and writes nothing.
//	@Tags			Ordered items
//	@Produce		json
//	@Param			id	path	int	true	"Ordered item id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.CommissionOutcomeDTO
//	@Failure		404	{object}	utils.Response	"Ordered item not found"
//	@Failure		409	{object}	utils.Response	"Item locked or upline user missing"
//	@Failure		422	{object}	utils.Response	"Item not paid or has no seller"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/ordered-items/{id}/process-commission [post]
func (h *OrderHandler) ProcessCommission(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := h.orderService.ProcessCommission(r.Context(), auth.Actor(r.Context()), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCommissionOutcome(out))
}

package checkout

//go:generate mockgen -source=checkout.go -destination=mock_checkout.go -package=checkout

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/dto"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/checkoutservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/utils"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/validate"
	"go.uber.org/zap"
)

type Service interface {
	Checkout(ctx context.Context, in checkoutservice.NewMultipleOrder) (*domain.MultipleOrder, error)
	Get(ctx context.Context, id int) (*domain.MultipleOrder, error)
	InitiatePayment(ctx context.Context, id int) (*domain.MultipleOrder, error)
	HandleNotification(ctx context.Context, trackingID, merchantReference string) (*checkoutservice.PaymentOutcome, error)
	MarkPaidByAdmin(ctx context.Context, actor, id int, note string) (*checkoutservice.PaymentOutcome, error)
	Convert(ctx context.Context, actor, id int) (*checkoutservice.ConversionOutcome, error)
}

type CheckoutHandler struct {
	checkoutService Service
}

func New(checkoutService Service) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// Create godoc
//
//	@Summary		Check out a cart
//	@Description	Create a multiple order from cart lines. Prices default to the product price; payment and conversion start PENDING.
//	@Tags			Multiple orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateMultipleOrderRequestDTO	true	"Cart"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.MultipleOrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		422	{object}	utils.Response	"Unknown product or sponsor"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/multiple-orders [post]
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMultipleOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.checkoutService.Checkout(r.Context(), checkoutservice.NewMultipleOrder{
		UserID:     req.UserID,
		SponsorID:  req.SponsorID,
		StockistID: req.StockistID,
		Lines:      req.Lines(),
	})
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewMultipleOrderResponse(m))
}

// Get godoc
//
//	@Summary	Get a multiple order
//	@Tags		Multiple orders
//	@Produce	json
//	@Param		id	path	int	true	"Multiple order id"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.MultipleOrderResponseDTO
//	@Failure	404	{object}	utils.Response	"Multiple order not found"
//	@Router		/api/multiple-orders/{id} [get]
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.checkoutService.Get(r.Context(), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewMultipleOrderResponse(m))
}

// InitiatePayment godoc
//
//	@Summary		Start a PesaPal payment
//	@Description	Opens a PesaPal session; the response carries the redirect url for the payer.
//	@Tags			Multiple orders
//	@Produce		json
//	@Param			id	path	int	true	"Multiple order id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.MultipleOrderResponseDTO
//	@Failure		404	{object}	utils.Response	"Multiple order not found"
//	@Failure		409	{object}	utils.Response	"Already paid"
//	@Failure		502	{object}	utils.Response	"Payment gateway unavailable"
//	@Router			/api/multiple-orders/{id}/payment [post]
func (h *CheckoutHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.checkoutService.InitiatePayment(r.Context(), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewMultipleOrderResponse(m))
}

// MarkPaid godoc
//
//	@Summary		Mark a multiple order paid
//	@Description	Records an offline payment with a mandatory note, then converts the cart into ordered items.
//	@Tags			Multiple orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int						true	"Multiple order id"
//	@Param			request	body	dto.MarkPaidRequestDTO	true	"Payment note"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.CartPaymentResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		409	{object}	utils.Response	"Already paid"
//	@Failure		422	{object}	utils.Response	"Note required"
//	@Router			/api/multiple-orders/{id}/mark-paid [post]
func (h *CheckoutHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req dto.MarkPaidRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	out, err := h.checkoutService.MarkPaidByAdmin(r.Context(), auth.Actor(r.Context()), id, req.Note)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCartPaymentResponse(out))
}

// Convert godoc
//
//	@Summary		Convert a paid cart into ordered items
//	@Description	Idempotent. Payment must be COMPLETED; a FAILED conversion may be retried.
//	@Tags			Multiple orders
//	@Produce		json
//	@Param			id	path	int	true	"Multiple order id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ConversionOutcomeDTO
//	@Failure		404	{object}	utils.Response	"Multiple order not found"
//	@Failure		409	{object}	utils.Response	"Payment not completed or conversion in progress"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/multiple-orders/{id}/convert [get]
func (h *CheckoutHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := h.checkoutService.Convert(r.Context(), auth.Actor(r.Context()), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewConversionOutcome(out))
}

// Notify godoc
//
//	@Summary		PesaPal IPN callback
//	@Description	Called by PesaPal when a payment changes. The status is read back from the gateway before it is applied.
//	@Tags			PesaPal
//	@Produce		json
//	@Param			OrderTrackingId			query	string	true	"PesaPal tracking id"
//	@Param			OrderMerchantReference	query	string	false	"Merchant reference"
//	@Param			OrderNotificationType	query	string	false	"IPNCHANGE"
//	@Success		200	{object}	dto.IPNResponseDTO
//	@Failure		500	{object}	dto.IPNResponseDTO
//	@Router			/api/pesapal/ipn [get]
func (h *CheckoutHandler) Notify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := dto.IPNResponseDTO{
		NotificationType:  q.Get("OrderNotificationType"),
		TrackingID:        q.Get("OrderTrackingId"),
		MerchantReference: q.Get("OrderMerchantReference"),
		Status:            http.StatusOK,
	}
	if resp.NotificationType == "" {
		resp.NotificationType = "IPNCHANGE"
	}
	if resp.TrackingID == "" {
		resp.Status = http.StatusBadRequest
		utils.RespondWithJSON(w, http.StatusBadRequest, resp)
		return
	}

	if _, err := h.checkoutService.HandleNotification(r.Context(), resp.TrackingID, resp.MerchantReference); err != nil {
		zap.L().Error("ipn not applied", zap.String("tracking_id", resp.TrackingID), zap.Error(err))
		resp.Status = http.StatusInternalServerError
		utils.RespondWithJSON(w, http.StatusInternalServerError, resp)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

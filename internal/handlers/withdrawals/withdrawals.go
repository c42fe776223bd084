package withdrawals

//go:generate mockgen -source=withdrawals.go -destination=mock_withdrawals.go -package=withdrawals

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/dto"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/utils"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/validate"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, userID int, amount decimal.Decimal, note string) (*domain.WithdrawRequest, error)
	Get(ctx context.Context, id int) (*domain.WithdrawRequest, error)
	ListByUser(ctx context.Context, userID int) ([]domain.WithdrawRequest, error)
	Approve(ctx context.Context, actor, id int) (*domain.WithdrawRequest, error)
	Reject(ctx context.Context, actor, id int, reason string) (*domain.WithdrawRequest, error)
}

type WithdrawHandler struct {
	withdrawService Service
}

func New(withdrawService Service) *WithdrawHandler {
	return &WithdrawHandler{
		withdrawService: withdrawService,
	}
}

// Create godoc
//
//	@Summary		Request a withdrawal
//	@Description	Opens a pending withdrawal. The user's balance must cover the amount at request time.
//	@Tags			Withdrawals
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateWithdrawRequestDTO	true	"Withdrawal"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.WithdrawResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		402	{object}	utils.Response	"Insufficient balance"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		422	{object}	utils.Response	"Amount must be positive"
//	@Router			/api/withdraw-requests [post]
func (h *WithdrawHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWithdrawRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	wr, err := h.withdrawService.Create(r.Context(), req.UserID, req.Amount, req.Description)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewWithdrawResponse(wr))
}

// Get godoc
//
//	@Summary	Get a withdrawal request
//	@Tags		Withdrawals
//	@Produce	json
//	@Param		id	path	int	true	"Withdrawal request id"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.WithdrawResponseDTO
//	@Failure	404	{object}	utils.Response	"Withdrawal request not found"
//	@Router		/api/withdraw-requests/{id} [get]
func (h *WithdrawHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	wr, err := h.withdrawService.Get(r.Context(), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawResponse(wr))
}

// ListByUser godoc
//
//	@Summary	List a user's withdrawal requests
//	@Tags		Withdrawals
//	@Produce	json
//	@Param		id	path	int	true	"User id"
//	@Security	BearerAuth
//	@Success	200	{array}		dto.WithdrawResponseDTO
//	@Success	204	{object}	utils.Response	"No data available"
//	@Router		/api/users/{id}/withdraw-requests [get]
func (h *WithdrawHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.withdrawService.ListByUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if len(list) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No data available")
		return
	}
	resp := make([]dto.WithdrawResponseDTO, 0, len(list))
	for i := range list {
		resp = append(resp, dto.NewWithdrawResponse(&list[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Approve godoc
//
//	@Summary		Approve a withdrawal
//	@Description	Debits the user's ledger and links the transaction to the request. The balance is re-checked under lock.
//	@Tags			Withdrawals
//	@Produce		json
//	@Param			id	path	int	true	"Withdrawal request id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.WithdrawResponseDTO
//	@Failure		402	{object}	utils.Response	"Insufficient balance"
//	@Failure		404	{object}	utils.Response	"Withdrawal request not found"
//	@Failure		409	{object}	utils.Response	"Already processed"
//	@Router			/api/withdraw-requests/{id}/approve [post]
func (h *WithdrawHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	wr, err := h.withdrawService.Approve(r.Context(), auth.Actor(r.Context()), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawResponse(wr))
}

// Reject godoc
//
//	@Summary		Reject a withdrawal
//	@Description	Closes a pending request with a reason. The ledger is not touched.
//	@Tags			Withdrawals
//	@Produce		json
//	@Param			id		path	int		true	"Withdrawal request id"
//	@Param			reason	query	string	true	"Rejection reason"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.WithdrawResponseDTO
//	@Failure		404	{object}	utils.Response	"Withdrawal request not found"
//	@Failure		409	{object}	utils.Response	"Already processed"
//	@Failure		422	{object}	utils.Response	"Reason required"
//	@Router			/api/withdraw-requests/{id}/reject [get]
func (h *WithdrawHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	wr, err := h.withdrawService.Reject(r.Context(), auth.Actor(r.Context()), id, r.URL.Query().Get("reason"))
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawResponse(wr))
}

package balance

//go:generate mockgen -source=balance.go -destination=mock_balance.go -package=balance

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/dto"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/ledgerservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/utils"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/validate"
)

type Service interface {
	Balance(ctx context.Context, userID int) (*domain.Balance, error)
	History(ctx context.Context, userID int) ([]domain.AccountTransaction, error)
	Record(ctx context.Context, actor int, in ledgerservice.NewTransaction) (*domain.AccountTransaction, error)
}

type BalanceHandler struct {
	ledgerService Service
}

func New(ledgerService Service) *BalanceHandler {
	return &BalanceHandler{
		ledgerService: ledgerService,
	}
}

// GetBalance godoc
//
//	@Summary		Get user balance
//	@Description	Current balance and total withdrawn, both summed from the account transaction ledger
//	@Tags			Balance
//	@Produce		json
//	@Param			id	path	int	true	"User id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid id"
//	@Failure		401	{object}	utils.Response	"Admin not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/users/{id}/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	balance, err := h.ledgerService.Balance(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(balance))
}

// GetTransactions godoc
//
//	@Summary		List account transactions
//	@Tags			Balance
//	@Produce		json
//	@Param			id	path	int	true	"User id"
//	@Security		BearerAuth
//	@Success		200	{array}		dto.TransactionResponseDTO
//	@Success		204	{object}	utils.Response	"No data available"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/users/{id}/transactions [get]
func (h *BalanceHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := h.ledgerService.History(r.Context(), userID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if len(txs) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No data available")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTransactionsResponse(txs))
}

// Record godoc
//
//	@Summary		Record a manual account transaction
//	@Description	Append a signed adjustment to a user's ledger. Debits may not take the balance below zero.
//	@Tags			Balance
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.RecordTransactionRequestDTO	true	"Transaction"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.TransactionResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		402	{object}	utils.Response	"Insufficient balance"
//	@Failure		409	{object}	utils.Response	"Unknown user"
//	@Failure		422	{object}	utils.Response	"Zero amount or missing source"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/account-transactions [post]
func (h *BalanceHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordTransactionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := h.ledgerService.Record(r.Context(), auth.Actor(r.Context()), ledgerservice.NewTransaction{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Source:      domain.TransactionSource(req.Source),
		Description: req.Description,
	})
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewTransactionResponse(tx))
}

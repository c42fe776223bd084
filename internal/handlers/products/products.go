package products

//go:generate mockgen -source=products.go -destination=mock_products.go -package=products

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
	Create(ctx context.Context, actor int, name string, price decimal.Decimal, description string) (*domain.Product, error)
	Get(ctx context.Context, id int) (*domain.Product, error)
}

type Batcher interface {
	Enqueue(ctx context.Context, ids []int) (int, error)
}

type ProductHandler struct {
	productService Service
	batch          Batcher
}

func New(productService Service, batch Batcher) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		batch:          batch,
	}
}

// Create godoc
//
//	@Summary	Create a product
//	@Tags		Products
//	@Accept		json
//	@Produce	json
//	@Param		request	body	dto.CreateProductRequestDTO	true	"Product"
//	@Security	BearerAuth
//	@Success	201	{object}	dto.ProductResponseDTO
//	@Failure	400	{object}	utils.Response	"Invalid request body"
//	@Failure	422	{object}	utils.Response	"Negative price"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.productService.Create(r.Context(), auth.Actor(r.Context()), req.Name, req.Price, req.Description)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewProductResponse(product))
}

// Get godoc
//
//	@Summary	Get a product
//	@Tags		Products
//	@Produce	json
//	@Param		id	path	int	true	"Product id"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ProductResponseDTO
//	@Failure	404	{object}	utils.Response	"Product not found"
//	@Router		/api/products/{id} [get]
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewProductResponse(product))
}

// BatchProcess godoc
//
//	@Summary		Queue product processing
//	@Description	Extract hashtags and key/value attributes from product descriptions in the background
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.BatchProcessRequestDTO	true	"Products to process"
//	@Security		BearerAuth
//	@Success		202	{object}	dto.BatchProcessResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/products/batch-process [post]
func (h *ProductHandler) BatchProcess(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchProcessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	queued, err := h.batch.Enqueue(r.Context(), req.ProductIDs)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusAccepted, dto.BatchProcessResponseDTO{Queued: queued})
}

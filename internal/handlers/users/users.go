package users

//go:generate mockgen -source=users.go -destination=mock_users.go -package=users

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/dto"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/userservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/utils"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/validate"
)

type Service interface {
	Register(ctx context.Context, actor int, in userservice.NewUser) (*domain.User, error)
	Get(ctx context.Context, id int) (*domain.User, error)
}

type UserHandler struct {
	userService Service
}

func New(userService Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Create godoc
//
//	@Summary		Register a user
//	@Description	Register a user under an optional sponsor. The ten-level upline is copied from the sponsor once and never recomputed.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateUserRequestDTO	true	"User"
//	@Security		BearerAuth
//	@Success		201		{object}	dto.UserResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Admin not authorized"
//	@Failure		409		{object}	utils.Response	"Member id already taken"
//	@Failure		422		{object}	utils.Response	"Unknown sponsor"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.userService.Register(r.Context(), auth.Actor(r.Context()), userservice.NewUser{
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		MemberID:  req.MemberID,
		SponsorID: req.SponsorID,
		IsMember:  req.IsMember,
	})
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewUserResponse(user))
}

// Get godoc
//
//	@Summary		Get a user
//	@Tags			Users
//	@Produce		json
//	@Param			id	path	int	true	"User id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.UserResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid id"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Router			/api/users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IntParam(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

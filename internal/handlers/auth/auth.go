package auth

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/dto"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/utils"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/validate"
)

type Service interface {
	Register(ctx context.Context, actor int, login, password string) (*domain.Admin, error)
	Authenticate(ctx context.Context, login, password string) (*domain.Admin, error)
	GenerateToken(adminID int) (string, error)
}

type AuthHandler struct {
	authService Service
}

func New(authService Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login godoc
//
//	@Summary		Authenticate admin
//	@Description	Log in with an admin account and get a JWT token in the Authorization header
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.LoginResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Invalid credentials"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	admin, err := h.authService.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token, err := h.authService.GenerateToken(admin.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	utils.RespondWithJSON(w, http.StatusOK, dto.LoginResponseDTO{
		Message: "Admin successfully authenticated",
	})
}

// Register godoc
//
//	@Summary		Create an admin
//	@Description	An authenticated admin creates another admin account
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RegisterAdminRequestDTO	true	"Admin credentials"
//	@Security		BearerAuth
//	@Success		201		{object}	dto.AdminResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Admin not authorized"
//	@Failure		409		{object}	utils.Response	"Login already taken"
//	@Failure		422		{object}	utils.Response	"Weak password"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/admins [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterAdminRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	admin, err := h.authService.Register(r.Context(), auth.Actor(r.Context()), req.Login, req.Password)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewAdminResponse(admin))
}

package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"go.uber.org/zap"
)

type Response struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Response{Message: message})
}

// RespondWithDomainError renders business failures with their code and
// hides everything else behind a 500.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		zap.L().Error("request failed", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	RespondWithJSON(w, StatusFor(de), Response{Message: de.Message, Code: de.Code})
}

func StatusFor(de *domain.Error) int {
	if de == domain.ErrInsufficientBalance {
		return http.StatusPaymentRequired
	}
	switch de.Kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindConflict, domain.KindIntegrity:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindDependency:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

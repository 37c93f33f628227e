package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sevaportal/internal/domain"
	"sevaportal/internal/http/middleware"
	"sevaportal/internal/utils"
)

// RespondDomainError maps domain errors to HTTP responses. Anything not
// covered by a typed domain error is reported as internal without leaking
// the cause.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		RespondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsInvalidSegment(err):
		RespondError(c, http.StatusBadRequest, "invalid_segment", err.Error())
	case domain.IsNotFound(err):
		RespondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsSeatConflict(err):
		RespondError(c, http.StatusConflict, "seat_conflict", err.Error())
	case domain.IsAlreadyProcessed(err):
		RespondError(c, http.StatusConflict, "already_processed", err.Error())
	case domain.IsConflict(err):
		RespondError(c, http.StatusConflict, "conflict", err.Error())
	case domain.IsForbidden(err):
		RespondError(c, http.StatusForbidden, "forbidden", err.Error())
	case domain.IsTimeout(err):
		RespondError(c, http.StatusGatewayTimeout, "timeout", err.Error())
	default:
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", err.Error())
		RespondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}

// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxihub/internal/modules/booking"
	"taxihub/internal/modules/company"
	"taxihub/internal/modules/identity"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID ensures IDs are alphanumeric and at most 32 chars (matches the
// current ID generator).
func isValidID(v string) bool {
	if v == "" || len(v) > 32 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, booking.ErrUserNotFound),
		errors.Is(err, booking.ErrCompanyNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrUnauthorizedView),
		errors.Is(err, booking.ErrUnauthorizedEdit):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrActiveBooking):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeCompanyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, company.ErrNotFound),
		errors.Is(err, company.ErrUserNotFound),
		errors.Is(err, booking.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, company.ErrUnauthorizedView),
		errors.Is(err, company.ErrUnauthorizedEdit):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, company.ErrDriverAlreadyAdded),
		errors.Is(err, company.ErrAlreadyAffiliated),
		errors.Is(err, company.ErrNameTaken):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, company.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, identity.ErrNotFound),
		errors.Is(err, booking.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, identity.ErrAuthenticationFailed):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, identity.ErrUnauthorizedView),
		errors.Is(err, identity.ErrUnauthorizedEdit):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, identity.ErrEmailTaken):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, identity.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

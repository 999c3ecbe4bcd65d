package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-console/internal/ledger"
	"catalog-console/internal/models"
	"catalog-console/internal/services"
	"catalog-console/internal/wire"

	"github.com/gin-gonic/gin"
)

// respondError answers with the status matching err. Backend rejections the
// operator can act on keep their status; other backend failures become 502.
func respondError(c *gin.Context, action string, err error) {
	var statusErr *wire.StatusError
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: action, Message: err.Error()})
	case errors.Is(err, services.ErrNotConfirmed):
		c.JSON(http.StatusPreconditionRequired, models.ErrorResponse{Error: action, Message: err.Error()})
	case errors.Is(err, ledger.ErrProductNotFound), errors.Is(err, ledger.ErrImageNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: action, Message: err.Error()})
	case errors.Is(err, ledger.ErrTemporaryExists):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: action, Message: err.Error()})
	case errors.As(err, &statusErr):
		c.JSON(backendStatus(statusErr.StatusCode), models.ErrorResponse{Error: action, Message: statusErr.Message})
	case errors.Is(err, wire.ErrResponseFormat):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: action, Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: action, Message: err.Error()})
	}
}

func backendStatus(code int) int {
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity:
		return code
	}
	return http.StatusBadGateway
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id == 0 || id < models.TemporaryID {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid product id"})
		return 0, false
	}
	return id, true
}

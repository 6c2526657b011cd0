package handler

import (
	"errors"
	"net/http"

	"arqueo-backend/internal/config"
	service "arqueo-backend/internal/services/reconciliation"
	"arqueo-backend/internal/services/visits"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError writes the status matching err's kind.
func respondError(c *gin.Context, lg *logrus.Logger, funcName string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, visits.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateClient):
		c.JSON(http.StatusConflict, gin.H{"error": "El cliente ya está en la lista"})
	case errors.Is(err, service.ErrLockedRecord):
		c.JSON(http.StatusLocked, gin.H{"error": "El arqueo de esta fecha no se puede modificar"})
	case errors.Is(err, service.ErrSubmissionFailed):
		config.LogError(lg, "handler", funcName, c.Request.URL.Path, nil, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "No se pudo guardar el arqueo, intente de nuevo", "detail": err.Error()})
	default:
		config.LogError(lg, "handler", funcName, c.Request.URL.Path, nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

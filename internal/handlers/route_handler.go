package handler

import (
	"net/http"
	"strings"

	"arqueo-backend/internal/config"
	"arqueo-backend/internal/services/routes"
	"arqueo-backend/internal/services/visits"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouteHandler struct {
	importer *routes.Importer
	visits   *visits.Service
	logger   *logrus.Logger
}

func NewRouteHandler(importer *routes.Importer, v *visits.Service, logger *logrus.Logger) *RouteHandler {
	return &RouteHandler{importer: importer, visits: v, logger: logger}
}

// ListRoute returns the clients scheduled for the weekday code.
func (h *RouteHandler) ListRoute(c *gin.Context) {
	sellerID, ok := sellerParam(c)
	if !ok {
		return
	}
	items, err := h.visits.ListRoute(c.Request.Context(), sellerID, c.Param("day"))
	if err != nil {
		respondError(c, h.logger, "ListRoute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"day":   strings.ToUpper(c.Param("day")),
		"items": items,
		"total": len(items),
	})
}

// Upload imports a CSV or XLSX route sheet for the seller.
func (h *RouteHandler) Upload(c *gin.Context) {
	sellerID, ok := sellerParam(c)
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.logger.Warn("route upload without file")
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	h.logger.WithFields(logrus.Fields{
		"file":      header.Filename,
		"size":      header.Size,
		"seller_id": sellerID,
	}).Info("received route file")

	dryRun := c.Query("dry_run") == "true"
	summary, err := h.importer.ImportFile(c.Request.Context(), sellerID, header.Filename, file, dryRun)
	if err != nil {
		config.LogError(h.logger, "handler", "Upload", header.Filename, sellerID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file":    header.Filename,
		"summary": summary,
	})
}

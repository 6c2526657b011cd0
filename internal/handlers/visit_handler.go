package handler

import (
	"net/http"

	"arqueo-backend/internal/models"
	"arqueo-backend/internal/services/visits"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type VisitHandler struct {
	service *visits.Service
	logger  *logrus.Logger
}

func NewVisitHandler(s *visits.Service, logger *logrus.Logger) *VisitHandler {
	return &VisitHandler{service: s, logger: logger}
}

// Checklist returns the day's route with today's marks and progress.
func (h *VisitHandler) Checklist(c *gin.Context) {
	sellerID, ok := sellerParam(c)
	if !ok {
		return
	}
	list, err := h.service.Checklist(c.Request.Context(), sellerID, c.Param("day"))
	if err != nil {
		respondError(c, h.logger, "Checklist", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Save stores today's checklist.
func (h *VisitHandler) Save(c *gin.Context) {
	sellerID, ok := sellerParam(c)
	if !ok {
		return
	}
	var payload struct {
		ScheduledDay string         `json:"scheduled_day"`
		Visits       []models.Visit `json:"visits"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	entry, err := h.service.SaveVisits(c.Request.Context(), sellerID, payload.ScheduledDay, payload.Visits)
	if err != nil {
		respondError(c, h.logger, "Save", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "visits saved",
		"log":      entry,
		"progress": visits.ComputeProgress(payload.Visits),
	})
}

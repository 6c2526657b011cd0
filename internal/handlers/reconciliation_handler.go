package handler

import (
	"net/http"
	"strconv"

	"arqueo-backend/internal/models"
	service "arqueo-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReconciliationHandler struct {
	service *service.ReconciliationService
	logger  *logrus.Logger
}

func NewReconciliationHandler(s *service.ReconciliationService, logger *logrus.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{service: s, logger: logger}
}

type sessionView struct {
	SellerID    int64           `json:"seller_id"`
	Date        string          `json:"date"`
	State       service.State   `json:"state"`
	Editable    bool            `json:"editable"`
	SubmitLabel string          `json:"submit_label"`
	Record      models.Arqueo   `json:"record"`
	Totals      service.Totals  `json:"totals"`
	Display     service.Display `json:"display"`
}

func viewOf(sess *service.Session) sessionView {
	totals := sess.Totals()
	return sessionView{
		SellerID:    sess.SellerID,
		Date:        sess.Date,
		State:       sess.State,
		Editable:    sess.State.Mutable(),
		SubmitLabel: sess.State.SubmitLabel(),
		Record:      sess.Record,
		Totals:      totals,
		Display:     totals.Display(),
	}
}

func sellerParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("sellerId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seller ID"})
		return 0, false
	}
	return id, true
}

// Open returns the arqueo of the seller for the date with its lifecycle
// state.
func (h *ReconciliationHandler) Open(c *gin.Context) {
	sellerID, ok := sellerParam(c)
	if !ok {
		return
	}
	sess, err := h.service.Open(c.Request.Context(), sellerID, c.Param("date"))
	if err != nil {
		respondError(c, h.logger, "Open", err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

// PreviewTotals computes the totals of a posted form without saving it.
func (h *ReconciliationHandler) PreviewTotals(c *gin.Context) {
	var form service.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	rec, err := form.Record()
	if err != nil {
		respondError(c, h.logger, "PreviewTotals", err)
		return
	}
	totals := service.ComputeTotals(rec)
	c.JSON(http.StatusOK, gin.H{"totals": totals, "display": totals.Display()})
}

// AddCreditLine appends a client to the posted form and returns the new line
// with the client's prior balance.
func (h *ReconciliationHandler) AddCreditLine(c *gin.Context) {
	sellerID, ok := sellerParam(c)
	if !ok {
		return
	}
	var payload struct {
		ClientCode string       `json:"client_code"`
		Form       service.Form `json:"form"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()
	sess, err := h.service.Open(ctx, sellerID, c.Param("date"))
	if err != nil {
		respondError(c, h.logger, "AddCreditLine", err)
		return
	}
	if err := h.service.ApplyForm(ctx, sess, payload.Form); err != nil {
		respondError(c, h.logger, "AddCreditLine", err)
		return
	}
	line, err := h.service.AddCreditLine(ctx, sess, payload.ClientCode)
	if err != nil {
		respondError(c, h.logger, "AddCreditLine", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"line":          line,
		"prior_balance": service.FormatMoney(line.PriorBalance),
		"session":       viewOf(sess),
	})
}

// Submit saves the posted form as the seller's arqueo for the date.
func (h *ReconciliationHandler) Submit(c *gin.Context) {
	sellerID, ok := sellerParam(c)
	if !ok {
		return
	}
	var form service.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()
	sess, err := h.service.Open(ctx, sellerID, c.Param("date"))
	if err != nil {
		respondError(c, h.logger, "Submit", err)
		return
	}
	if err := h.service.ApplyForm(ctx, sess, form); err != nil {
		respondError(c, h.logger, "Submit", err)
		return
	}
	result, err := h.service.Submit(ctx, sess)
	if err != nil {
		respondError(c, h.logger, "Submit", err)
		return
	}

	message := "arqueo updated"
	if result.Created {
		message = "arqueo submitted"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   message,
		"arqueo_id": result.ArqueoID.String(),
		"created":   result.Created,
		"totals":    result.Totals,
		"display":   result.Totals.Display(),
		"session":   viewOf(sess),
	})
}

// History lists the seller's saved arqueos, optionally bounded by the from
// and to query parameters.
func (h *ReconciliationHandler) History(c *gin.Context) {
	sellerID, ok := sellerParam(c)
	if !ok {
		return
	}
	recs, err := h.service.History(c.Request.Context(), sellerID, c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, h.logger, "History", err)
		return
	}

	items := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		items = append(items, gin.H{
			"id":            rec.ID.String(),
			"date":          rec.Date,
			"weekday":       rec.Weekday,
			"net_sales":     service.FormatMoney(rec.NetSales),
			"expected_cash": service.FormatMoney(rec.ExpectedCash),
			"variance":      service.FormatVariance(rec.Variance),
			"outcome":       service.Classify(rec.Variance),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

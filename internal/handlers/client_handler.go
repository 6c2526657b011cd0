package handler

import (
	"net/http"
	"strings"

	"arqueo-backend/internal/cache"
	"arqueo-backend/internal/repository"
	service "arqueo-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ClientHandler struct {
	repo   *repository.ClientRepository
	cache  *cache.DebtorCache
	logger *logrus.Logger
}

func NewClientHandler(repo *repository.ClientRepository, c *cache.DebtorCache, logger *logrus.Logger) *ClientHandler {
	return &ClientHandler{repo: repo, cache: c, logger: logger}
}

// ListDebtors returns clients with an outstanding balance.
func (h *ClientHandler) ListDebtors(c *gin.Context) {
	clients, err := h.cache.Debtors(c.Request.Context(), h.repo.ListDebtors)
	if err != nil {
		respondError(c, h.logger, "ListDebtors", err)
		return
	}

	items := make([]gin.H, 0, len(clients))
	for _, cl := range clients {
		items = append(items, gin.H{
			"code":    cl.Code,
			"name":    cl.Name,
			"balance": cl.Balance,
			"display": service.FormatMoney(cl.Balance),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// RegisterSeller returns the seller for the Telegram ID, creating it on
// first contact.
func (h *ClientHandler) RegisterSeller(c *gin.Context) {
	var payload struct {
		TelegramID int64  `json:"telegram_id"`
		Name       string `json:"name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.TelegramID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_id required"})
		return
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		name = "Vendedor"
	}

	seller, err := h.repo.GetOrCreateSeller(c.Request.Context(), payload.TelegramID, name)
	if err != nil {
		respondError(c, h.logger, "RegisterSeller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seller": seller})
}

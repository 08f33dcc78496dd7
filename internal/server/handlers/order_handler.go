package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/mongodb"
)

// OrderHandler serves production orders and checklist updates.
type OrderHandler struct {
	orders mongodb.OrderRepository
	logger *zap.Logger
}

// NewOrderHandler constructs the HTTP handler adapter.
func NewOrderHandler(orders mongodb.OrderRepository, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{orders: orders, logger: logger}
}

// ListOrders returns orders in the requested status, in_progress by default.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	status := models.OrderStatus(c.DefaultQuery("status", string(models.OrderInProgress)))
	if status != models.OrderInProgress && status != models.OrderCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status de ordem inválido"})
		return
	}

	orders, err := h.orders.ListByStatus(c.Request.Context(), status)
	if err != nil {
		h.logger.Error("list orders failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erro ao carregar ordens. Tente novamente"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type checklistUpdateRequest struct {
	Checklist string `json:"checklist" binding:"required"`
	Item      string `json:"item" binding:"required"`
	Checked   *bool  `json:"checked" binding:"required"`
}

// UpdateChecklistItem flips one checklist item of an order. The derived
// progress and the order status are recomputed transactionally server side.
func (h *OrderHandler) UpdateChecklistItem(c *gin.Context) {
	var req checklistUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Informe checklist, item e o novo estado"})
		return
	}

	order, err := h.orders.UpdateChecklistItem(c.Request.Context(), c.Param("id"), req.Checklist, req.Item, *req.Checked)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ordem não encontrada"})
		return
	}
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Error()})
		return
	}
	if err != nil {
		h.logger.Error("checklist update failed", zap.String("order", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erro ao atualizar checklist. Tente novamente"})
		return
	}

	c.JSON(http.StatusOK, order)
}

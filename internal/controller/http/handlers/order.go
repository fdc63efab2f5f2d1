package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"paypalplus/internal/controller/apperror"
	"paypalplus/internal/domain/order"

	"github.com/gin-gonic/gin"
)

// OrderHandler serves order lookups for operators.
type OrderHandler struct {
	store order.Store
}

func NewOrderHandler(store order.Store) OrderHandler {
	return OrderHandler{store: store}
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, err := orderID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order_id"})
		return
	}

	o, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) GetNotes(c *gin.Context) {
	id, err := orderID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order_id"})
		return
	}

	notes, err := h.store.GetNotes(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if notes == nil {
		notes = []order.Note{}
	}

	c.JSON(http.StatusOK, notes)
}

func orderID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("order_id"), 10, 64)
}

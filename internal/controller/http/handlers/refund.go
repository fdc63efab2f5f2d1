package handlers

import (
	"errors"
	"net/http"

	"paypalplus/internal/controller/apperror"
	"paypalplus/internal/domain/order"
	"paypalplus/internal/domain/refund"
	"paypalplus/pkg/metrics"
	"paypalplus/pkg/money"

	"github.com/gin-gonic/gin"
)

// RefundHandler executes operator-initiated refunds against the provider.
type RefundHandler struct {
	store    order.Store
	refunder *refund.Refunder
}

func NewRefundHandler(store order.Store, refunder *refund.Refunder) RefundHandler {
	return RefundHandler{store: store, refunder: refunder}
}

type refundParams struct {
	// Amount zero means a full refund of the remaining balance.
	Amount float64 `json:"amount" binding:"omitempty,gt=0"`
	Reason string  `json:"reason"`
}

func (h *RefundHandler) Refund(c *gin.Context) {
	id, err := orderID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order_id"})
		return
	}

	var params refundParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
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

	if o.TransactionID == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": apperror.ErrNoSaleTransaction.Error()})
		return
	}

	remaining := money.Round(o.RemainingRefundable(), o.Currency)
	amount := params.Amount
	if amount == 0 {
		amount = remaining
	}
	if amount <= 0 || money.Round(amount, o.Currency) > remaining {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": apperror.ErrInvalidRefundAmount.Error()})
		return
	}

	ok, err := h.refunder.Execute(c.Request.Context(), refund.Request{
		Order:  o,
		SaleID: o.TransactionID,
		Amount: amount,
		Reason: params.Reason,
	})
	if !ok {
		metrics.RefundsTotal.WithLabelValues("failed").Inc()
		c.JSON(http.StatusBadGateway, gin.H{"message": "refund rejected by payment provider"})
		return
	}
	if err != nil {
		// The money left the provider account; only the local bookkeeping
		// failed. The operator must not retry the refund blindly.
		metrics.RefundsTotal.WithLabelValues("update_failed").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "refund executed but order update failed: " + err.Error(),
		})
		return
	}

	metrics.RefundsTotal.WithLabelValues("succeeded").Inc()
	c.JSON(http.StatusOK, gin.H{
		"order_id": o.ID,
		"amount":   money.Format(amount, o.Currency),
		"currency": o.Currency,
	})
}

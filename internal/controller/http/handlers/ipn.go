package handlers

import (
	"log/slog"
	"net/http"

	"paypalplus/internal/domain/ipn"
	"paypalplus/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// IPNHandler receives inbound payment notifications.
type IPNHandler struct {
	reconciler *ipn.Reconciler
	sandbox    bool
}

func NewIPNHandler(reconciler *ipn.Reconciler, sandbox bool) IPNHandler {
	return IPNHandler{reconciler: reconciler, sandbox: sandbox}
}

// Receive processes one notification. The response is 200 regardless of the
// processing result: a non-200 answer only makes PayPal redeliver a payload
// that will fail the same way, and every failure is already recorded against
// the order or in the logs.
func (h *IPNHandler) Receive(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		slog.ErrorContext(c.Request.Context(), "IPN error, unparseable form payload", "error", err)
		c.Status(http.StatusOK)
		return
	}

	n := ipn.NewNotification(c.Request.PostForm, h.sandbox)

	outcome, err := h.reconciler.Process(c.Request.Context(), n)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "IPN processing failed", "error", err)
	}
	metrics.NotificationsTotal.WithLabelValues(n.PaymentStatus(), string(outcome)).Inc()

	c.Status(http.StatusOK)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/ticketing-system/internal/api/metrics"
	"github.com/99minutos/ticketing-system/internal/core/domain"
	"github.com/99minutos/ticketing-system/internal/core/ports"
)

// PurchaseHandler handles ticket purchases.
type PurchaseHandler struct {
	service ports.PurchaseService
}

func NewPurchaseHandler(service ports.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

// Create handles POST /purchases.
//
// @Summary      Purchase tickets for an event
// @Description  Quantity accepts a number or a numeric string; NumEntradas is accepted when Quantity is absent.
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        body  body      purchaseRequest  true  "Purchase"
// @Success      201   {object}  purchaseResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /purchases [post]
func (h *PurchaseHandler) Create(c echo.Context) (err error) {
	start := time.Now()
	defer func() {
		result := "created"
		if err != nil {
			result = domain.KindOf(err).String()
		}
		metrics.PurchasesTotal.WithLabelValues(result).Inc()
		metrics.PurchaseDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid JSON body")
	}
	if err := c.Validate(&req); err != nil {
		return domain.Validation("UserId, EventId and Quantity >= 1 are required")
	}

	res, err := h.service.Purchase(c.Request().Context(), ports.PurchaseInput{
		UserID:         req.UserID,
		EventID:        req.EventID,
		Quantity:       req.quantity(),
		RegistrationID: req.RegistrationID,
	})
	if err != nil {
		return err
	}

	metrics.TicketsSoldTotal.Add(float64(res.Quantity))
	if res.Warning != "" {
		metrics.PurchaseWarningsTotal.Inc()
	}
	return c.JSON(http.StatusCreated, purchaseResponse{
		Message:        "purchase registered",
		RegistrationID: res.RegistrationID,
		EventID:        res.EventID,
		UserID:         res.UserID,
		Quantity:       res.Quantity,
		Warn:           res.Warning,
	})
}

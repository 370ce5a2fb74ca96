package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"atelier/internal/application/usecases/billing"
)

func (s *Server) ArchiveAndInvoiceHandler(c echo.Context) error {
	ev, err := s.billing.ArchiveAndInvoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ev)
}

type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method,omitempty"`
}

func (s *Server) MarkPaidHandler(c echo.Context) error {
	var request MarkPaidRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	ev, err := s.billing.MarkPaid(c.Request().Context(), c.Param("id"), billing.PaymentOptions{
		PaymentMethod: request.PaymentMethod,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ev)
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=paid overdue reminder"`
}

func (s *Server) UpdatePaymentStatusHandler(c echo.Context) error {
	var request UpdatePaymentStatusRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	ev, err := s.billing.UpdatePaymentStatus(c.Request().Context(), c.Param("id"), billing.PaymentStatus(request.Status))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ev)
}

func (s *Server) BillingStatsHandler(c echo.Context) error {
	stats, err := s.billing.Stats(c.Request().Context(), time.Now())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

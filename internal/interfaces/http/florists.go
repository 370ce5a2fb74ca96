package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"atelier/internal/domain/florists"
	"atelier/internal/entities"
)

type FloristRequest struct {
	Name           string                          `json:"name" validate:"required"`
	Email          string                          `json:"email" validate:"omitempty,email"`
	Phone          string                          `json:"phone"`
	Unavailability []entities.UnavailabilityPeriod `json:"unavailability,omitempty"`
}

func (s *Server) CreateFloristHandler(c echo.Context) error {
	var request FloristRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	now := time.Now()
	florist := entities.Florist{
		ID:             uuid.NewString(),
		Name:           request.Name,
		Email:          request.Email,
		Phone:          request.Phone,
		Unavailability: request.Unavailability,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.florists.Create(c.Request().Context(), florist); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, florist)
}

func (s *Server) UpdateFloristHandler(c echo.Context) error {
	var request FloristRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	existing, err := s.florists.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}

	existing.Name = request.Name
	existing.Email = request.Email
	existing.Phone = request.Phone
	existing.Unavailability = request.Unavailability
	existing.UpdatedAt = time.Now()

	if err := s.florists.Update(c.Request().Context(), existing); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, existing)
}

func (s *Server) ListFloristsHandler(c echo.Context) error {
	list, err := s.florists.List(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) FloristAvailabilityHandler(c echo.Context) error {
	florist, err := s.florists.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}

	events, err := s.planner.List(c.Request().Context())
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, florists.Compute(florist, events, time.Now()))
}

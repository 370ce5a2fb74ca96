package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"atelier/internal/entities"
)

type ClientRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Comments  string `json:"comments"`
}

func (s *Server) CreateClientHandler(c echo.Context) error {
	var request ClientRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	created, err := s.clients.Create(c.Request().Context(), entities.Client{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Email:     request.Email,
		Phone:     request.Phone,
		Address:   request.Address,
		Comments:  request.Comments,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) ListClientsHandler(c echo.Context) error {
	list, err := s.clients.List(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) GetClientHandler(c echo.Context) error {
	client, err := s.clients.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, client)
}

func (s *Server) UpdateClientHandler(c echo.Context) error {
	var request ClientRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	existing, err := s.clients.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}

	existing.FirstName = request.FirstName
	existing.LastName = request.LastName
	existing.Email = request.Email
	existing.Phone = request.Phone
	existing.Address = request.Address
	existing.Comments = request.Comments

	updated, err := s.clients.Update(c.Request().Context(), existing)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

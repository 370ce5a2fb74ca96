package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"atelier/internal/dateutil"
	"atelier/internal/entities"
)

type CreateEventRequest struct {
	Title    string  `json:"title" validate:"required"`
	Location string  `json:"location"`
	ClientID string  `json:"client_id"`
	Budget   float64 `json:"budget" validate:"gte=0"`

	// Date accepts an ISO-8601 string or an epoch number.
	Date    any    `json:"date" validate:"required"`
	EndDate any    `json:"end_date,omitempty"`
	EndTime string `json:"end_time,omitempty"`

	RequiredFlorists int                          `json:"required_florists" validate:"gte=0"`
	Florists         []entities.FloristAssignment `json:"florists,omitempty"`
	Expenses         []entities.Expense           `json:"expenses,omitempty"`
	Status           string                       `json:"status,omitempty"`
}

func (s *Server) CreateEventHandler(c echo.Context) error {
	var request CreateEventRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}
	if !dateutil.IsValid(request.Date) {
		return echo.NewHTTPError(http.StatusBadRequest, "date is not a valid date")
	}

	ev := entities.Event{
		Title:            request.Title,
		Location:         request.Location,
		ClientID:         request.ClientID,
		Budget:           request.Budget,
		Date:             dateutil.Coerce(request.Date),
		EndTime:          request.EndTime,
		RequiredFlorists: request.RequiredFlorists,
		Florists:         request.Florists,
		Expenses:         request.Expenses,
		Status:           entities.Status(request.Status),
	}
	if request.EndDate != nil && dateutil.IsValid(request.EndDate) {
		end := dateutil.Coerce(request.EndDate)
		ev.EndDate = &end
	}

	created, err := s.planner.Create(c.Request().Context(), ev)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) ListEventsHandler(c echo.Context) error {
	events, err := s.planner.List(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, events)
}

func (s *Server) GetEventHandler(c echo.Context) error {
	ev, err := s.planner.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ev)
}

func (s *Server) UpdateEventHandler(c echo.Context) error {
	var ev entities.Event
	if err := c.Bind(&ev); err != nil {
		return err
	}
	ev.ID = c.Param("id")

	updated, err := s.planner.Update(c.Request().Context(), ev)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) CancelEventHandler(c echo.Context) error {
	ev, err := s.planner.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ev)
}

type SyncStatusesResponse struct {
	Changed []entities.Event `json:"changed"`
}

// SyncStatusesHandler runs the derived-status reconciliation on demand; the
// scheduler calls the same usecase every minute.
func (s *Server) SyncStatusesHandler(c echo.Context) error {
	changed, err := s.planner.SyncStatuses(c.Request().Context(), time.Now())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, SyncStatusesResponse{Changed: changed})
}

// BoardHandler serves the kanban view: paid events drop off after their
// payment month ends. The plain list view never filters.
func (s *Server) BoardHandler(c echo.Context) error {
	events, err := s.planner.Board(c.Request().Context(), time.Now())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, events)
}

func (s *Server) UrgentEventsHandler(c echo.Context) error {
	limit := s.urgentLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	ranked, err := s.planner.Urgent(c.Request().Context(), time.Now(), limit)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, ranked)
}

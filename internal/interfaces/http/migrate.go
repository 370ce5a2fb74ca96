package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MigrateHandler pushes the local store into the cloud backend. Re-running
// it is safe: every record is upserted by id.
func (s *Server) MigrateHandler(c echo.Context) error {
	if s.migrator == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no cloud backend configured")
	}

	report, err := s.migrator.Run(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, report)
}

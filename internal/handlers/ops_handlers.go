package handlers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubbook_echo/internal/services"
)

// OpsHandler exposes operator endpoints; all of them sit behind the
// shared-secret trigger middleware.
type OpsHandler struct {
	db *gorm.DB
}

func NewOpsHandler(db *gorm.DB) *OpsHandler {
	return &OpsHandler{db: db}
}

// SweepStatuses runs the one-time activity status sweep on demand. The same
// sweep also runs periodically in the worker binary; both invocations are
// idempotent.
func (h *OpsHandler) SweepStatuses(c echo.Context) error {
	updated, err := services.SweepActivityStatuses(c.Request().Context(), h.db)
	if err != nil {
		log.Printf("Status sweep failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Status sweep failed")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"updated": updated})
}

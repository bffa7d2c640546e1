package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medichain/medichain/internal/platform/auth"
	"github.com/medichain/medichain/pkg/pagination"
)

// Authorizer decides whether a caller may read a patient's trail. Implemented
// by the access service: the patient themselves, any provider role, or a
// holder of a currently valid access grant.
type Authorizer interface {
	MayViewPatientData(caller, patient string) bool
}

// Handler serves per-patient audit queries.
type Handler struct {
	log   Log
	authz Authorizer
}

func NewHandler(log Log, authz Authorizer) *Handler {
	return &Handler{log: log, authz: authz}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/audit/:patient", h.QueryByPatient)
}

// QueryByPatient handles GET /audit/:patient.
func (h *Handler) QueryByPatient(c echo.Context) error {
	caller, ok := auth.AccountFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "caller identity is required")
	}

	patient := c.Param("patient")
	if !h.authz.MayViewPatientData(caller, patient) {
		return echo.NewHTTPError(http.StatusForbidden, "not authorized to view this patient's audit trail")
	}

	entries, err := h.log.QueryByPatient(c.Request().Context(), patient)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	pg := pagination.FromContext(c)
	total := len(entries)
	start, end := pg.Slice(total)

	return c.JSON(http.StatusOK, pagination.NewResponse(entries[start:end], total, pg.Limit, pg.Offset))
}

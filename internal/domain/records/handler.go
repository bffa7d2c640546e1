package records

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medichain/medichain/internal/domain/access"
	"github.com/medichain/medichain/internal/domain/identity"
	"github.com/medichain/medichain/internal/platform/auth"
	"github.com/medichain/medichain/pkg/pagination"
)

// Handler exposes the record reference store over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the record routes on the given Echo group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/records", h.Append)
	api.GET("/records/:patient", h.List)
}

func caller(c echo.Context) (string, error) {
	account, ok := auth.AccountFromContext(c.Request().Context())
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "caller identity is required")
	}
	return account, nil
}

// Append handles POST /records.
func (h *Handler) Append(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	var req AppendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ref, err := h.svc.Append(c.Request().Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrInsufficientRole):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrInvalidReference):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrPatientNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, ref)
}

// List handles GET /records/:patient.
func (h *Handler) List(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	refs, err := h.svc.List(c.Request().Context(), actor, c.Param("patient"))
	if err != nil {
		if errors.Is(err, access.ErrInsufficientRole) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	pg := pagination.FromContext(c)
	total := len(refs)
	start, end := pg.Slice(total)

	return c.JSON(http.StatusOK, pagination.NewResponse(refs[start:end], total, pg.Limit, pg.Offset))
}

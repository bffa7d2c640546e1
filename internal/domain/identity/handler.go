package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medichain/medichain/internal/domain/access"
	"github.com/medichain/medichain/internal/platform/auth"
	"github.com/medichain/medichain/pkg/pagination"
)

// Handler exposes the patient registry over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the patient routes on the given Echo group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients", h.Register)
	api.GET("/patients/:id", h.Get)
	api.GET("/patients", h.List)
}

func caller(c echo.Context) (string, error) {
	account, ok := auth.AccountFromContext(c.Request().Context())
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "caller identity is required")
	}
	return account, nil
}

// Register handles POST /patients.
func (h *Handler) Register(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.Register(c.Request().Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrInsufficientRole):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrInvalidRequest):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

// Get handles GET /patients/:id.
func (h *Handler) Get(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	p, err := h.svc.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, access.ErrInsufficientRole):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrPatientNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /patients.
func (h *Handler) List(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	patients, err := h.svc.List(c.Request().Context(), actor)
	if err != nil {
		if errors.Is(err, access.ErrInsufficientRole) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	pg := pagination.FromContext(c)
	total := len(patients)
	start, end := pg.Slice(total)

	return c.JSON(http.StatusOK, pagination.NewResponse(patients[start:end], total, pg.Limit, pg.Offset))
}

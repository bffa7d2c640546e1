package lab

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medichain/medichain/internal/domain/access"
	"github.com/medichain/medichain/internal/domain/identity"
	"github.com/medichain/medichain/internal/platform/auth"
	"github.com/medichain/medichain/pkg/pagination"
)

// Handler exposes the lab workflow over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the lab routes on the given Echo group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/lab/submissions", h.Submit)
	api.GET("/lab/submissions/:id", h.Get)
	api.POST("/lab/submissions/:id/review", h.Review)
	api.GET("/lab/pending", h.ListPending)
	api.GET("/lab/patient/:id", h.ListByPatient)
}

func caller(c echo.Context) (string, error) {
	account, ok := auth.AccountFromContext(c.Request().Context())
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "caller identity is required")
	}
	return account, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, access.ErrInsufficientRole):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrRejectionReasonRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrSubmissionNotFound), errors.Is(err, identity.ErrPatientNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyReviewed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Submit handles POST /lab/submissions.
func (h *Handler) Submit(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}

	sub, err := h.svc.Submit(c.Request().Context(), actor, req)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusCreated, sub)
}

// Get handles GET /lab/submissions/:id.
func (h *Handler) Get(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	sub, err := h.svc.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, sub)
}

// Review handles POST /lab/submissions/:id/review.
func (h *Handler) Review(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Action != ActionApprove && req.Action != ActionReject {
		return echo.NewHTTPError(http.StatusBadRequest, "action must be approve or reject")
	}

	sub, err := h.svc.Review(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, sub)
}

// ListPending handles GET /lab/pending.
func (h *Handler) ListPending(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	subs, err := h.svc.ListPending(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}

	pg := pagination.FromContext(c)
	total := len(subs)
	start, end := pg.Slice(total)

	return c.JSON(http.StatusOK, pagination.NewResponse(subs[start:end], total, pg.Limit, pg.Offset))
}

// ListByPatient handles GET /lab/patient/:id.
func (h *Handler) ListByPatient(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	subs, err := h.svc.ListByPatient(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}

	pg := pagination.FromContext(c)
	total := len(subs)
	start, end := pg.Slice(total)

	return c.JSON(http.StatusOK, pagination.NewResponse(subs[start:end], total, pg.Limit, pg.Offset))
}

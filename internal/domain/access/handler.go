package access

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medichain/medichain/internal/platform/auth"
)

// Handler exposes role management and access grant operations over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the role and access routes on the given Echo group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/roles", h.AssignRole)
	api.DELETE("/roles/:account", h.RevokeRole)
	api.GET("/roles/:account", h.GetRole)

	api.POST("/access/emergency", h.GrantEmergency)
	api.POST("/access/revoke", h.RevokeAccess)
	api.POST("/access/cleanup", h.CleanupAccess)
	api.GET("/access/validate", h.ValidateAccess)
	api.GET("/access/patient/:id", h.ListGrants)
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
	case errors.Is(err, ErrInsufficientRole), errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrCannotAssignAdmin), errors.Is(err, ErrCannotRevokeOwnRole):
		return http.StatusBadRequest
	case errors.Is(err, ErrRoleAlreadyAssigned), errors.Is(err, ErrAccessAlreadyGranted),
		errors.Is(err, ErrAlreadyRevoked), errors.Is(err, ErrTooManyAccesses):
		return http.StatusConflict
	case errors.Is(err, ErrNoRoleToRevoke), errors.Is(err, ErrAccessNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type assignRoleRequest struct {
	Account string `json:"account"`
	Role    string `json:"role"`
}

// AssignRole handles POST /roles.
func (h *Handler) AssignRole(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Account == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account is required")
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.AssignRole(c.Request().Context(), actor, req.Account, role); err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"account": req.Account,
		"role":    string(role),
	})
}

// RevokeRole handles DELETE /roles/:account.
func (h *Handler) RevokeRole(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	target := c.Param("account")
	if err := h.svc.RevokeRole(c.Request().Context(), actor, target); err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// GetRole handles GET /roles/:account.
func (h *Handler) GetRole(c echo.Context) error {
	if _, err := caller(c); err != nil {
		return err
	}

	account := c.Param("account")
	role, ok := h.svc.RoleOf(account)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "account has no role")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"account": account,
		"role":    string(role),
	})
}

type grantRequest struct {
	Patient    string `json:"patient"`
	ReasonHash string `json:"reason_hash"`
}

// GrantEmergency handles POST /access/emergency.
func (h *Handler) GrantEmergency(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	var req grantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Patient == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient is required")
	}

	grant, err := h.svc.GrantEmergencyAccess(c.Request().Context(), actor, req.Patient, req.ReasonHash)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusCreated, grant)
}

type accessPairRequest struct {
	Patient  string `json:"patient"`
	Accessor string `json:"accessor"`
}

// RevokeAccess handles POST /access/revoke.
func (h *Handler) RevokeAccess(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	var req accessPairRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Patient == "" || req.Accessor == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient and accessor are required")
	}

	if err := h.svc.RevokeAccess(c.Request().Context(), actor, req.Patient, req.Accessor); err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// CleanupAccess handles POST /access/cleanup.
func (h *Handler) CleanupAccess(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	var req accessPairRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Patient == "" || req.Accessor == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient and accessor are required")
	}

	if err := h.svc.CleanupExpiredAccess(c.Request().Context(), actor, req.Patient, req.Accessor); err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ValidateAccess handles GET /access/validate.
func (h *Handler) ValidateAccess(c echo.Context) error {
	if _, err := caller(c); err != nil {
		return err
	}

	patient := c.QueryParam("patient")
	accessor := c.QueryParam("accessor")
	if patient == "" || accessor == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient and accessor query parameters are required")
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"valid": h.svc.IsValidAccess(patient, accessor),
	})
}

// ListGrants handles GET /access/patient/:id.
func (h *Handler) ListGrants(c echo.Context) error {
	actor, err := caller(c)
	if err != nil {
		return err
	}

	patient := c.Param("id")
	if !h.svc.MayViewPatientData(actor, patient) {
		return echo.NewHTTPError(http.StatusForbidden, "not authorized to view this patient's access grants")
	}

	grants := h.svc.GrantsFor(patient)
	if grants == nil {
		grants = []AccessGrant{}
	}
	return c.JSON(http.StatusOK, grants)
}

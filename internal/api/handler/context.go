package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/detailiq/dashboard-system/internal/api/middleware"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// callerIdentity returns the identity injected by the Auth middleware. An
// empty identity is passed through: the services reject it as
// unauthenticated, which keeps the lookup order in one place.
func callerIdentity(c echo.Context) ports.Identity {
	return middleware.IdentityFrom(c)
}

// bindAndValidate binds the request body into req and runs the struct
// validator, mapping failures to 400 and 422 respectively.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

// intParam parses a non-negative integer path parameter.
func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return v, nil
}

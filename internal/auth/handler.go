package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"todolist-api/internal/storage"
)

// RegisterHandler serves POST /user with form fields username and password.
func RegisterHandler(svc *Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, err := svc.Register(c.Request().Context(), c.FormValue("username"), c.FormValue("password"))
		var invalid ValidationError
		switch {
		case errors.As(err, &invalid):
			return echo.NewHTTPError(http.StatusBadRequest, invalid.Error()).SetInternal(err)
		case errors.Is(err, storage.ErrAlreadyExists):
			return echo.NewHTTPError(http.StatusConflict, "user already exists").SetInternal(err)
		case err != nil:
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "registered successfully"})
	}
}

// LoginHandler serves POST /login and answers with a fresh token.
func LoginHandler(svc *Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := svc.Authenticate(c.Request().Context(), c.FormValue("username"), c.FormValue("password"))
		if errors.Is(err, ErrBadCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error()).SetInternal(err)
		} else if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"token": token})
	}
}

// Package app assembles the HTTP API.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"todolist-api/internal/auth"
	"todolist-api/internal/config"
	"todolist-api/internal/files"
	"todolist-api/internal/storage"
	"todolist-api/internal/todo"
)

// New creates the API server. The store must outlive it.
func New(cfg config.Config, logger *slog.Logger, store storage.Store) *echo.Echo {
	srv := echo.New()

	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)
	srv.HTTPErrorHandler = handleError(logger)

	srv.Use(
		middleware.RequestID(),
		logRequests(logger),
		middleware.Recover(),
		middleware.BodyLimit(cfg.HTTP.MaxUploadSize),
	)

	codec := auth.NewCodec([]byte(cfg.Auth.SecretKey), cfg.Auth.TokenTTL)
	svc := auth.NewService(store, auth.NewHasher(cfg.Auth.BcryptCost), codec)

	srv.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "TodoList")
	})
	srv.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"APP_ENV": cfg.Env})
	})
	srv.GET("/notification", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"notification": cfg.Notification})
	})
	srv.POST("/user", auth.RegisterHandler(svc))
	srv.POST("/login", auth.LoginHandler(svc))

	protected := srv.Group("", auth.Gate(codec, store, cfg.Auth.TokenHeader, logger))
	todo.Register(protected, store)
	files.Register(protected, store)

	return srv
}

// handleError renders every failure as {"message": ...}. Errors that are not
// HTTP errors are logged and masked as internal errors.
func handleError(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal error"
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			msg = fmt.Sprint(httpErr.Message)
		} else {
			logger.ErrorContext(c.Request().Context(), "unhandled error", slog.Any("error", err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"message": msg})
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "failed to write error response", slog.Any("error", err))
		}
	}
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("id", res.Header().Get(echo.HeaderXRequestID)),
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(
				req.Context(),
				slog.LevelDebug,
				"request handled",
				attrs...,
			)
			return nil
		}
	}
}

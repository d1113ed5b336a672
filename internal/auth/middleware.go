package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"todolist-api/internal/models"
	"todolist-api/internal/storage"
)

// DefaultTokenHeader carries the raw token, without a scheme prefix.
const DefaultTokenHeader = "x-access-tokens"

type contextKey struct{}

// UserFinder resolves a token subject to a registered user.
type UserFinder interface {
	GetUserByName(ctx context.Context, name string) (models.User, error)
}

// Gate returns middleware that admits a request only if the header carries a
// token that verifies under codec and names a registered user. The user is
// then available to the wrapped handler through [UserFromContext].
func Gate(codec *Codec, users UserFinder, header string, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()

			tokenStr := req.Header.Get(header)
			if tokenStr == "" {
				return unauthorized(ErrMissingToken)
			}
			name, err := codec.Verify(tokenStr)
			if err != nil {
				logger.DebugContext(ctx, "token rejected", slog.Any("error", err))
				return unauthorized(ErrInvalidToken)
			}
			user, err := users.GetUserByName(ctx, name)
			if errors.Is(err, storage.ErrNotFound) {
				logger.DebugContext(ctx, "token subject not registered", slog.String("name", name))
				return unauthorized(ErrInvalidToken)
			} else if err != nil {
				return fmt.Errorf("failed to resolve token subject: %w", err)
			}

			c.SetRequest(req.WithContext(WithUser(ctx, user)))
			return next(c)
		}
	}
}

func unauthorized(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, err.Error()).SetInternal(err)
}

// WithUser returns a context carrying the authenticated user. The gate sets
// it; it is exported for handler tests.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the user resolved by the gate.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(contextKey{}).(models.User)
	return user, ok && user.Name != ""
}

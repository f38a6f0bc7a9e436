package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// CallerClaims returns the verified claims the JWT middleware stored on the
// request context.
func CallerClaims(c echo.Context) (*Claims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("no token in context")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claims, nil
}

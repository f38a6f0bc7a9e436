package router

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"agrimap/internal/auth"
	"agrimap/internal/config"
	apperrors "agrimap/internal/errors"
	"agrimap/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	revocations auth.RevocationStore,
	authHandler *handler.AuthHandler,
	areaHandler *handler.AreaHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Uploaded images, served relative to the upload root.
	e.Static("/uploads", cfg.UploadDir)

	// Public routes
	e.POST("/user", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// Secured routes: JWT verification first, then the revocation check.
	secured := e.Group("", jwtMiddleware(jwtService), revocationGuard(revocations))

	secured.GET("/auth/user", authHandler.Profile)
	secured.POST("/auth/logout", authHandler.Logout)

	secured.POST("/area", areaHandler.Submit)
	secured.GET("/areas", areaHandler.List)
	secured.GET("/api/area/:id", areaHandler.Get)
	secured.GET("/soil-types", areaHandler.SoilTypes)
}

// jwtMiddleware verifies the bearer token and maps the distinct failure modes
// to stable machine-readable codes, all under 401.
func jwtMiddleware(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  jwtService.Secret(),
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			// A TokenError means extraction succeeded and parsing failed;
			// anything else is a missing or malformed bearer header.
			code := "TOKEN_MISSING"
			message := "missing or malformed bearer token"
			var tokenErr *echojwt.TokenError
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				code = "TOKEN_EXPIRED"
				message = "token expired"
			case errors.As(err, &tokenErr):
				code = "TOKEN_INVALID"
				message = "invalid token"
			}
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: message,
				Code:  code,
			})
		},
	})
}

// revocationGuard rejects tokens whose jti is in the revocation set. Runs only
// after the JWT middleware has verified the token.
func revocationGuard(store auth.RevocationStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := auth.CallerClaims(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "invalid token",
					Code:  "TOKEN_INVALID",
				})
			}
			revoked, _ := store.IsRevoked(c.Request().Context(), claims.ID)
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "token has been revoked",
					Code:  "TOKEN_REVOKED",
				})
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator. Field names in error output use
// the json tag so responses name fields the way clients sent them.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

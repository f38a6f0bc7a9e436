package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"agrimap/internal/auth"
	apperrors "agrimap/internal/errors"
	"agrimap/internal/service"
)

// AuthHandler handles registration and authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request. All six fields are
// mandatory; validation failures aggregate into one response.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Sex       string `json:"sex" validate:"required"`
	ContactNo string `json:"contact_no" validate:"required"`
}

// LoginRequest represents a login request. The "user" field carries the email.
type LoginRequest struct {
	User     string `json:"user" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Sex:       req.Sex,
		ContactNo: req.ContactNo,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, apperrors.ErrorResponse{
				Error: err.Error(),
				Code:  "EMAIL_TAKEN",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
			Error: "failed to register user",
			Code:  "REGISTRATION_FAILED",
		})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "user registered successfully",
		"user_id": user.ID,
	})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.User, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: err.Error(),
				Code:  "INVALID_CREDENTIALS",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
			Error: "failed to login",
			Code:  "LOGIN_FAILED",
		})
	}

	return c.JSON(http.StatusOK, LoginResponse{Token: token, UserID: user.ID})
}

// Profile godoc
// @Summary Current user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/user [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	claims, err := auth.CallerClaims(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "invalid token",
			Code:  "TOKEN_INVALID",
		})
	}

	user, err := h.authService.Profile(c.Request().Context(), claims.UserID)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, user)
}

// Logout godoc
// @Summary Revoke the presented token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if err := h.authService.Logout(c.Request().Context(), raw); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
			Error: "failed to logout",
			Code:  "LOGOUT_FAILED",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// validationError turns validator output into one aggregated 400 naming every
// offending field.
func validationError(err error) *echo.HTTPError {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make([]string, 0, len(vErrs))
		for _, fe := range vErrs {
			fields = append(fields, fe.Field())
		}
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: apperrors.NewValidationError(fields...).Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

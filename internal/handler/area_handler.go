package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"agrimap/internal/auth"
	apperrors "agrimap/internal/errors"
	"agrimap/internal/model"
	"agrimap/internal/service"
)

// AreaHandler handles area submission and retrieval endpoints.
type AreaHandler struct {
	areaService   service.AreaService
	uploadBaseURL string
}

// NewAreaHandler creates a new area handler.
func NewAreaHandler(areaService service.AreaService, uploadBaseURL string) *AreaHandler {
	return &AreaHandler{
		areaService:   areaService,
		uploadBaseURL: strings.TrimRight(uploadBaseURL, "/"),
	}
}

// CoordinatePayload is one boundary vertex. Pointers distinguish a missing
// field from a legitimate zero; a non-numeric value fails JSON binding.
type CoordinatePayload struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

// PhotoPayload is one base64 image with its declared MIME type.
type PhotoPayload struct {
	Data     string `json:"data" validate:"required"`
	MimeType string `json:"mime_type"`
}

// TopographyPayload carries optional slope and elevation readings.
type TopographyPayload struct {
	Slope        *int     `json:"slope"`
	MeanSeaLevel *float64 `json:"mean_sea_level"`
}

// FarmPayload carries optional soil and cultivation metadata. Hectares is a
// decimal string and mandatory when a farm block is present.
type FarmPayload struct {
	Soil            string `json:"soil"`
	SoilSuitability string `json:"soil_suitability"`
	Crop            string `json:"crop"`
	Hectares        string `json:"hectares" validate:"required"`
	Status          string `json:"status"`
}

// SubmitAreaRequest is the typed submission payload, validated in one pass
// before any persistence begins.
type SubmitAreaRequest struct {
	UserID       uint                `json:"user_id" validate:"required"`
	Name         string              `json:"area_name" validate:"required"`
	Region       string              `json:"region"`
	Province     string              `json:"province"`
	Organization string              `json:"organization"`
	Coordinates  []CoordinatePayload `json:"coordinates" validate:"required,min=1,dive"`
	Photos       []PhotoPayload      `json:"photos" validate:"omitempty,dive"`
	Topography   *TopographyPayload  `json:"topography"`
	Farm         *FarmPayload        `json:"farm"`
}

// Submit godoc
// @Summary Submit a new area aggregate
// @Tags areas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitAreaRequest true "Area submission"
// @Success 201 {object} model.Area
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /area [post]
func (h *AreaHandler) Submit(c echo.Context) error {
	claims, err := auth.CallerClaims(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "invalid token",
			Code:  "TOKEN_INVALID",
		})
	}

	var req SubmitAreaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	in := service.SubmitInput{
		OwnerID:      req.UserID,
		Name:         req.Name,
		Region:       req.Region,
		Province:     req.Province,
		Organization: req.Organization,
	}
	for _, cp := range req.Coordinates {
		in.Coordinates = append(in.Coordinates, service.CoordinateInput{
			Latitude:  *cp.Latitude,
			Longitude: *cp.Longitude,
		})
	}
	for _, pp := range req.Photos {
		in.Photos = append(in.Photos, service.PhotoInput{
			Payload:  pp.Data,
			MimeType: pp.MimeType,
		})
	}
	if req.Topography != nil {
		in.Topography = &service.TopographyInput{
			Slope:        req.Topography.Slope,
			MeanSeaLevel: req.Topography.MeanSeaLevel,
		}
	}
	if req.Farm != nil {
		hectares, err := decimal.NewFromString(req.Farm.Hectares)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
				Error: apperrors.NewValidationError("hectares").Error(),
				Code:  "VALIDATION_ERROR",
			})
		}
		in.Farm = &service.FarmInput{
			Soil:            req.Farm.Soil,
			SoilSuitability: req.Farm.SoilSuitability,
			Crop:            req.Farm.Crop,
			Hectares:        hectares,
			Status:          req.Farm.Status,
		}
	}

	area, err := h.areaService.Submit(c.Request().Context(), claims.UserID, in, service.DefaultSubmitPolicy())
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	h.decorate(area)
	return c.JSON(http.StatusCreated, area)
}

// List godoc
// @Summary List areas with pagination and search
// @Tags areas
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Page size (default 10)"
// @Param search query string false "Substring match on name, region or province"
// @Success 200 {object} service.ListResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /areas [get]
func (h *AreaHandler) List(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return validationError(apperrors.NewValidationError("page"))
	}
	perPage, err := queryInt(c, "per_page", 10)
	if err != nil {
		return validationError(apperrors.NewValidationError("per_page"))
	}

	result, err := h.areaService.List(c.Request().Context(), page, perPage, c.QueryParam("search"))
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	for i := range result.Entries {
		h.decorate(&result.Entries[i])
	}
	return c.JSON(http.StatusOK, result)
}

// Get godoc
// @Summary Get one area aggregate by id
// @Tags areas
// @Produce json
// @Security BearerAuth
// @Param id path int true "Area ID"
// @Success 200 {object} model.Area
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/area/{id} [get]
func (h *AreaHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return validationError(apperrors.NewValidationError("id"))
	}

	area, err := h.areaService.Get(c.Request().Context(), uint(id))
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	h.decorate(area)
	return c.JSON(http.StatusOK, area)
}

// SoilTypes godoc
// @Summary List the soil classification lookup
// @Tags areas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.SoilType
// @Failure 401 {object} errors.ErrorResponse
// @Router /soil-types [get]
func (h *AreaHandler) SoilTypes(c echo.Context) error {
	types, err := h.areaService.SoilTypes(c.Request().Context())
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, types)
}

// decorate joins stored relative image paths with the configured external base
// URL. Stored paths stay relative; only responses carry full URLs.
func (h *AreaHandler) decorate(area *model.Area) {
	for i := range area.Images {
		area.Images[i].URL = h.uploadBaseURL + "/" + area.Images[i].Path
	}
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("not an integer")
	}
	return v, nil
}

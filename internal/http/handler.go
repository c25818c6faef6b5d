package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parkguard-service/internal/cache"
	"parkguard-service/internal/domain/parking"
	"parkguard-service/internal/service"
)

// StatsSource exposes the cache snapshot for health reporting.
type StatsSource interface {
	Stats() cache.Snapshot
}

type Handler struct {
	parkingService *service.ParkingService
	stats          StatsSource
	log            zerolog.Logger
}

func NewHandler(parkingService *service.ParkingService, stats StatsSource, log zerolog.Logger) *Handler {
	return &Handler{
		parkingService: parkingService,
		stats:          stats,
		log:            log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/parking-status", h.parkingStatus)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache":  h.stats.Stats(),
	})
}

func (h *Handler) parkingStatus(c *gin.Context) {
	req, err := bindStatusRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	resp, err := h.parkingService.Status(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		h.log.Error().Err(err).Msg("failed to evaluate parking status")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// bindStatusRequest reads query parameters with the demo defaults
// (Manhattan, passenger vehicle). Full semantic validation happens in
// the service; this only rejects unparseable values.
func bindStatusRequest(c *gin.Context) (parking.StatusRequest, error) {
	req := parking.StatusRequest{
		Location: parking.Location{Lat: 40.7128, Lon: -74.0060, RadiusM: 50},
		Vehicle: parking.VehicleProfile{
			VehicleType: parking.VehiclePassenger,
			Agency:      parking.AgencyNone,
		},
		GPSAccuracyM: 5,
	}

	var err error
	if req.Location.Lat, err = floatQuery(c, "lat", req.Location.Lat); err != nil {
		return req, err
	}
	if req.Location.Lon, err = floatQuery(c, "lon", req.Location.Lon); err != nil {
		return req, err
	}
	if req.Location.RadiusM, err = intQuery(c, "radius", req.Location.RadiusM); err != nil {
		return req, err
	}
	if req.GPSAccuracyM, err = floatQuery(c, "gps_accuracy_m", req.GPSAccuracyM); err != nil {
		return req, err
	}

	if v := strings.TrimSpace(c.Query("vehicle_type")); v != "" {
		req.Vehicle.VehicleType = parking.VehicleType(strings.ToLower(v))
	}
	if v := strings.TrimSpace(c.Query("agency_affiliation")); v != "" {
		req.Vehicle.Agency = parking.Agency(strings.ToLower(v))
	}
	if v := strings.TrimSpace(c.Query("commercial_plate")); v != "" {
		parsed, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			return req, errors.New("commercial_plate must be a boolean")
		}
		req.Vehicle.CommercialPlate = parsed
	}
	if v := strings.TrimSpace(c.Query("hydrant_distance_ft")); v != "" {
		parsed, parseErr := strconv.ParseFloat(v, 64)
		if parseErr != nil {
			return req, errors.New("hydrant_distance_ft must be a number")
		}
		req.HydrantOverrideFt = &parsed
	}

	return req, nil
}

func floatQuery(c *gin.Context, name string, fallback float64) (float64, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return parsed, nil
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return parsed, nil
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

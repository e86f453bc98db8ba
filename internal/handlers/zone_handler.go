package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourbreathtaking/backend-safeindustech/internal/event"
	"github.com/yourbreathtaking/backend-safeindustech/internal/services"
	"github.com/yourbreathtaking/backend-safeindustech/internal/utils"
)

type ZoneHandler struct {
	StatusService services.IStatusService
	Publisher     event.IAlertPublisher
}

func NewZoneHandler(statusService services.IStatusService, publisher event.IAlertPublisher) *ZoneHandler {
	return &ZoneHandler{
		StatusService: statusService,
		Publisher:     publisher,
	}
}

func (h *ZoneHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/zones", h.ListZones)
	router.GET("/zones/status", h.GetZonesStatus)
	router.GET("/alarms", h.GetAlarms)
	router.GET("/employees/positions", h.GetEmployeePositions)
	router.GET("/observations/:datastream_id", h.GetLatestObservation)
	router.GET("/usine", h.GetSite)
	router.GET("/health", h.Health)
}

func (h *ZoneHandler) ListZones(c *gin.Context) {
	zones, err := h.StatusService.ListZones(c.Request.Context())
	if err != nil {
		errorCode, httpStatus := MapErrorToHTTPStatus(err)
		c.JSON(httpStatus, utils.CreateErrorResponse(errorCode, err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(zones))
}

// GetZonesStatus returns every zone's current safety state, projected from
// the in-memory zone state store.
func (h *ZoneHandler) GetZonesStatus(c *gin.Context) {
	status, err := h.StatusService.GetZonesStatus(c.Request.Context())
	if err != nil {
		errorCode, httpStatus := MapErrorToHTTPStatus(err)
		c.JSON(httpStatus, utils.CreateErrorResponse(errorCode, err.Error()))
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetAlarms returns only the zones whose current alert is set.
func (h *ZoneHandler) GetAlarms(c *gin.Context) {
	alarms, err := h.StatusService.GetAlarms(c.Request.Context())
	if err != nil {
		errorCode, httpStatus := MapErrorToHTTPStatus(err)
		c.JSON(httpStatus, utils.CreateErrorResponse(errorCode, err.Error()))
		return
	}
	c.JSON(http.StatusOK, alarms)
}

func (h *ZoneHandler) GetEmployeePositions(c *gin.Context) {
	positions, err := h.StatusService.GetEmployeePositions(c.Request.Context())
	if err != nil {
		errorCode, httpStatus := MapErrorToHTTPStatus(err)
		c.JSON(httpStatus, utils.CreateErrorResponse(errorCode, err.Error()))
		return
	}
	c.JSON(http.StatusOK, positions)
}

func (h *ZoneHandler) GetLatestObservation(c *gin.Context) {
	datastreamID, err := uuid.Parse(c.Param("datastream_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("BAD_REQUEST", "datastream_id is not a UUID"))
		return
	}

	obs, err := h.StatusService.GetLatestObservation(c.Request.Context(), datastreamID)
	if err != nil {
		errorCode, httpStatus := MapErrorToHTTPStatus(err)
		c.JSON(httpStatus, utils.CreateErrorResponse(errorCode, err.Error()))
		return
	}
	c.JSON(http.StatusOK, obs)
}

func (h *ZoneHandler) GetSite(c *gin.Context) {
	site, err := h.StatusService.GetSite(c.Request.Context())
	if err != nil {
		errorCode, httpStatus := MapErrorToHTTPStatus(err)
		c.JSON(httpStatus, utils.CreateErrorResponse(errorCode, err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(site))
}

// Health reports liveness plus the alert publisher's status. The service
// stays "ok" with an unhealthy publisher: events are best-effort.
func (h *ZoneHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"events": h.Publisher.HealthCheck(),
	})
}

package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/services"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/services/container"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/error/code"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/error/response"
	Logger "github.com/itfarmkart/CRM-rsolar-backend/pkg/logger"
)

// InterfaceOMPlatformController defines the O&M dashboard endpoints
type InterfaceOMPlatformController interface {
	GetSummary()
	GetDevices()
	GetSiteDetail()
}

// OMPlatformController handles O&M dashboard requests
type OMPlatformController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewOMPlatformController creates a new O&M controller
func NewOMPlatformController(ctx *gin.Context, container *container.ServiceContainer) *OMPlatformController {
	return &OMPlatformController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleOMPlatformFunc returns a gin handler dispatching to the named method
func HandleOMPlatformFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewOMPlatformController(ctx, container)

		switch method {
		case "getSummary":
			controller.GetSummary()
		case "getDevices":
			controller.GetDevices()
		case "getSiteDetail":
			controller.GetSiteDetail()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// 1. GetSummary returns the fleet status counts
// @Summary Fleet summary
// @Description Total, active, fault and inactive device counts from the monitoring cloud
// @Tags OM
// @Produce json
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /om/summary [get]
func (c *OMPlatformController) GetSummary() {
	siteService := c.Container.GetService("site").(services.InterfaceSiteService)
	summary, err := siteService.GetDeviceSummary(c.Ctx.Request.Context())
	if err != nil {
		Logger.Error("fetching device summary: %v", err)
		response.FailWithMessage(c.Ctx, code.ErrMonitoringUpstream, "monitoring cloud unavailable", nil)
		return
	}
	response.Success(c.Ctx, summary)
}

// 2. GetDevices lists monitored customers with their live device status
// @Summary List monitored devices
// @Tags OM
// @Produce json
// @Param search query string false "Match against customer name, serial or district"
// @Param status query string false "Filter by mapped status label"
// @Param limit query int false "Page size, default 10"
// @Param offset query int false "Page offset, default 0"
// @Success 200 {object} response.PagedResponse
// @Router /om/devices [get]
func (c *OMPlatformController) GetDevices() {
	var params services.OMDeviceParams
	if err := c.Ctx.ShouldBindQuery(&params); err != nil {
		response.ParamError(c.Ctx, "invalid query parameters: "+err.Error())
		return
	}

	siteService := c.Container.GetService("site").(services.InterfaceSiteService)
	rows, pagination, err := siteService.GetOMDevices(c.Ctx.Request.Context(), params)
	if err != nil {
		Logger.Error("listing devices: %v", err)
		response.ServerError(c.Ctx)
		return
	}
	response.SuccessPaged(c.Ctx, rows, pagination)
}

// 3. GetSiteDetail returns the composed dashboard payload for one site
// @Summary Site detail
// @Description Customer, device status, performance, faults, events and yield history for one serial
// @Tags OM
// @Produce json
// @Param siteId path string true "Device serial number"
// @Param period query string false "30 days, 90 days or 1 year"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /om/sites/{siteId} [get]
func (c *OMPlatformController) GetSiteDetail() {
	sn := c.Ctx.Param("siteId")
	if sn == "" {
		response.ParamError(c.Ctx, "site id is required")
		return
	}
	period := c.Ctx.Query("period")

	siteService := c.Container.GetService("site").(services.InterfaceSiteService)
	detail, err := siteService.GetSiteDetail(c.Ctx.Request.Context(), sn, period)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSiteNotFound):
			response.NotFound(c.Ctx, code.ErrSiteNotFound, "")
		case errors.Is(err, services.ErrInvalidPeriod):
			response.Fail(c.Ctx, code.ErrInvalidPeriod, nil)
		default:
			Logger.Error("building site detail for %s: %v", sn, err)
			response.ServerError(c.Ctx)
		}
		return
	}
	response.Success(c.Ctx, detail)
}

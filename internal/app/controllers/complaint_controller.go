package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/services"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/services/container"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/error/code"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/error/response"
	Logger "github.com/itfarmkart/CRM-rsolar-backend/pkg/logger"
)

// InterfaceComplaintController defines the complaint endpoints
type InterfaceComplaintController interface {
	GetComplaints()
	GetCategories()
	GetDepartments()
}

// ComplaintController handles complaint requests
type ComplaintController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewComplaintController creates a new complaint controller
func NewComplaintController(ctx *gin.Context, container *container.ServiceContainer) *ComplaintController {
	return &ComplaintController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleComplaintFunc returns a gin handler dispatching to the named method
func HandleComplaintFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewComplaintController(ctx, container)

		switch method {
		case "getComplaints":
			controller.GetComplaints()
		case "getCategories":
			controller.GetCategories()
		case "getDepartments":
			controller.GetDepartments()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// 1. GetComplaints lists complaints with filters, sorting and pagination
// @Summary List complaints
// @Description Filtered, sorted, paginated complaint listing with joined names
// @Tags Complaint
// @Produce json
// @Param search query string false "Match against customer name, complaint id or assigned person"
// @Param status query string false "Filter by status"
// @Param categoryId query int false "Filter by category"
// @Param departmentId query int false "Filter by department"
// @Param customerId query int false "Filter by customer"
// @Param startDate query string false "Created-at range start, YYYY-MM-DD"
// @Param endDate query string false "Created-at range end, YYYY-MM-DD"
// @Param sortBy query string false "Column label to sort by"
// @Param order query string false "asc or desc"
// @Param limit query int false "Page size, default 10"
// @Param offset query int false "Page offset, default 0"
// @Success 200 {object} response.PagedResponse
// @Router /complaints [get]
func (c *ComplaintController) GetComplaints() {
	var params services.ComplaintListParams
	if err := c.Ctx.ShouldBindQuery(&params); err != nil {
		response.ParamError(c.Ctx, "invalid query parameters: "+err.Error())
		return
	}

	complaintService := c.Container.GetService("complaint").(services.InterfaceComplaintService)
	rows, pagination, err := complaintService.ListComplaints(c.Ctx.Request.Context(), params)
	if err != nil {
		Logger.Error("listing complaints: %v", err)
		response.ServerError(c.Ctx)
		return
	}
	response.SuccessPaged(c.Ctx, rows, pagination)
}

// 2. GetCategories lists the complaint categories
// @Summary List complaint categories
// @Tags Complaint
// @Produce json
// @Success 200 {object} response.Response
// @Router /complaints/categories [get]
func (c *ComplaintController) GetCategories() {
	complaintService := c.Container.GetService("complaint").(services.InterfaceComplaintService)
	categories, err := complaintService.ListCategories(c.Ctx.Request.Context())
	if err != nil {
		Logger.Error("listing complaint categories: %v", err)
		response.ServerError(c.Ctx)
		return
	}
	response.Success(c.Ctx, categories)
}

// 3. GetDepartments lists the departments complaints are assigned to
// @Summary List departments
// @Tags Complaint
// @Produce json
// @Success 200 {object} response.Response
// @Router /complaints/departments [get]
func (c *ComplaintController) GetDepartments() {
	complaintService := c.Container.GetService("complaint").(services.InterfaceComplaintService)
	departments, err := complaintService.ListDepartments(c.Ctx.Request.Context())
	if err != nil {
		Logger.Error("listing departments: %v", err)
		response.ServerError(c.Ctx)
		return
	}
	response.Success(c.Ctx, departments)
}

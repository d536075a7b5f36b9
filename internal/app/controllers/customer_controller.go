package controllers

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/services"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/services/container"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/error/code"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/error/response"
	Logger "github.com/itfarmkart/CRM-rsolar-backend/pkg/logger"
)

// InterfaceCustomerController defines the customer endpoints
type InterfaceCustomerController interface {
	GetCustomers()
	GetDistricts()
	GetByIdentifier()
	GetZohoInventory()
	GetCustomerBill()
	VerifyS3Object()
	GetAllowedEmails()
}

// CustomerController handles customer requests
type CustomerController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewCustomerController creates a new customer controller
func NewCustomerController(ctx *gin.Context, container *container.ServiceContainer) *CustomerController {
	return &CustomerController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleCustomerFunc returns a gin handler dispatching to the named method
func HandleCustomerFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewCustomerController(ctx, container)

		switch method {
		case "getCustomers":
			controller.GetCustomers()
		case "getDistricts":
			controller.GetDistricts()
		case "getByIdentifier":
			controller.GetByIdentifier()
		case "getZohoInventory":
			controller.GetZohoInventory()
		case "getCustomerBill":
			controller.GetCustomerBill()
		case "verifyS3Object":
			controller.VerifyS3Object()
		case "getAllowedEmails":
			controller.GetAllowedEmails()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// mobilePattern accepts the ten-digit numbers the CRM stores
var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// 1. GetCustomers lists customers with filters, sorting and pagination
// @Summary List customers
// @Description Filtered, sorted, paginated customer listing with agreement dates
// @Tags Customer
// @Produce json
// @Param search query string false "Match against name, mobile, email or IVRS number"
// @Param state query string false "Filter by state"
// @Param district query string false "Filter by district"
// @Param plantType query string false "Filter by plant type"
// @Param sortBy query string false "Column label to sort by"
// @Param order query string false "asc or desc"
// @Param limit query int false "Page size, default 10"
// @Param offset query int false "Page offset, default 0"
// @Success 200 {object} response.PagedResponse
// @Router /customers [get]
func (c *CustomerController) GetCustomers() {
	var params services.CustomerListParams
	if err := c.Ctx.ShouldBindQuery(&params); err != nil {
		response.ParamError(c.Ctx, "invalid query parameters: "+err.Error())
		return
	}

	customerService := c.Container.GetService("customer").(services.InterfaceCustomerService)
	rows, pagination, err := customerService.ListCustomers(c.Ctx.Request.Context(), params)
	if err != nil {
		Logger.Error("listing customers: %v", err)
		response.ServerError(c.Ctx)
		return
	}
	response.SuccessPaged(c.Ctx, rows, pagination)
}

// 2. GetDistricts lists the distinct customer districts
// @Summary List districts
// @Tags Customer
// @Produce json
// @Success 200 {object} response.Response
// @Router /customers/districts [get]
func (c *CustomerController) GetDistricts() {
	customerService := c.Container.GetService("customer").(services.InterfaceCustomerService)
	districts, err := customerService.ListDistricts(c.Ctx.Request.Context())
	if err != nil {
		Logger.Error("listing districts: %v", err)
		response.ServerError(c.Ctx)
		return
	}
	response.Success(c.Ctx, districts)
}

// 3. GetByIdentifier returns a customer detail for a numeric id or the
// invoiced equipment for a ten-digit mobile number. One route serves both
// because the identifiers cannot collide.
// @Summary Get customer detail or invoiced equipment
// @Tags Customer
// @Produce json
// @Param identifier path string true "Customer ID or ten-digit mobile number"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{identifier} [get]
func (c *CustomerController) GetByIdentifier() {
	identifier := c.Ctx.Param("identifier")
	if mobilePattern.MatchString(identifier) {
		c.getInventoryByMobile(identifier)
		return
	}

	id, err := strconv.Atoi(identifier)
	if err != nil || id < 1 {
		response.ParamError(c.Ctx, "invalid customer id")
		return
	}

	customerService := c.Container.GetService("customer").(services.InterfaceCustomerService)
	detail, err := customerService.GetCustomerByID(c.Ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c.Ctx, code.ErrCustomerNotFound, "")
			return
		}
		Logger.Error("fetching customer %d: %v", id, err)
		response.ServerError(c.Ctx)
		return
	}
	response.Success(c.Ctx, detail)
}

// 4. GetZohoInventory syncs every invoicing customer back into the CRM
// @Summary Sync invoicing customers
// @Description Walks all invoices, resolves customer mobiles and writes warranty expiries back
// @Tags Customer
// @Produce json
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /customers/zoho-inventory [get]
func (c *CustomerController) GetZohoInventory() {
	zohoService := c.Container.GetService("zoho").(services.InterfaceZohoService)
	summaries, err := zohoService.GetAllCustomersWithInvoices(c.Ctx.Request.Context())
	if err != nil {
		Logger.Error("syncing invoicing customers: %v", err)
		response.FailWithMessage(c.Ctx, code.ErrInvoicingUpstream, "invoicing sync failed", nil)
		return
	}
	response.Success(c.Ctx, summaries)
}

// getInventoryByMobile serves the mobile-number branch of GetByIdentifier
func (c *CustomerController) getInventoryByMobile(mobile string) {
	zohoService := c.Container.GetService("zoho").(services.InterfaceZohoService)
	inventory, err := zohoService.GetInventoryDetailsByMobile(c.Ctx.Request.Context(), mobile)
	if err != nil {
		Logger.Error("fetching inventory for %s: %v", mobile, err)
		response.FailWithMessage(c.Ctx, code.ErrInvoicingUpstream, "invoicing lookup failed", nil)
		return
	}
	if len(inventory) == 0 {
		response.NotFound(c.Ctx, code.ErrInvoiceNotFound, "")
		return
	}
	response.Success(c.Ctx, inventory)
}

// 5. GetCustomerBill streams the customer's latest invoice as PDF
// @Summary Download invoice PDF
// @Tags Customer
// @Produce application/pdf
// @Param identifier path string true "Ten-digit mobile number"
// @Success 200 {file} binary
// @Failure 404 {object} response.Response
// @Router /customers/{identifier}/bill [get]
func (c *CustomerController) GetCustomerBill() {
	mobile := c.Ctx.Param("identifier")
	if !mobilePattern.MatchString(mobile) {
		response.ParamError(c.Ctx, "invalid mobile number")
		return
	}

	zohoService := c.Container.GetService("zoho").(services.InterfaceZohoService)
	inventory, err := zohoService.GetInventoryDetailsByMobile(c.Ctx.Request.Context(), mobile)
	if err != nil {
		Logger.Error("resolving invoice for %s: %v", mobile, err)
		response.FailWithMessage(c.Ctx, code.ErrInvoicingUpstream, "invoicing lookup failed", nil)
		return
	}
	if len(inventory) == 0 {
		response.NotFound(c.Ctx, code.ErrInvoiceNotFound, "")
		return
	}

	pdf, err := zohoService.GetInvoicePdf(c.Ctx.Request.Context(), inventory[0].InvoiceID)
	if err != nil {
		Logger.Error("downloading invoice pdf for %s: %v", mobile, err)
		response.FailWithMessage(c.Ctx, code.ErrInvoicingUpstream, "invoice download failed", nil)
		return
	}

	c.Ctx.Header("Content-Disposition", `attachment; filename="invoice-`+inventory[0].InvoiceNumber+`.pdf"`)
	c.Ctx.Data(code.StatusOK, "application/pdf", pdf)
}

// 6. VerifyS3Object checks whether a document exists in the bucket
// @Summary Verify stored document
// @Tags Customer
// @Produce json
// @Param key query string true "Object key"
// @Success 200 {object} response.Response
// @Router /customers/verify-s3 [get]
func (c *CustomerController) VerifyS3Object() {
	key := c.Ctx.Query("key")
	if key == "" {
		response.ParamError(c.Ctx, "key is required")
		return
	}

	s3Service, ok := c.Container.GetService("s3").(services.InterfaceS3Service)
	if !ok || s3Service == nil {
		response.FailWithMessage(c.Ctx, code.ErrUnknown, "document storage unavailable", nil)
		return
	}

	exists, err := s3Service.VerifyObject(c.Ctx.Request.Context(), key)
	if err != nil {
		Logger.Error("verifying document %s: %v", key, err)
		response.ServerError(c.Ctx)
		return
	}
	response.Success(c.Ctx, gin.H{"key": key, "exists": exists})
}

// 7. GetAllowedEmails returns the dashboard access allowlist
// @Summary List allowed emails
// @Tags Customer
// @Produce json
// @Success 200 {object} response.Response
// @Router /emails [get]
func (c *CustomerController) GetAllowedEmails() {
	customerService := c.Container.GetService("customer").(services.InterfaceCustomerService)
	emails, err := customerService.ListAllowedEmails(c.Ctx.Request.Context())
	if err != nil {
		Logger.Error("listing allowed emails: %v", err)
		response.ServerError(c.Ctx)
		return
	}
	response.Success(c.Ctx, emails)
}

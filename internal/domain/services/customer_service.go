package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/models"
)

// CustomerListParams filters, sorts and pages the customer listing
type CustomerListParams struct {
	Search    string `form:"search"`
	State     string `form:"state"`
	District  string `form:"district"`
	PlantType string `form:"plantType"`
	SortBy    string `form:"sortBy"`
	Order     string `form:"order"`
	models.PaginationQuery
}

// customerSortMapping maps the UI column labels to their SQL columns
var customerSortMapping = map[string]string{
	"IVRS":          "c.ivrsNumber",
	"Name":          "c.customerName",
	"Mobile":        "c.mobileNumber",
	"District":      "c.district",
	"Tehsil":        "c.tehsil",
	"Delivery Date": "ca.systemDeliveryDate",
	"Install Date":  "ca.agreementSignatureDate",
	"Added Date":    "c.addedDate",
	"Plant Type":    "c.solarPlantType",
}

// CustomerWithAgreement is one listing row: the customer joined to their
// agreement dates
type CustomerWithAgreement struct {
	models.Customer        `gorm:"embedded"`
	AgreementSignatureDate *time.Time `gorm:"column:agreementSignatureDate" json:"agreementSignatureDate"`
	SystemDeliveryDate     *time.Time `gorm:"column:systemDeliveryDate" json:"systemDeliveryDate"`
}

// CustomerDetail is the full customer view with equipment rows
type CustomerDetail struct {
	models.Customer
	Agreement *models.CustomerAgreement `json:"agreement,omitempty"`
	Panels    []models.PanelDetail      `json:"panels"`
	Inverters []models.InverterDetail   `json:"inverters"`
}

// InterfaceCustomerService defines the customer read operations
type InterfaceCustomerService interface {
	ListCustomers(ctx context.Context, params CustomerListParams) ([]CustomerWithAgreement, *models.PaginationResult, error)
	GetCustomerByID(ctx context.Context, id uint) (*CustomerDetail, error)
	ListDistricts(ctx context.Context) ([]string, error)
	ListAllowedEmails(ctx context.Context) ([]models.AllowedEmail, error)
}

// CustomerService reads the customer tables
type CustomerService struct {
	db *gorm.DB
}

// NewCustomerService creates a new customer service
func NewCustomerService(db *gorm.DB) InterfaceCustomerService {
	return &CustomerService{db: db}
}

// listQuery builds the filtered customer/agreement join shared by the
// listing and its count
func (s *CustomerService) listQuery(ctx context.Context, params CustomerListParams) *gorm.DB {
	query := s.db.WithContext(ctx).
		Table("customerDetails c").
		Joins("LEFT JOIN customerAgreementDetails ca ON c.customerId = ca.customer_id")

	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.Where(
			"c.customerName LIKE ? OR c.mobileNumber LIKE ? OR c.emailId LIKE ? OR c.ivrsNumber LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if params.State != "" {
		query = query.Where("c.state = ?", params.State)
	}
	if params.District != "" {
		query = query.Where("c.district = ?", params.District)
	}
	if params.PlantType != "" {
		query = query.Where("c.solarPlantType = ?", params.PlantType)
	}
	return query
}

// ListCustomers returns a filtered, sorted page of customers with their
// agreement dates
func (s *CustomerService) ListCustomers(ctx context.Context, params CustomerListParams) ([]CustomerWithAgreement, *models.PaginationResult, error) {
	params.Normalize()

	var total int64
	if err := s.listQuery(ctx, params).Select("c.customerId").Count(&total).Error; err != nil {
		return nil, nil, err
	}

	orderColumn, ok := customerSortMapping[params.SortBy]
	direction := "DESC"
	if params.Order == "asc" {
		direction = "ASC"
	}
	if !ok {
		orderColumn, direction = "c.addedDate", "DESC"
	}

	var rows []CustomerWithAgreement
	err := s.listQuery(ctx, params).
		Select("c.*, ca.agreementSignatureDate, ca.systemDeliveryDate").
		Order(orderColumn + " " + direction).
		Limit(params.Limit).
		Offset(params.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}
	return rows, models.NewPaginationResult(total, params.Limit, params.Offset), nil
}

// GetCustomerByID returns one customer with agreement, panel and inverter
// rows. A miss returns gorm.ErrRecordNotFound.
func (s *CustomerService) GetCustomerByID(ctx context.Context, id uint) (*CustomerDetail, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).
		Where("customerId = ?", id).
		First(&customer).Error; err != nil {
		return nil, err
	}

	detail := &CustomerDetail{Customer: customer}

	var agreement models.CustomerAgreement
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", id).
		Order("id DESC").
		First(&agreement).Error
	if err == nil {
		detail.Agreement = &agreement
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", id).
		Find(&detail.Panels).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", id).
		Find(&detail.Inverters).Error; err != nil {
		return nil, err
	}
	return detail, nil
}

// ListDistricts returns the distinct non-empty districts ascending
func (s *CustomerService) ListDistricts(ctx context.Context) ([]string, error) {
	var districts []string
	err := s.db.WithContext(ctx).
		Model(&models.Customer{}).
		Distinct().
		Where("district IS NOT NULL AND district != ''").
		Order("district ASC").
		Pluck("district", &districts).Error
	return districts, err
}

// ListAllowedEmails returns the dashboard access allowlist
func (s *CustomerService) ListAllowedEmails(ctx context.Context) ([]models.AllowedEmail, error) {
	var emails []models.AllowedEmail
	err := s.db.WithContext(ctx).Order("email ASC").Find(&emails).Error
	return emails, err
}

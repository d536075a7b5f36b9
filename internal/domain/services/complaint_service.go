package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/models"
)

// ComplaintListParams filters, sorts and pages the complaint listing
type ComplaintListParams struct {
	Search       string `form:"search"`
	Status       string `form:"status"`
	CategoryID   uint   `form:"categoryId"`
	DepartmentID uint   `form:"departmentId"`
	CustomerID   uint   `form:"customerId"`
	StartDate    string `form:"startDate"`
	EndDate      string `form:"endDate"`
	SortBy       string `form:"sortBy"`
	Order        string `form:"order"`
	models.PaginationQuery
}

// complaintSortMapping maps the UI column labels to their SQL columns
var complaintSortMapping = map[string]string{
	"ID":              "cp.id",
	"Status":          "cp.status",
	"Date":            "cp.createdAt",
	"Resolution Date": "cp.resolveDate",
	"Assigned Person": "d.personName",
	"Customer":        "c.customerName",
	"Category":        "cat.name",
	"Department":      "d.departmentName",
}

// ComplaintRow is one listing row with the joined customer, category and
// department names resolved
type ComplaintRow struct {
	ID             uint       `gorm:"column:id" json:"id"`
	Status         string     `gorm:"column:status" json:"status"`
	Date           time.Time  `gorm:"column:date" json:"date"`
	ResolutionDate *time.Time `gorm:"column:resolutionDate" json:"resolutionDate"`
	AssignedPerson string     `gorm:"column:assignedPerson" json:"assignedPerson"`
	CustomerName   string     `gorm:"column:customerName" json:"customerName"`
	CategoryName   string     `gorm:"column:categoryName" json:"categoryName"`
	DepartmentName string     `gorm:"column:departmentName" json:"departmentName"`
}

// InterfaceComplaintService defines the complaint read operations
type InterfaceComplaintService interface {
	ListComplaints(ctx context.Context, params ComplaintListParams) ([]ComplaintRow, *models.PaginationResult, error)
	ListCategories(ctx context.Context) ([]models.ComplaintCategory, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
}

// ComplaintService reads the complaint tables
type ComplaintService struct {
	db *gorm.DB
}

// NewComplaintService creates a new complaint service
func NewComplaintService(db *gorm.DB) InterfaceComplaintService {
	return &ComplaintService{db: db}
}

// listQuery builds the filtered complaint join shared by the listing and
// its count
func (s *ComplaintService) listQuery(ctx context.Context, params ComplaintListParams) *gorm.DB {
	query := s.db.WithContext(ctx).
		Table("complaints cp").
		Joins("LEFT JOIN customerDetails c ON cp.customerId = c.customerId").
		Joins("LEFT JOIN complaintCategories cat ON cp.category = cat.id").
		Joins("LEFT JOIN departments d ON cp.assignmentPerson = d.id")

	switch {
	case params.StartDate != "" && params.EndDate != "":
		query = query.Where("cp.createdAt BETWEEN ? AND ?", params.StartDate, params.EndDate)
	case params.StartDate != "":
		query = query.Where("cp.createdAt >= ?", params.StartDate)
	case params.EndDate != "":
		query = query.Where("cp.createdAt <= ?", params.EndDate)
	}

	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.Where(
			"c.customerName LIKE ? OR cp.id LIKE ? OR d.personName LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if params.Status != "" {
		query = query.Where("cp.status = ?", params.Status)
	}
	if params.CategoryID != 0 {
		query = query.Where("cp.category = ?", params.CategoryID)
	}
	if params.DepartmentID != 0 {
		query = query.Where("cp.assignmentPerson = ?", params.DepartmentID)
	}
	if params.CustomerID != 0 {
		query = query.Where("cp.customerId = ?", params.CustomerID)
	}
	return query
}

// ListComplaints returns a filtered, sorted page of complaints with the
// joined names resolved
func (s *ComplaintService) ListComplaints(ctx context.Context, params ComplaintListParams) ([]ComplaintRow, *models.PaginationResult, error) {
	params.Normalize()

	var total int64
	if err := s.listQuery(ctx, params).Select("cp.id").Count(&total).Error; err != nil {
		return nil, nil, err
	}

	orderColumn, ok := complaintSortMapping[params.SortBy]
	direction := "DESC"
	if params.Order == "asc" {
		direction = "ASC"
	}
	if !ok {
		orderColumn, direction = "cp.createdAt", "DESC"
	}

	var rows []ComplaintRow
	err := s.listQuery(ctx, params).
		Select(`cp.id, cp.status, cp.createdAt AS date, cp.resolveDate AS resolutionDate,
			d.personName AS assignedPerson, c.customerName, cat.name AS categoryName, d.departmentName`).
		Order(orderColumn + " " + direction).
		Limit(params.Limit).
		Offset(params.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}
	return rows, models.NewPaginationResult(total, params.Limit, params.Offset), nil
}

// ListCategories returns every complaint category
func (s *ComplaintService) ListCategories(ctx context.Context) ([]models.ComplaintCategory, error) {
	var categories []models.ComplaintCategory
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// ListDepartments returns every department
func (s *ComplaintService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	err := s.db.WithContext(ctx).Order("departmentName ASC").Find(&departments).Error
	return departments, err
}

package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/models"
)

// ComplaintUpdateRow is one complaint update joined to its parent
// complaint, as shown on the site timeline
type ComplaintUpdateRow struct {
	UpdateText string     `json:"updateText"`
	CreatedAt  *time.Time `json:"createdAt"`
	Status     string     `json:"status"`
	Category   string     `json:"category"`
}

// InterfaceLedgerService defines read access to the local CRM ledger
type InterfaceLedgerService interface {
	GetCustomerByDeviceSN(ctx context.Context, sn string) (*models.Customer, *models.CustomerAgreement, error)
	GetLifetimeYield(ctx context.Context, sn string) (float64, error)
	GetYieldBetween(ctx context.Context, sn string, from, to time.Time) (float64, error)
	GetYieldHistory(ctx context.Context, sn string, since time.Time) ([]models.DailyYield, error)
	GetRecentComplaintUpdates(ctx context.Context, customerID uint, limit int) ([]ComplaintUpdateRow, error)
	ListMonitoredCustomers(ctx context.Context, search string) ([]models.Customer, error)
}

// LedgerService reads the CRM tables that back site aggregation. It never
// writes; intake flows own the rows.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new ledger reader
func NewLedgerService(db *gorm.DB) InterfaceLedgerService {
	return &LedgerService{db: db}
}

// GetCustomerByDeviceSN resolves the customer owning a device serial along
// with their latest agreement. The agreement is optional; a customer miss
// returns gorm.ErrRecordNotFound.
func (s *LedgerService) GetCustomerByDeviceSN(ctx context.Context, sn string) (*models.Customer, *models.CustomerAgreement, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).
		Where("solar_device_id = ?", sn).
		First(&customer).Error; err != nil {
		return nil, nil, err
	}

	var agreement models.CustomerAgreement
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customer.CustomerID).
		Order("id DESC").
		First(&agreement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &customer, nil, nil
		}
		return nil, nil, err
	}
	return &customer, &agreement, nil
}

// GetLifetimeYield sums every recorded daily yield for a device serial
func (s *LedgerService) GetLifetimeYield(ctx context.Context, sn string) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).
		Model(&models.DailyYield{}).
		Select("COALESCE(SUM(yieldKwh), 0)").
		Where("deviceSN = ?", sn).
		Scan(&total).Error
	return total, err
}

// GetYieldBetween sums daily yield inside a closed date range
func (s *LedgerService) GetYieldBetween(ctx context.Context, sn string, from, to time.Time) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).
		Model(&models.DailyYield{}).
		Select("COALESCE(SUM(yieldKwh), 0)").
		Where("deviceSN = ? AND yieldDate >= ? AND yieldDate <= ?", sn, from, to).
		Scan(&total).Error
	return total, err
}

// GetYieldHistory returns the daily yield rows from since onward, oldest
// first, filtered on the database side
func (s *LedgerService) GetYieldHistory(ctx context.Context, sn string, since time.Time) ([]models.DailyYield, error) {
	var rows []models.DailyYield
	err := s.db.WithContext(ctx).
		Where("deviceSN = ? AND yieldDate >= ?", sn, since).
		Order("yieldDate ASC").
		Find(&rows).Error
	return rows, err
}

// GetRecentComplaintUpdates returns the newest complaint updates for a
// customer joined to the parent complaint's status and category
func (s *LedgerService) GetRecentComplaintUpdates(ctx context.Context, customerID uint, limit int) ([]ComplaintUpdateRow, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []ComplaintUpdateRow
	err := s.db.WithContext(ctx).
		Table("complaintUpdates").
		Select("complaintUpdates.updateText, complaintUpdates.createdAt, complaints.status, complaintCategories.name AS category").
		Joins("JOIN complaints ON complaints.id = complaintUpdates.complaint_id").
		Joins("LEFT JOIN complaintCategories ON complaintCategories.id = complaints.category").
		Where("complaints.customerId = ?", customerID).
		Order("complaintUpdates.createdAt DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ListMonitoredCustomers returns every customer with a mapped device
// serial, optionally filtered by a name/serial/district search term
func (s *LedgerService) ListMonitoredCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	query := s.db.WithContext(ctx).
		Where("solar_device_id IS NOT NULL AND solar_device_id != ''")
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"customerName LIKE ? OR solar_device_id LIKE ? OR district LIKE ?",
			pattern, pattern, pattern,
		)
	}
	var customers []models.Customer
	err := query.Order("customerName ASC").Find(&customers).Error
	return customers, err
}

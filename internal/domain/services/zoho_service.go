package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/models"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/config"
	Logger "github.com/itfarmkart/CRM-rsolar-backend/pkg/logger"
)

// tokenExpiryBuffer forces a refresh slightly before the token actually
// expires so in-flight requests never carry a dead token
const tokenExpiryBuffer = 60 * time.Second

// maxInvoicesPerLookup caps how many invoices one inventory lookup expands
const maxInvoicesPerLookup = 5

// maxInvoicePages bounds the bulk sync walk
const maxInvoicePages = 50

// Warranty terms written back during customer sync
const (
	panelWarrantyYears    = 25
	inverterWarrantyYears = 10
)

// ZohoLineItem is one invoice line
type ZohoLineItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	SKU         string  `json:"sku"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	HSNOrSAC    string  `json:"hsn_or_sac"`
}

// ZohoInvoice is an invoice as returned by the invoicing API. Line items
// are only present on the detail endpoint.
type ZohoInvoice struct {
	InvoiceID     string         `json:"invoice_id"`
	InvoiceNumber string         `json:"invoice_number"`
	CustomerID    string         `json:"customer_id"`
	CustomerName  string         `json:"customer_name"`
	Date          string         `json:"date"`
	Phone         string         `json:"phone"`
	Mobile        string         `json:"mobile"`
	Total         float64        `json:"total"`
	Status        string         `json:"status"`
	LineItems     []ZohoLineItem `json:"line_items"`
}

// ZohoContact is one contact row
type ZohoContact struct {
	ContactID   string `json:"contact_id"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Mobile      string `json:"mobile"`
}

// InvoiceInventory is one invoice with its equipment lines classified
type InvoiceInventory struct {
	InvoiceID     string         `json:"invoiceId"`
	InvoiceNumber string         `json:"invoiceNumber"`
	InvoiceDate   string         `json:"invoiceDate"`
	CustomerName  string         `json:"customerName"`
	MobileNumber  string         `json:"mobileNumber"`
	Panels        []ZohoLineItem `json:"panels"`
	Inverters     []ZohoLineItem `json:"inverters"`
	AllLineItems  []ZohoLineItem `json:"allLineItems"`
}

// CustomerInvoiceSummary is one unique invoicing customer with their
// latest seen invoice
type CustomerInvoiceSummary struct {
	Name          string `json:"name"`
	MobileNumber  string `json:"mobileNumber"`
	InvoiceDate   string `json:"invoiceDate"`
	InvoiceNumber string `json:"invoiceNumber"`
}

// InterfaceZohoService defines the invoicing operations
type InterfaceZohoService interface {
	GetInventoryDetailsByMobile(ctx context.Context, mobile string) ([]InvoiceInventory, error)
	GetAllCustomersWithInvoices(ctx context.Context) ([]CustomerInvoiceSummary, error)
	GetInvoicePdf(ctx context.Context, invoiceID string) ([]byte, error)
}

// ZohoService talks to the Zoho invoicing API. Access tokens are cached and
// refreshed through the OAuth refresh-token grant; the mutex makes the
// refresh single-flight so concurrent callers share one upstream request.
type ZohoService struct {
	Config *config.Config
	client *resty.Client
	db     *gorm.DB

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewZohoService creates a new invoicing client. db is used only for the
// warranty expiry write-back during bulk sync.
func NewZohoService(cfg *config.Config, db *gorm.DB) InterfaceZohoService {
	client := resty.New().
		SetBaseURL(cfg.ZohoBaseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5 * time.Second)
	return &ZohoService{Config: cfg, client: client, db: db}
}

// getValidToken returns a cached access token, refreshing it when less than
// a minute of validity remains
func (s *ZohoService) getValidToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Until(s.expiresAt) > tokenExpiryBuffer {
		return s.accessToken, nil
	}

	Logger.Info("refreshing zoho access token")
	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		Error       string `json:"error"`
	}
	resp, err := resty.New().R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"refresh_token": s.Config.ZohoRefreshToken,
			"client_id":     s.Config.ZohoClientID,
			"client_secret": s.Config.ZohoClientSecret,
			"grant_type":    "refresh_token",
		}).
		SetResult(&tokenResp).
		Post(s.Config.ZohoTokenURL)
	if err != nil {
		return "", fmt.Errorf("zoho token refresh: %w", err)
	}
	if resp.StatusCode() != 200 || tokenResp.AccessToken == "" {
		return "", fmt.Errorf("zoho token refresh: status %d error %q", resp.StatusCode(), tokenResp.Error)
	}

	s.accessToken = tokenResp.AccessToken
	s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return s.accessToken, nil
}

// request builds an authorized request with the organization scope applied
func (s *ZohoService) request(ctx context.Context) (*resty.Request, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Zoho-oauthtoken "+token).
		SetQueryParam("organization_id", s.Config.ZohoOrganizationID), nil
}

type invoicePage struct {
	Invoices    []ZohoInvoice `json:"invoices"`
	PageContext struct {
		HasMorePage bool `json:"has_more_page"`
	} `json:"page_context"`
}

// searchInvoices runs one invoice listing with the given query filter
func (s *ZohoService) searchInvoices(ctx context.Context, params map[string]string) (*invoicePage, error) {
	req, err := s.request(ctx)
	if err != nil {
		return nil, err
	}
	var page invoicePage
	resp, err := req.SetQueryParams(params).SetResult(&page).Get("/invoices")
	if err != nil {
		return nil, fmt.Errorf("zoho invoice search: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("zoho invoice search: status %d", resp.StatusCode())
	}
	return &page, nil
}

// contactFilters are tried in order when resolving a contact by number
var contactFilters = []string{"search_text", "phone_contains", "mobile_phone_contains"}

// searchContact resolves a contact by mobile number, trying the bare
// number and the +91- prefixed variant most customers are stored under,
// each across the contact search filters
func (s *ZohoService) searchContact(ctx context.Context, mobile string) (*ZohoContact, error) {
	for _, variant := range []string{mobile, "+91-" + mobile} {
		for _, filter := range contactFilters {
			req, err := s.request(ctx)
			if err != nil {
				return nil, err
			}
			var result struct {
				Contacts []ZohoContact `json:"contacts"`
			}
			resp, err := req.SetQueryParam(filter, variant).SetResult(&result).Get("/contacts")
			if err != nil {
				return nil, fmt.Errorf("zoho contact search: %w", err)
			}
			if resp.StatusCode() == 200 && len(result.Contacts) > 0 {
				return &result.Contacts[0], nil
			}
		}
	}
	return nil, nil
}

// getContact fetches one contact by id
func (s *ZohoService) getContact(ctx context.Context, contactID string) (*ZohoContact, error) {
	req, err := s.request(ctx)
	if err != nil {
		return nil, err
	}
	var result struct {
		Contact ZohoContact `json:"contact"`
	}
	resp, err := req.SetResult(&result).Get("/contacts/" + contactID)
	if err != nil {
		return nil, fmt.Errorf("zoho contact fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("zoho contact fetch: status %d", resp.StatusCode())
	}
	return &result.Contact, nil
}

// getInvoiceDetail expands one invoice with its line items
func (s *ZohoService) getInvoiceDetail(ctx context.Context, invoiceID string) (*ZohoInvoice, error) {
	req, err := s.request(ctx)
	if err != nil {
		return nil, err
	}
	var result struct {
		Invoice ZohoInvoice `json:"invoice"`
	}
	resp, err := req.SetResult(&result).Get("/invoices/" + invoiceID)
	if err != nil {
		return nil, fmt.Errorf("zoho invoice detail: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("zoho invoice detail: status %d", resp.StatusCode())
	}
	return &result.Invoice, nil
}

// GetInventoryDetailsByMobile resolves the equipment a customer bought.
// Invoices are searched by the mobile number first; when that comes back
// empty the contact directory is consulted and the contact's invoices are
// listed instead. At most five invoices are expanded with line items.
func (s *ZohoService) GetInventoryDetailsByMobile(ctx context.Context, mobile string) ([]InvoiceInventory, error) {
	page, err := s.searchInvoices(ctx, map[string]string{"search_text": mobile})
	if err != nil {
		return nil, err
	}
	invoices := page.Invoices

	if len(invoices) == 0 {
		contact, err := s.searchContact(ctx, mobile)
		if err != nil {
			return nil, err
		}
		if contact == nil {
			return []InvoiceInventory{}, nil
		}
		page, err = s.searchInvoices(ctx, map[string]string{"customer_id": contact.ContactID})
		if err != nil {
			return nil, err
		}
		invoices = page.Invoices
	}

	if len(invoices) > maxInvoicesPerLookup {
		invoices = invoices[:maxInvoicesPerLookup]
	}

	results := make([]InvoiceInventory, 0, len(invoices))
	for _, summary := range invoices {
		invoice, err := s.getInvoiceDetail(ctx, summary.InvoiceID)
		if err != nil {
			Logger.Warning("skipping invoice %s: %v", summary.InvoiceID, err)
			continue
		}

		row := InvoiceInventory{
			InvoiceID:     invoice.InvoiceID,
			InvoiceNumber: invoice.InvoiceNumber,
			InvoiceDate:   invoice.Date,
			CustomerName:  invoice.CustomerName,
			MobileNumber:  firstNonEmpty(invoice.Phone, invoice.Mobile, mobile),
			AllLineItems:  invoice.LineItems,
		}
		for _, item := range invoice.LineItems {
			name := strings.ToLower(item.Name)
			description := strings.ToLower(item.Description)
			switch {
			case strings.Contains(name, "panel") || strings.Contains(description, "panel"):
				row.Panels = append(row.Panels, item)
			case strings.Contains(name, "inverter") || strings.Contains(description, "inverter"):
				row.Inverters = append(row.Inverters, item)
			}
		}
		results = append(results, row)
	}
	return results, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var mobilePrefixPattern = regexp.MustCompile(`^(\+91|91)`)

// normalizeMobile strips separators and the country prefix so the number
// matches the CRM's ten-digit format
func normalizeMobile(phone string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	return mobilePrefixPattern.ReplaceAllString(cleaned, "")
}

// GetAllCustomersWithInvoices walks every invoice page, resolves each
// unique invoicing customer's mobile number and writes the invoice date
// plus warranty expiries back to the matching CRM row. Contact failures
// skip that customer; the walk continues.
func (s *ZohoService) GetAllCustomersWithInvoices(ctx context.Context) ([]CustomerInvoiceSummary, error) {
	var all []ZohoInvoice
	for page := 1; page <= maxInvoicePages; page++ {
		result, err := s.searchInvoices(ctx, map[string]string{
			"page":     strconv.Itoa(page),
			"per_page": "200",
			"type":     "invoice",
		})
		if err != nil {
			return nil, err
		}
		all = append(all, result.Invoices...)
		if !result.PageContext.HasMorePage {
			break
		}
	}

	seen := map[string]bool{}
	var summaries []CustomerInvoiceSummary
	for _, invoice := range all {
		if seen[invoice.CustomerID] {
			continue
		}
		seen[invoice.CustomerID] = true

		contact, err := s.getContact(ctx, invoice.CustomerID)
		if err != nil {
			Logger.Warning("skipping customer %s during sync: %v", invoice.CustomerID, err)
			continue
		}

		number := firstNonEmpty(contact.Mobile, contact.Phone)
		if number != "" {
			s.writeBackWarranty(ctx, normalizeMobile(number), invoice.Date)
		} else {
			number = "N/A"
		}

		summaries = append(summaries, CustomerInvoiceSummary{
			Name:          invoice.CustomerName,
			MobileNumber:  number,
			InvoiceDate:   invoice.Date,
			InvoiceNumber: invoice.InvoiceNumber,
		})
	}
	return summaries, nil
}

// writeBackWarranty stamps the invoice date and the derived warranty
// expiries onto the CRM customer with the given mobile number
func (s *ZohoService) writeBackWarranty(ctx context.Context, mobile, invoiceDate string) {
	parsed, err := time.Parse("2006-01-02", invoiceDate)
	if err != nil {
		return
	}
	res := s.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("mobileNumber = ?", mobile).
		Updates(map[string]interface{}{
			"invoiceDate":        parsed,
			"panelExpiryDate":    parsed.AddDate(panelWarrantyYears, 0, 0),
			"inverterExpiryDate": parsed.AddDate(inverterWarrantyYears, 0, 0),
		})
	if res.Error != nil {
		Logger.Warning("warranty write-back failed for %s: %v", mobile, res.Error)
	}
}

// GetInvoicePdf downloads one invoice as PDF
func (s *ZohoService) GetInvoicePdf(ctx context.Context, invoiceID string) ([]byte, error) {
	req, err := s.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.SetQueryParam("accept", "pdf").Get("/invoices/" + invoiceID)
	if err != nil {
		return nil, fmt.Errorf("zoho invoice pdf: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("zoho invoice pdf: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/models"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/config"
	Logger "github.com/itfarmkart/CRM-rsolar-backend/pkg/logger"
)

// ErrSiteNotFound means no customer owns the requested device serial
var ErrSiteNotFound = errors.New("site not found")

// ErrInvalidPeriod means the requested history period is not supported
var ErrInvalidPeriod = errors.New("invalid period")

// periodDays maps the supported history periods to their day spans
var periodDays = map[string]int{
	"30 days": 30,
	"90 days": 90,
	"1 year":  365,
}

// DefaultSitePeriod is used when a request omits the period
const DefaultSitePeriod = "30 days"

// deviceListCacheTTL bounds how stale the cached cloud device list may be
const deviceListCacheTTL = time.Minute

const deviceListCacheKey = "foxess:devicelist"

// SiteIdentity describes who and where a site is
type SiteIdentity struct {
	DeviceSN    string  `json:"deviceSN"`
	StationID   string  `json:"stationId"`
	StationName string  `json:"stationName"`
	Status      string  `json:"status"`
	Health      string  `json:"generationHealth"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// SiteCustomer carries the owning customer and their agreement dates
type SiteCustomer struct {
	CustomerID             uint       `json:"customerId"`
	CustomerName           string     `json:"customerName"`
	MobileNumber           string     `json:"mobileNumber"`
	SolarPlantType         string     `json:"solarPlantType"`
	AgreementSignatureDate *time.Time `json:"agreementSignatureDate,omitempty"`
	SystemDeliveryDate     *time.Time `json:"systemDeliveryDate,omitempty"`
}

// SitePerformance carries the power and yield figures for a site.
// Power figures are zero unless the device is online.
type SitePerformance struct {
	CurrentPowerKW   float64 `json:"currentPowerKw"`
	PowerGrowth      float64 `json:"powerGrowth"`
	LifetimeYieldKWH float64 `json:"lifetimeYieldKwh"`
	MonthYieldKWH    float64 `json:"monthYieldKwh"`
	MonthYieldGrowth float64 `json:"monthYieldGrowth"`
}

// SiteEvent is one row of the unified site timeline
type SiteEvent struct {
	Time    time.Time `json:"time"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Kind    string    `json:"kind"`
}

// SiteDetail is the composed dashboard payload for one site
type SiteDetail struct {
	Identity     SiteIdentity           `json:"identity"`
	Customer     SiteCustomer           `json:"customer"`
	Performance  SitePerformance        `json:"performance"`
	Specs        map[string]interface{} `json:"technicalSpecs,omitempty"`
	ActiveFaults []ActiveFault          `json:"activeFaults"`
	Events       []SiteEvent            `json:"events"`
	YieldHistory []models.DailyYield    `json:"yieldHistory"`
	Period       string                 `json:"period"`
	Degraded     []string               `json:"degraded,omitempty"`
}

// DeviceSummary is the fleet headline for the O&M dashboard
type DeviceSummary struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Fault    int `json:"fault"`
	Inactive int `json:"inactive"`
}

// OMDeviceParams filters and pages the O&M device listing
type OMDeviceParams struct {
	Search string `form:"search"`
	Status string `form:"status"`
	models.PaginationQuery
}

// OMDevice is one row of the O&M device listing: a CRM customer merged
// with the live cloud status of their device
type OMDevice struct {
	CustomerID   uint   `json:"customerId"`
	CustomerName string `json:"customerName"`
	District     string `json:"district"`
	State        string `json:"state"`
	DeviceSN     string `json:"deviceSN"`
	Status       string `json:"status"`
	LastSeen     string `json:"lastSeen,omitempty"`
}

// InterfaceSiteService defines the O&M aggregation operations
type InterfaceSiteService interface {
	GetSiteDetail(ctx context.Context, sn, period string) (*SiteDetail, error)
	GetDeviceSummary(ctx context.Context) (*DeviceSummary, error)
	GetOMDevices(ctx context.Context, params OMDeviceParams) ([]OMDevice, *models.PaginationResult, error)
}

// SiteService composes the monitoring cloud and the local ledger into
// per-site views
type SiteService struct {
	Config *config.Config
	ledger InterfaceLedgerService
	foxess InterfaceFoxESSService
	cache  InterfaceRedisService
}

// NewSiteService creates a new site aggregator. cache may be nil.
func NewSiteService(cfg *config.Config, ledger InterfaceLedgerService, foxess InterfaceFoxESSService, cache InterfaceRedisService) InterfaceSiteService {
	return &SiteService{
		Config: cfg,
		ledger: ledger,
		foxess: foxess,
		cache:  cache,
	}
}

// GrowthRate computes a percentage change rounded to two decimals. A zero
// baseline with a positive current value reads as 100% growth; a zero
// baseline with nothing current reads as no growth.
func GrowthRate(current, previous float64) float64 {
	switch {
	case previous > 0:
		return round2((current - previous) / previous * 100)
	case current > 0:
		return 100
	default:
		return 0
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// degradation collects per-upstream failures without failing the whole
// aggregation
type degradation struct {
	mu      sync.Mutex
	reasons []string
}

func (d *degradation) add(upstream string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reasons = append(d.reasons, fmt.Sprintf("%s: %v", upstream, err))
	Logger.Warning("site aggregation degraded, %s: %v", upstream, err)
}

func (d *degradation) list() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reasons
}

// GetSiteDetail builds the full dashboard payload for one device serial.
// Every upstream except the customer lookup is allowed to fail; failures
// fall back to neutral defaults and are reported through the degraded list
// when strict aggregation is enabled.
func (s *SiteService) GetSiteDetail(ctx context.Context, sn, period string) (*SiteDetail, error) {
	if period == "" {
		period = DefaultSitePeriod
	}
	days, ok := periodDays[period]
	if !ok {
		return nil, ErrInvalidPeriod
	}

	customer, agreement, err := s.ledger.GetCustomerByDeviceSN(ctx, sn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}

	deg := &degradation{}

	detail := s.fetchDetail(ctx, sn, deg)
	status := models.DeviceStatusOffline
	if detail != nil {
		status = detail.Status
	}
	isFault := status == models.DeviceStatusFault

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)
	prevMonthEnd := monthStart.AddDate(0, 0, -1)

	var (
		realtimeVars  []RealtimeVariable
		alarms        []FoxESSAlarm
		lifetimeYield float64
		monthYield    float64
		prevYield     float64
		updates       []ComplaintUpdateRow
		dictionaries  []FaultDictionary
	)

	var wg sync.WaitGroup
	run := func(upstream string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, s.Config.FoxESSTimeout)
			defer cancel()
			if err := fn(callCtx); err != nil {
				deg.add(upstream, err)
			}
		}()
	}

	run("realtime", func(c context.Context) error {
		var err error
		realtimeVars, err = s.foxess.GetRealTimeData(c, sn)
		return err
	})
	run("alarms", func(c context.Context) error {
		var err error
		alarms, err = s.foxess.GetDeviceAlarms(c, sn)
		return err
	})
	run("lifetime yield", func(c context.Context) error {
		var err error
		lifetimeYield, err = s.ledger.GetLifetimeYield(c, sn)
		return err
	})
	run("month yield", func(c context.Context) error {
		var err error
		monthYield, err = s.ledger.GetYieldBetween(c, sn, monthStart, now)
		return err
	})
	run("previous month yield", func(c context.Context) error {
		var err error
		prevYield, err = s.ledger.GetYieldBetween(c, sn, prevMonthStart, prevMonthEnd)
		return err
	})
	run("complaint updates", func(c context.Context) error {
		var err error
		updates, err = s.ledger.GetRecentComplaintUpdates(c, customer.CustomerID, 5)
		return err
	})
	if isFault {
		run("fault dictionary", func(c context.Context) error {
			var err error
			dictionaries, err = s.foxess.GetFaultDictionary(c, sn)
			return err
		})
	}
	wg.Wait()

	currentPower := currentPowerKW(realtimeVars)
	var previousPower float64
	if previousPower, err = s.foxess.GetHistoricalPower(ctx, sn, now.Add(-time.Hour), 15*time.Minute); err != nil {
		deg.add("history power", err)
		previousPower = 0
	}

	performance := SitePerformance{
		LifetimeYieldKWH: lifetimeYield,
		MonthYieldKWH:    monthYield,
		MonthYieldGrowth: GrowthRate(monthYield, prevYield),
	}
	if status == models.DeviceStatusOnline {
		performance.CurrentPowerKW = currentPower
		performance.PowerGrowth = GrowthRate(currentPower, previousPower)
	}

	yieldHistory, err := s.ledger.GetYieldHistory(ctx, sn, now.AddDate(0, 0, -days))
	if err != nil {
		deg.add("yield history", err)
		yieldHistory = nil
	}

	faults := ExtractActiveFaultCodes(realtimeVars)
	if len(dictionaries) > 0 {
		for i := range faults {
			if faults[i].Code == 0 {
				continue
			}
			if description, ok := dictionaries[0].Lookup(faults[i].Code); ok {
				faults[i].Description = description
				faults[i].RaisedAt = now.Format(time.RFC3339)
			}
		}
	}

	result := &SiteDetail{
		Identity: SiteIdentity{
			DeviceSN: sn,
			Status:   models.DeviceStatusLabel(status),
			Health:   models.DeviceHealthLabel(status),
			Address:  joinAddress(customer.Address, customer.District, customer.Tehsil, customer.State),
		},
		Customer: SiteCustomer{
			CustomerID:     customer.CustomerID,
			CustomerName:   customer.CustomerName,
			MobileNumber:   customer.MobileNumber,
			SolarPlantType: customer.SolarPlantType,
		},
		Performance:  performance,
		ActiveFaults: faults,
		Events:       buildEvents(alarms, updates),
		YieldHistory: yieldHistory,
		Period:       period,
	}
	if detail != nil {
		result.Identity.StationID = detail.StationID
		result.Identity.StationName = detail.StationName
		result.Identity.Latitude = detail.Latitude
		result.Identity.Longitude = detail.Longitude
		result.Specs = detail.Raw
	}
	if agreement != nil {
		result.Customer.AgreementSignatureDate = agreement.AgreementSignatureDate
		result.Customer.SystemDeliveryDate = agreement.SystemDeliveryDate
	}
	if s.Config.StrictAggregation {
		result.Degraded = deg.list()
	}
	return result, nil
}

// fetchDetail fetches the device technical specs under its own timeout
func (s *SiteService) fetchDetail(ctx context.Context, sn string, deg *degradation) *FoxESSDeviceDetail {
	callCtx, cancel := context.WithTimeout(ctx, s.Config.FoxESSTimeout)
	defer cancel()
	detail, err := s.foxess.GetDeviceDetail(callCtx, sn)
	if err != nil {
		deg.add("device detail", err)
		return nil
	}
	return detail
}

// currentPowerKW picks the instantaneous power out of a real-time snapshot,
// preferring generationPower over the generic power variable
func currentPowerKW(variables []RealtimeVariable) float64 {
	for _, preferred := range []string{"generationpower", "power"} {
		for _, v := range variables {
			if strings.ToLower(v.Variable) != preferred {
				continue
			}
			if value, ok := asFloat(v.Value); ok {
				return value
			}
		}
	}
	return 0
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%f", &parsed); err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// joinAddress concatenates the non-empty address parts
func joinAddress(parts ...string) string {
	filled := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			filled = append(filled, strings.TrimSpace(p))
		}
	}
	return strings.Join(filled, ", ")
}

// buildEvents merges cloud alarms and complaint updates into one timeline,
// newest first. Entries without a timestamp keep the zero time and sort
// last.
func buildEvents(alarms []FoxESSAlarm, updates []ComplaintUpdateRow) []SiteEvent {
	events := make([]SiteEvent, 0, len(alarms)+len(updates))
	for _, a := range alarms {
		event := SiteEvent{Title: a.Title, Content: a.Content, Kind: "alarm"}
		if event.Title == "" {
			event.Title = "Inverter Alarm"
		}
		if event.Content == "" {
			event.Content = "Alarm reported by inverter"
		}
		if a.Time > 0 {
			event.Time = time.UnixMilli(a.Time)
		}
		events = append(events, event)
	}
	for _, u := range updates {
		event := SiteEvent{Title: "System Update", Content: u.UpdateText, Kind: "status"}
		if u.CreatedAt != nil {
			event.Time = *u.CreatedAt
		}
		events = append(events, event)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.After(events[j].Time)
	})
	return events
}

// GetDeviceSummary counts the fleet by live cloud status
func (s *SiteService) GetDeviceSummary(ctx context.Context) (*DeviceSummary, error) {
	devices, err := s.cloudDevices(ctx)
	if err != nil {
		return nil, err
	}
	summary := &DeviceSummary{Total: len(devices)}
	for _, d := range devices {
		switch d.Status {
		case models.DeviceStatusOnline:
			summary.Active++
		case models.DeviceStatusFault:
			summary.Fault++
		default:
			summary.Inactive++
		}
	}
	return summary, nil
}

// GetOMDevices lists monitored customers merged with cloud device status.
// The status filter and the pagination run over the merged rows because the
// status only exists after the merge.
func (s *SiteService) GetOMDevices(ctx context.Context, params OMDeviceParams) ([]OMDevice, *models.PaginationResult, error) {
	params.Normalize()

	customers, err := s.ledger.ListMonitoredCustomers(ctx, params.Search)
	if err != nil {
		return nil, nil, err
	}

	statusBySN := map[string]FoxESSDevice{}
	devices, err := s.cloudDevices(ctx)
	if err != nil {
		Logger.Warning("device listing degraded, cloud list unavailable: %v", err)
	}
	for _, d := range devices {
		statusBySN[d.SN] = d
	}

	rows := make([]OMDevice, 0, len(customers))
	for _, c := range customers {
		row := OMDevice{
			CustomerID:   c.CustomerID,
			CustomerName: c.CustomerName,
			District:     c.District,
			State:        c.State,
			DeviceSN:     c.SolarDeviceID,
			Status:       models.DeviceStatusLabel(models.DeviceStatusOffline),
		}
		if d, ok := statusBySN[c.SolarDeviceID]; ok {
			row.Status = models.DeviceStatusLabel(d.Status)
			row.LastSeen = d.LastSeen
		}
		if params.Status != "" && !strings.EqualFold(params.Status, row.Status) {
			continue
		}
		rows = append(rows, row)
	}

	total := int64(len(rows))
	start := params.Offset
	if start > len(rows) {
		start = len(rows)
	}
	end := start + params.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], models.NewPaginationResult(total, params.Limit, params.Offset), nil
}

// cloudDevices returns the cloud device list, served from Redis when fresh
func (s *SiteService) cloudDevices(ctx context.Context) ([]FoxESSDevice, error) {
	if s.cache != nil {
		var cached []FoxESSDevice
		if err := s.cache.Get(ctx, deviceListCacheKey, &cached); err == nil {
			return cached, nil
		}
	}
	devices, err := s.foxess.GetDeviceList(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, deviceListCacheKey, devices, deviceListCacheTTL); err != nil {
			Logger.Warning("failed to cache device list: %v", err)
		}
	}
	return devices, nil
}

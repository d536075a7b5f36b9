package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/models"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/config"
)

type fakeLedger struct {
	customer  *models.Customer
	agreement *models.CustomerAgreement
	lifetime  float64
	monthly   map[string]float64
	history   []models.DailyYield
	updates   []ComplaintUpdateRow
	monitored []models.Customer

	updatesErr error
}

func (f *fakeLedger) GetCustomerByDeviceSN(ctx context.Context, sn string) (*models.Customer, *models.CustomerAgreement, error) {
	if f.customer == nil || f.customer.SolarDeviceID != sn {
		return nil, nil, gorm.ErrRecordNotFound
	}
	return f.customer, f.agreement, nil
}

func (f *fakeLedger) GetLifetimeYield(ctx context.Context, sn string) (float64, error) {
	return f.lifetime, nil
}

func (f *fakeLedger) GetYieldBetween(ctx context.Context, sn string, from, to time.Time) (float64, error) {
	return f.monthly[from.Format("2006-01")], nil
}

func (f *fakeLedger) GetYieldHistory(ctx context.Context, sn string, since time.Time) ([]models.DailyYield, error) {
	return f.history, nil
}

func (f *fakeLedger) GetRecentComplaintUpdates(ctx context.Context, customerID uint, limit int) ([]ComplaintUpdateRow, error) {
	if f.updatesErr != nil {
		return nil, f.updatesErr
	}
	return f.updates, nil
}

func (f *fakeLedger) ListMonitoredCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	return f.monitored, nil
}

type fakeFoxESS struct {
	devices    []FoxESSDevice
	devicesErr error
	detail     *FoxESSDeviceDetail
	detailErr  error
	realtime   []RealtimeVariable
	alarms     []FoxESSAlarm
	alarmsErr  error
	history    float64
	dicts      []FaultDictionary

	dictCalls int
}

func (f *fakeFoxESS) GetDeviceList(ctx context.Context) ([]FoxESSDevice, error) {
	return f.devices, f.devicesErr
}

func (f *fakeFoxESS) GetDeviceDetail(ctx context.Context, sn string) (*FoxESSDeviceDetail, error) {
	return f.detail, f.detailErr
}

func (f *fakeFoxESS) GetRealTimeData(ctx context.Context, sn string) ([]RealtimeVariable, error) {
	return f.realtime, nil
}

func (f *fakeFoxESS) GetHistoricalPower(ctx context.Context, sn string, center time.Time, window time.Duration) (float64, error) {
	return f.history, nil
}

func (f *fakeFoxESS) GetFaultDictionary(ctx context.Context, sn string) ([]FaultDictionary, error) {
	f.dictCalls++
	return f.dicts, nil
}

func (f *fakeFoxESS) GetDeviceAlarms(ctx context.Context, sn string) ([]FoxESSAlarm, error) {
	return f.alarms, f.alarmsErr
}

func testSiteService(ledger InterfaceLedgerService, foxess InterfaceFoxESSService, strict bool) InterfaceSiteService {
	cfg := &config.Config{
		FoxESSTimeout:     5 * time.Second,
		StrictAggregation: strict,
	}
	return NewSiteService(cfg, ledger, foxess, nil)
}

func testCustomer() *models.Customer {
	return &models.Customer{
		CustomerID:     7,
		CustomerName:   "Ravi Sharma",
		MobileNumber:   "9876543210",
		Address:        "12 Solar Lane",
		District:       "Jaipur",
		State:          "Rajasthan",
		SolarDeviceID:  "SN-A",
		SolarPlantType: "On-Grid",
	}
}

func TestGrowthRate(t *testing.T) {
	cases := []struct {
		current, previous, want float64
	}{
		{150, 100, 50},
		{50, 100, -50},
		{100, 100, 0},
		{100, 0, 100},
		{0, 0, 0},
		{1, 3, -66.67},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GrowthRate(tc.current, tc.previous), "current=%v previous=%v", tc.current, tc.previous)
	}
}

func TestGetSiteDetailUnknownSerial(t *testing.T) {
	s := testSiteService(&fakeLedger{}, &fakeFoxESS{}, false)

	_, err := s.GetSiteDetail(context.Background(), "SN-UNKNOWN", "30 days")
	assert.ErrorIs(t, err, ErrSiteNotFound)
}

func TestGetSiteDetailInvalidPeriod(t *testing.T) {
	s := testSiteService(&fakeLedger{customer: testCustomer()}, &fakeFoxESS{}, false)

	_, err := s.GetSiteDetail(context.Background(), "SN-A", "7 days")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestGetSiteDetailOnline(t *testing.T) {
	now := time.Now()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	previousMonth := currentMonth.AddDate(0, -1, 0)

	alarmTime := now.Add(-2 * time.Hour)
	updateTime := now.Add(-24 * time.Hour)

	ledger := &fakeLedger{
		customer: testCustomer(),
		agreement: &models.CustomerAgreement{
			CustomerID:         7,
			SystemDeliveryDate: &updateTime,
		},
		lifetime: 1200,
		monthly: map[string]float64{
			currentMonth.Format("2006-01"):  150,
			previousMonth.Format("2006-01"): 100,
		},
		history: []models.DailyYield{{DeviceSN: "SN-A", YieldKWH: 12}},
		updates: []ComplaintUpdateRow{
			{UpdateText: "Technician visit scheduled", CreatedAt: &updateTime, Status: "In Progress"},
		},
	}
	foxess := &fakeFoxESS{
		detail: &FoxESSDeviceDetail{
			DeviceSN:    "SN-A",
			StationID:   "ST-1",
			StationName: "Sharma Rooftop",
			Status:      models.DeviceStatusOnline,
			Raw:         map[string]interface{}{"ratedPower": "5.0kW"},
		},
		realtime: []RealtimeVariable{
			{Variable: "generationPower", Value: 3.0},
		},
		alarms: []FoxESSAlarm{
			{Title: "Grid Lost", Content: "Voltage dip", Time: alarmTime.UnixMilli()},
			{Title: ""},
		},
		history: 2.0,
	}

	s := testSiteService(ledger, foxess, false)
	detail, err := s.GetSiteDetail(context.Background(), "SN-A", "30 days")
	require.NoError(t, err)

	assert.Equal(t, "Active", detail.Identity.Status)
	assert.Equal(t, "Optimal", detail.Identity.Health)
	assert.Equal(t, "12 Solar Lane, Jaipur, Rajasthan", detail.Identity.Address)
	assert.Equal(t, "ST-1", detail.Identity.StationID)
	assert.Equal(t, "5.0kW", detail.Specs["ratedPower"])

	assert.Equal(t, 3.0, detail.Performance.CurrentPowerKW)
	assert.Equal(t, 50.0, detail.Performance.PowerGrowth, "3.0 vs 2.0 one hour ago")
	assert.Equal(t, 1200.0, detail.Performance.LifetimeYieldKWH)
	assert.Equal(t, 150.0, detail.Performance.MonthYieldKWH)
	assert.Equal(t, 50.0, detail.Performance.MonthYieldGrowth)

	require.Len(t, detail.Events, 3)
	assert.Equal(t, "Grid Lost", detail.Events[0].Title, "newest event first")
	assert.Equal(t, "System Update", detail.Events[1].Title)
	assert.Equal(t, "Inverter Alarm", detail.Events[2].Title, "untimed alarm defaults its title and sorts last")
	assert.True(t, detail.Events[2].Time.IsZero())

	assert.Equal(t, 0, foxess.dictCalls, "fault dictionary is not fetched for a healthy device")
	assert.Empty(t, detail.Degraded)
	require.NotNil(t, detail.Customer.SystemDeliveryDate)
}

func TestGetSiteDetailFaultBranch(t *testing.T) {
	ledger := &fakeLedger{customer: testCustomer()}
	foxess := &fakeFoxESS{
		detail: &FoxESSDeviceDetail{DeviceSN: "SN-A", Status: models.DeviceStatusFault},
		realtime: []RealtimeVariable{
			{Variable: "faultCode2", Value: float64(5)},
			{Variable: "generationPower", Value: 1.5},
		},
		dicts: []FaultDictionary{
			{Faults: []FaultDefinition{{Code: 33, Description: "Grid voltage out of range"}}},
			{Faults: []FaultDefinition{{Code: 33, Description: "ignored, only the first entry is used"}}},
		},
	}

	s := testSiteService(ledger, foxess, false)
	detail, err := s.GetSiteDetail(context.Background(), "SN-A", "30 days")
	require.NoError(t, err)

	assert.Equal(t, "Fault", detail.Identity.Status)
	assert.Equal(t, 1, foxess.dictCalls)

	require.Len(t, detail.ActiveFaults, 2)
	assert.Equal(t, 33, detail.ActiveFaults[0].Code)
	assert.Equal(t, "Grid voltage out of range", detail.ActiveFaults[0].Description)
	assert.Equal(t, 35, detail.ActiveFaults[1].Code)
	assert.Empty(t, detail.ActiveFaults[1].Description, "codes missing from the dictionary stay undescribed")

	assert.Zero(t, detail.Performance.CurrentPowerKW, "power figures are zeroed unless the device is online")
	assert.Zero(t, detail.Performance.PowerGrowth)
}

func TestGetSiteDetailDegradation(t *testing.T) {
	ledger := &fakeLedger{
		customer:   testCustomer(),
		updatesErr: errors.New("timeline query timed out"),
	}
	foxess := &fakeFoxESS{
		detailErr: errors.New("cloud 502"),
		alarmsErr: errors.New("alarm list 500"),
	}

	t.Run("failures absorb to defaults", func(t *testing.T) {
		s := testSiteService(ledger, foxess, false)
		detail, err := s.GetSiteDetail(context.Background(), "SN-A", "30 days")
		require.NoError(t, err, "only an unknown serial fails the aggregation")

		assert.Equal(t, "Inactive", detail.Identity.Status, "missing detail reads as offline")
		assert.Empty(t, detail.Events)
		assert.Empty(t, detail.Degraded, "reasons stay internal unless strict aggregation is on")
	})

	t.Run("complaint events survive an alarm failure", func(t *testing.T) {
		updateTime := time.Now().Add(-time.Hour)
		ledger := &fakeLedger{
			customer: testCustomer(),
			updates: []ComplaintUpdateRow{
				{UpdateText: "Inverter replaced under warranty", CreatedAt: &updateTime, Status: "Resolved"},
			},
		}
		foxess := &fakeFoxESS{
			detail:    &FoxESSDeviceDetail{DeviceSN: "SN-A", Status: models.DeviceStatusOnline},
			alarmsErr: errors.New("alarm list 500"),
		}

		s := testSiteService(ledger, foxess, false)
		detail, err := s.GetSiteDetail(context.Background(), "SN-A", "30 days")
		require.NoError(t, err)

		require.Len(t, detail.Events, 1)
		assert.Equal(t, "System Update", detail.Events[0].Title)
		assert.Equal(t, "Inverter replaced under warranty", detail.Events[0].Content)
	})

	t.Run("strict mode surfaces reasons", func(t *testing.T) {
		s := testSiteService(ledger, foxess, true)
		detail, err := s.GetSiteDetail(context.Background(), "SN-A", "30 days")
		require.NoError(t, err)

		joined := ""
		for _, reason := range detail.Degraded {
			joined += reason + "\n"
		}
		assert.Contains(t, joined, "device detail")
		assert.Contains(t, joined, "alarms")
		assert.Contains(t, joined, "complaint updates")
	})
}

func TestGetSiteDetailDefaultPeriod(t *testing.T) {
	s := testSiteService(&fakeLedger{customer: testCustomer()}, &fakeFoxESS{}, false)

	detail, err := s.GetSiteDetail(context.Background(), "SN-A", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSitePeriod, detail.Period)
}

func TestGetDeviceSummary(t *testing.T) {
	foxess := &fakeFoxESS{devices: []FoxESSDevice{
		{SN: "A", Status: 1},
		{SN: "B", Status: 1},
		{SN: "C", Status: 2},
		{SN: "D", Status: 3},
	}}

	s := testSiteService(&fakeLedger{}, foxess, false)
	summary, err := s.GetDeviceSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &DeviceSummary{Total: 4, Active: 2, Fault: 1, Inactive: 1}, summary)
}

func TestGetOMDevices(t *testing.T) {
	ledger := &fakeLedger{monitored: []models.Customer{
		{CustomerID: 1, CustomerName: "Ravi Sharma", SolarDeviceID: "SN-A", District: "Jaipur"},
		{CustomerID: 2, CustomerName: "Meena Patel", SolarDeviceID: "SN-B", District: "Surat"},
		{CustomerID: 3, CustomerName: "Arun Das", SolarDeviceID: "SN-C", District: "Kolkata"},
	}}
	foxess := &fakeFoxESS{devices: []FoxESSDevice{
		{SN: "SN-A", Status: 1, LastSeen: "2026-08-31 10:00:00"},
		{SN: "SN-B", Status: 2},
	}}

	s := testSiteService(ledger, foxess, false)

	t.Run("merges cloud status", func(t *testing.T) {
		rows, pagination, err := s.GetOMDevices(context.Background(), OMDeviceParams{})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Active", rows[0].Status)
		assert.Equal(t, "2026-08-31 10:00:00", rows[0].LastSeen)
		assert.Equal(t, "Fault", rows[1].Status)
		assert.Equal(t, "Inactive", rows[2].Status, "serials missing from the cloud read as offline")
		assert.Equal(t, int64(3), pagination.Total)
	})

	t.Run("status filter", func(t *testing.T) {
		rows, pagination, err := s.GetOMDevices(context.Background(), OMDeviceParams{Status: "fault"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "SN-B", rows[0].DeviceSN)
		assert.Equal(t, int64(1), pagination.Total)
	})

	t.Run("pagination", func(t *testing.T) {
		params := OMDeviceParams{}
		params.Limit = 2
		params.Offset = 2
		rows, pagination, err := s.GetOMDevices(context.Background(), params)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "SN-C", rows[0].DeviceSN)
		assert.Equal(t, int64(3), pagination.Total)
	})

	t.Run("cloud outage degrades to offline rows", func(t *testing.T) {
		down := &fakeFoxESS{devicesErr: errors.New("cloud down")}
		s := testSiteService(ledger, down, false)
		rows, _, err := s.GetOMDevices(context.Background(), OMDeviceParams{})
		require.NoError(t, err)
		for _, row := range rows {
			assert.Equal(t, "Inactive", row.Status)
		}
	})
}

func TestDeviceStatusLabels(t *testing.T) {
	assert.Equal(t, "Active", models.DeviceStatusLabel(1))
	assert.Equal(t, "Fault", models.DeviceStatusLabel(2))
	assert.Equal(t, "Inactive", models.DeviceStatusLabel(3))
	assert.Equal(t, "Inactive", models.DeviceStatusLabel(0))
}

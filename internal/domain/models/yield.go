package models

import "time"

// DailyYield maps the dailyYield table: one append-only row per device per
// calendar day, written by the external ingestion job
type DailyYield struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	DeviceSN  string    `gorm:"column:deviceSN;index" json:"deviceSN"`
	YieldDate time.Time `gorm:"column:yieldDate;index" json:"yieldDate"`
	YieldKWH  float64   `gorm:"column:yieldKwh" json:"yieldKwh"`
}

// TableName returns the table name for the DailyYield model
func (DailyYield) TableName() string {
	return "dailyYield"
}

// Device status codes reported by the FoxESS cloud
const (
	DeviceStatusOnline  = 1
	DeviceStatusFault   = 2
	DeviceStatusOffline = 3
)

// DeviceStatusLabel maps a FoxESS status code to the dashboard label.
// 1 is online, 2 is a fault; every other value (including absent) reads
// as inactive.
func DeviceStatusLabel(status int) string {
	switch status {
	case DeviceStatusOnline:
		return "Active"
	case DeviceStatusFault:
		return "Fault"
	default:
		return "Inactive"
	}
}

// DeviceHealthLabel maps a FoxESS status code to the generation health label
func DeviceHealthLabel(status int) string {
	switch status {
	case DeviceStatusOnline:
		return "Optimal"
	case DeviceStatusFault:
		return "Fault"
	default:
		return "Offline"
	}
}

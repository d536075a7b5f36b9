package models

import "time"

// Customer maps the customerDetails table. Rows are created and updated by
// the CRM intake flows; this service only reads them.
type Customer struct {
	CustomerID          uint       `gorm:"column:customerId;primaryKey" json:"customerId"`
	CustomerName        string     `gorm:"column:customerName" json:"customerName"`
	MobileNumber        string     `gorm:"column:mobileNumber;index" json:"mobileNumber"`
	EmailID             string     `gorm:"column:emailId" json:"emailId"`
	IVRSNumber          string     `gorm:"column:ivrsNumber" json:"ivrsNumber"`
	Address             string     `gorm:"column:address" json:"address"`
	District            string     `gorm:"column:district" json:"district"`
	Tehsil              string     `gorm:"column:tehsil" json:"tehsil"`
	State               string     `gorm:"column:state" json:"state"`
	SolarPlantType      string     `gorm:"column:solarPlantType" json:"solarPlantType"`
	SolarDeviceID       string     `gorm:"column:solar_device_id;index" json:"solar_device_id"`
	AddedDate           *time.Time `gorm:"column:addedDate" json:"addedDate"`
	InvoiceDate         *time.Time `gorm:"column:invoiceDate" json:"invoiceDate"`
	PanelExpiryDate     *time.Time `gorm:"column:panelExpiryDate" json:"panelExpiryDate"`
	InverterExpiryDate  *time.Time `gorm:"column:inverterExpiryDate" json:"inverterExpiryDate"`
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customerDetails"
}

// CustomerAgreement maps the customerAgreementDetails table
type CustomerAgreement struct {
	ID                     uint       `gorm:"column:id;primaryKey" json:"id"`
	CustomerID             uint       `gorm:"column:customer_id;index" json:"customer_id"`
	AgreementSignatureDate *time.Time `gorm:"column:agreementSignatureDate" json:"agreementSignatureDate"`
	SystemDeliveryDate     *time.Time `gorm:"column:systemDeliveryDate" json:"systemDeliveryDate"`
}

// TableName returns the table name for the CustomerAgreement model
func (CustomerAgreement) TableName() string {
	return "customerAgreementDetails"
}

// PanelDetail maps the panelDetails table
type PanelDetail struct {
	PanelID          uint   `gorm:"column:panelId;primaryKey" json:"panelId"`
	CustomerID       uint   `gorm:"column:customer_id;index" json:"customer_id"`
	SKU              string `gorm:"column:sku" json:"sku"`
	ItemName         string `gorm:"column:itemName" json:"itemName"`
	ManufacturerName string `gorm:"column:manufacturerName" json:"manufacturerName"`
	PartNumber       string `gorm:"column:partNumber" json:"partNumber"`
	SerialNumber1    string `gorm:"column:serialNumber1" json:"serialNumber1"`
	SerialNumber2    string `gorm:"column:serialNumber2" json:"serialNumber2"`
	SerialNumber3    string `gorm:"column:serialNumber3" json:"serialNumber3"`
	SerialNumber4    string `gorm:"column:serialNumber4" json:"serialNumber4"`
	SerialNumber5    string `gorm:"column:serialNumber5" json:"serialNumber5"`
	SerialNumber6    string `gorm:"column:serialNumber6" json:"serialNumber6"`
}

// TableName returns the table name for the PanelDetail model
func (PanelDetail) TableName() string {
	return "panelDetails"
}

// InverterDetail maps the inverterDetails table
type InverterDetail struct {
	InverterID       uint   `gorm:"column:inverterId;primaryKey" json:"inverterId"`
	CustomerID       uint   `gorm:"column:customer_id;index" json:"customer_id"`
	SKU              string `gorm:"column:sku" json:"sku"`
	ItemName         string `gorm:"column:itemName" json:"itemName"`
	ManufacturerName string `gorm:"column:manufacturerName" json:"manufacturerName"`
	PartNumber       string `gorm:"column:partNumber" json:"partNumber"`
	SerialNumber     string `gorm:"column:serialNumber" json:"serialNumber"`
}

// TableName returns the table name for the InverterDetail model
func (InverterDetail) TableName() string {
	return "inverterDetails"
}

// AllowedEmail maps the allowedEmails table
type AllowedEmail struct {
	ID    uint   `gorm:"column:id;primaryKey" json:"id"`
	Email string `gorm:"column:email;uniqueIndex" json:"email"`
}

// TableName returns the table name for the AllowedEmail model
func (AllowedEmail) TableName() string {
	return "allowedEmails"
}

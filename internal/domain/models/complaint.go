package models

import "time"

// Complaint status values used by the CRM intake flows
const (
	ComplaintStatusOpen       = "Open"
	ComplaintStatusInProgress = "In Progress"
	ComplaintStatusResolved   = "Resolved"
)

// Complaint maps the complaints table
type Complaint struct {
	ID               uint       `gorm:"column:id;primaryKey" json:"id"`
	CustomerID       uint       `gorm:"column:customerId;index" json:"customerId"`
	Status           string     `gorm:"column:status" json:"status"`
	Category         uint       `gorm:"column:category" json:"category"`
	AssignmentPerson uint       `gorm:"column:assignmentPerson" json:"assignmentPerson"`
	CreatedAt        time.Time  `gorm:"column:createdAt" json:"createdAt"`
	ResolveDate      *time.Time `gorm:"column:resolveDate" json:"resolveDate"`
}

// TableName returns the table name for the Complaint model
func (Complaint) TableName() string {
	return "complaints"
}

// ComplaintCategory maps the complaintCategories table
type ComplaintCategory struct {
	ID   uint   `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name" json:"name"`
}

// TableName returns the table name for the ComplaintCategory model
func (ComplaintCategory) TableName() string {
	return "complaintCategories"
}

// ComplaintUpdate maps the complaintUpdates table, one row per progress note
// appended to a complaint
type ComplaintUpdate struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	ComplaintID uint      `gorm:"column:complaint_id;index" json:"complaint_id"`
	UpdateText  string    `gorm:"column:updateText" json:"updateText"`
	CreatedAt   time.Time `gorm:"column:createdAt" json:"createdAt"`
}

// TableName returns the table name for the ComplaintUpdate model
func (ComplaintUpdate) TableName() string {
	return "complaintUpdates"
}

// Department maps the departments table
type Department struct {
	ID             uint   `gorm:"column:id;primaryKey" json:"id"`
	DepartmentName string `gorm:"column:departmentName" json:"departmentName"`
	PersonName     string `gorm:"column:personName" json:"personName"`
}

// TableName returns the table name for the Department model
func (Department) TableName() string {
	return "departments"
}

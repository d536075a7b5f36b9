package code

// Error code to message mapping
var codeMessageMap = map[int]string{
	// Common error codes
	ErrSuccess:         "success",
	ErrUnknown:         "unknown error",
	ErrBind:            "request parameter binding error",
	ErrValidation:      "request parameter validation error",
	ErrTooManyRequests: "request rate too high",

	// Customer error codes
	ErrCustomerNotFound: "customer not found",

	// Site / device error codes
	ErrSiteNotFound:  "site not found",
	ErrInvalidPeriod: "unsupported reporting period",

	// Complaint error codes
	ErrComplaintNotFound: "complaint not found",

	// Invoicing error codes
	ErrInvoiceNotFound:   "no invoices found",
	ErrInvoicingUpstream: "invoicing service request failed",

	// Monitoring error codes
	ErrMonitoringUpstream: "monitoring service request failed",
}

// Error code to HTTP status mapping
var codeStatusMap = map[int]int{
	// Common error codes
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTooManyRequests: StatusTooManyRequests,

	// Customer error codes
	ErrCustomerNotFound: StatusNotFound,

	// Site / device error codes
	ErrSiteNotFound:  StatusNotFound,
	ErrInvalidPeriod: StatusBadRequest,

	// Complaint error codes
	ErrComplaintNotFound: StatusNotFound,

	// Invoicing error codes
	ErrInvoiceNotFound:   StatusNotFound,
	ErrInvoicingUpstream: StatusBadGateway,

	// Monitoring error codes
	ErrMonitoringUpstream: StatusBadGateway,
}

// GetMessage returns the message for an error code
func GetMessage(errorCode int) string {
	if msg, ok := codeMessageMap[errorCode]; ok {
		return msg
	}
	return codeMessageMap[ErrUnknown]
}

// GetStatus returns the HTTP status for an error code
func GetStatus(errorCode int) int {
	if status, ok := codeStatusMap[errorCode]; ok {
		return status
	}
	return StatusInternalServerError
}

package code

// HTTP status codes used by the response helpers.
const (
	// StatusOK - 200: success.
	StatusOK = 200
	// StatusBadRequest - 400: invalid request parameters.
	StatusBadRequest = 400
	// StatusNotFound - 404: resource does not exist.
	StatusNotFound = 404
	// StatusInternalServerError - 500: internal server error.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: too many requests.
	StatusTooManyRequests = 429
	// StatusBadGateway - 502: upstream service failure.
	StatusBadGateway = 502
)

// Common error codes (100xxx).
const (
	// ErrSuccess - 200: success.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: unknown error.
	ErrUnknown
	// ErrBind - 400: request parameter binding error.
	ErrBind
	// ErrValidation - 400: request parameter validation error.
	ErrValidation
	// ErrTooManyRequests - 429: request rate too high.
	ErrTooManyRequests
)

// Customer error codes (101xxx).
const (
	// ErrCustomerNotFound - 404: customer does not exist.
	ErrCustomerNotFound int = iota + 101000
)

// Site / device error codes (102xxx).
const (
	// ErrSiteNotFound - 404: no customer record for the device serial.
	ErrSiteNotFound int = iota + 102000
	// ErrInvalidPeriod - 400: unsupported reporting period token.
	ErrInvalidPeriod
)

// Complaint error codes (103xxx).
const (
	// ErrComplaintNotFound - 404: complaint does not exist.
	ErrComplaintNotFound int = iota + 103000
)

// Invoicing error codes (104xxx).
const (
	// ErrInvoiceNotFound - 404: no invoice for the given mobile number.
	ErrInvoiceNotFound int = iota + 104000
	// ErrInvoicingUpstream - 502: Zoho request failed.
	ErrInvoicingUpstream
)

// Monitoring error codes (105xxx).
const (
	// ErrMonitoringUpstream - 502: FoxESS request failed.
	ErrMonitoringUpstream int = iota + 105000
)

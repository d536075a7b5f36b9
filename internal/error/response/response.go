package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/error/code"
)

// Response is the unified API response envelope
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PagedResponse wraps list payloads with pagination metadata
type PagedResponse struct {
	Code       int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Pagination interface{} `json:"pagination"`
}

// Success writes a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// SuccessPaged writes a successful list response with pagination metadata
func SuccessPaged(c *gin.Context, data interface{}, pagination interface{}) {
	c.JSON(http.StatusOK, PagedResponse{
		Code:       code.ErrSuccess,
		Message:    code.GetMessage(code.ErrSuccess),
		Data:       data,
		Pagination: pagination,
	})
}

// Fail writes a failure response for a business error code
func Fail(c *gin.Context, errorCode int, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: code.GetMessage(errorCode),
		Data:    data,
	})
}

// FailWithMessage writes a failure response with a custom message
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: message,
		Data:    data,
	})
}

// ParamError writes a parameter validation failure
func ParamError(c *gin.Context, message string) {
	FailWithMessage(c, code.ErrValidation, message, nil)
}

// ServerError writes a generic internal error response
func ServerError(c *gin.Context) {
	Fail(c, code.ErrUnknown, nil)
}

// NotFound writes a resource-not-found response
func NotFound(c *gin.Context, errorCode int, message string) {
	if message == "" {
		FailWithMessage(c, errorCode, code.GetMessage(errorCode), nil)
		return
	}
	FailWithMessage(c, errorCode, message, nil)
}

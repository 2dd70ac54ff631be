// Package response writes the JSON envelope shared by every API endpoint:
//
//	{"data": ..., "error": {...}, "pagination": {...}, "metadata": {...}}
package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the envelope. Exactly one of Data and Error is meaningful.
type Response struct {
	Data       interface{} `json:"data"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

// ErrorBody is a machine-readable code, its message and optional per-field details.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives the page count. perPage must be positive.
func NewPagination(page, perPage, totalItems int) *Pagination {
	return &Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: (totalItems + perPage - 1) / perPage,
	}
}

// Metadata ties a response to its request.
type Metadata struct {
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ─── Success ────────────────────────────────────────────────────────

func Success(c *gin.Context, statusCode int, data interface{}) {
	write(c, statusCode, Response{Data: data}, false)
}

func SuccessWithPagination(c *gin.Context, statusCode int, data interface{}, pagination *Pagination) {
	write(c, statusCode, Response{Data: data, Pagination: pagination}, false)
}

// ─── Failure ────────────────────────────────────────────────────────

// Fail writes an error envelope with the catalogue message for code.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	write(c, statusCode, Response{Error: newErrorBody(code, nil)}, false)
}

// FailWithFields is Fail plus per-field validation messages.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	write(c, statusCode, Response{Error: newErrorBody(code, fields)}, false)
}

// AbortFail is Fail for middleware: later handlers do not run.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	write(c, statusCode, Response{Error: newErrorBody(code, nil)}, true)
}

func newErrorBody(code ErrCode, fields map[string]string) *ErrorBody {
	return &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields}
}

func write(c *gin.Context, statusCode int, body Response, abort bool) {
	body.Metadata = Metadata{
		RequestID: RequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if abort {
		c.AbortWithStatusJSON(statusCode, body)
		return
	}
	c.JSON(statusCode, body)
}

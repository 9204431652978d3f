package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	billingdomain "github.com/ayz7879/fg-plant/internal/billing/domain"
	customerdomain "github.com/ayz7879/fg-plant/internal/customer/domain"
	entrydomain "github.com/ayz7879/fg-plant/internal/entry/domain"
	historydomain "github.com/ayz7879/fg-plant/internal/history/domain"
	"github.com/ayz7879/fg-plant/pkg/db/pagination"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Message }

func newValidationError(field, code, message string) error {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

func invalidRequestError() error {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body or query is malformed",
	}
}

// AbortWithError maps service errors onto the HTTP error envelope.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	message := "internal error"

	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, entrydomain.ErrNotFound),
		errors.Is(err, billingdomain.ErrCustomerNotFound),
		errors.Is(err, entrydomain.ErrCustomerNotFound):
		status = http.StatusNotFound
		code = "not_found"
		message = err.Error()
	case errors.Is(err, pagination.ErrInvalidPage),
		errors.Is(err, pagination.ErrInvalidPageSize),
		errors.Is(err, billingdomain.ErrInvalidCustomerID),
		errors.Is(err, billingdomain.ErrInvalidDateWindow),
		errors.Is(err, customerdomain.ErrInvalidID),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidAddress),
		errors.Is(err, customerdomain.ErrInvalidPhone),
		errors.Is(err, customerdomain.ErrInvalidPrice),
		errors.Is(err, customerdomain.ErrInvalidBillDay),
		errors.Is(err, customerdomain.ErrInvalidType),
		errors.Is(err, entrydomain.ErrInvalidID),
		errors.Is(err, entrydomain.ErrInvalidQuantity),
		errors.Is(err, entrydomain.ErrInvalidPay),
		errors.Is(err, entrydomain.ErrInvalidDate),
		errors.Is(err, entrydomain.ErrInvalidDateRange),
		errors.Is(err, historydomain.ErrInvalidEntryID),
		errors.Is(err, historydomain.ErrInvalidDateRange):
		status = http.StatusBadRequest
		code = "invalid_argument"
		message = err.Error()
	case errors.Is(err, customerdomain.ErrPhoneExists):
		status = http.StatusConflict
		code = "conflict"
		message = err.Error()
	case errors.Is(err, ErrTooManyRequests):
		status = http.StatusTooManyRequests
		code = "too_many_requests"
		message = err.Error()
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, billingdomain.ErrTransient):
		status = http.StatusServiceUnavailable
		code = "unavailable"
		message = err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": &apiError{
		Status:  status,
		Code:    code,
		Message: message,
	}})
}

// parseOptionalDate accepts YYYY-MM-DD. endOfRange values are still returned
// as midnight; date windows are inclusive at the day level.
func parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

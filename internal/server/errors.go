package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/smallbiznis/payora/internal/approval/domain"
	forecastdomain "github.com/smallbiznis/payora/internal/forecast/domain"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

type fieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type apiError struct {
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

func (e *apiError) Error() string { return e.Message }

func invalidRequestError() error {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body or parameters could not be parsed",
	}
}

func newValidationError(field, rule, message string) error {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    "validation_failed",
		Message: message,
		Fields:  []fieldError{{Field: field, Rule: rule, Message: message}},
	}
}

// AbortWithError translates domain sentinels into HTTP responses. Unknown
// errors surface as a generic 500 so internals never leak to clients.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	var integrity payabledomain.DataIntegrityError
	if errors.As(err, &integrity) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{
			"code":    "data_integrity_violation",
			"message": integrity.Reason,
			"bill_id": integrity.BillID.String(),
			"field":   integrity.Field,
		}})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	message := "internal server error"

	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, payabledomain.ErrBillNotFound),
		errors.Is(err, payabledomain.ErrVendorNotFound),
		errors.Is(err, approvaldomain.ErrWorkflowNotFound):
		status, code, message = http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, approvaldomain.ErrWorkflowExists),
		errors.Is(err, approvaldomain.ErrWorkflowClosed),
		errors.Is(err, approvaldomain.ErrVersionConflict):
		status, code, message = http.StatusConflict, "conflict", err.Error()
	case errors.Is(err, approvaldomain.ErrInvalidDecision),
		errors.Is(err, forecastdomain.ErrInvalidHorizon),
		errors.Is(err, payabledomain.ErrInvalidPayment):
		status, code, message = http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, ErrServiceUnavailable):
		status, code, message = http.StatusServiceUnavailable, "service_unavailable", err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{
		"code":    code,
		"message": message,
	}})
}

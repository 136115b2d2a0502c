package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types surfaced to API callers so they can branch without parsing messages.
const (
	TypeValidation        = "VALIDATION_ERROR"
	TypeNotFound          = "NOT_FOUND"
	TypeProductNotFound   = "PRODUCT_NOT_FOUND"
	TypeInsufficientStock = "INSUFFICIENT_STOCK"
	TypeStockConflict     = "STOCK_CONFLICT"
	TypeConflict          = "CONFLICT"
	TypeBadRequest        = "BAD_REQUEST"
	TypeUnauthorized      = "UNAUTHORIZED"
	TypeForbidden         = "FORBIDDEN"
	TypeInternal          = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Type    string       `json:"type"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is lets errors.Is match on the error type rather than pointer identity.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Type: TypeNotFound, Message: "Resource not found"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Type: TypeUnauthorized, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Type: TypeForbidden, Message: "Forbidden"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Type: TypeBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Type: TypeInternal, Message: "Internal server error"}
	ErrConflict       = &AppError{Code: http.StatusConflict, Type: TypeConflict, Message: "Resource already exists"}
	ErrStockConflict  = &AppError{Code: http.StatusConflict, Type: TypeStockConflict, Message: "Stock changed while the sale was being processed, please retry"}
)

// NewAppError creates a new application error
func NewAppError(code int, errType, message string) *AppError {
	return &AppError{
		Code:    code,
		Type:    errType,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Type:    TypeValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldValidationError is a shorthand for a single failing field.
func NewFieldValidationError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    TypeNotFound,
		Message: resource + " not found",
	}
}

// NewProductNotFoundError reports a cart line whose product does not exist.
func NewProductNotFoundError(productID string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    TypeProductNotFound,
		Message: fmt.Sprintf("Product %s not found", productID),
	}
}

// NewInsufficientStockError names the product whose stock cannot cover the request.
func NewInsufficientStockError(productName string, available, requested int) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Type:    TypeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s: available %d, requested %d", productName, available, requested),
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Type:    TypeConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    TypeBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == errType
}

// GetAppError converts an error to AppError if possible. Anything else is
// reported as a generic internal error so storage details never reach clients.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer
}

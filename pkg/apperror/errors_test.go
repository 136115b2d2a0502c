package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sangkips/pharmapos-api/pkg/apperror"
)

func TestAppError_Is(t *testing.T) {
	wrapped := fmt.Errorf("billing: %w", apperror.NewNotFoundError("Sale"))

	if !errors.Is(wrapped, apperror.ErrNotFound) {
		t.Fatalf("a custom not found error should match ErrNotFound")
	}
	if errors.Is(wrapped, apperror.ErrConflict) {
		t.Fatalf("not found should not match conflict")
	}
	if errors.Is(apperror.NewConflictError("dup"), apperror.ErrStockConflict) {
		t.Fatalf("generic conflict should not match a stock conflict")
	}
}

func TestGetAppError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantType string
	}{
		{"validation", apperror.NewFieldValidationError("items", "required"), http.StatusUnprocessableEntity, apperror.TypeValidation},
		{"insufficient stock", apperror.NewInsufficientStockError("Aspirin", 3, 4), http.StatusUnprocessableEntity, apperror.TypeInsufficientStock},
		{"product", fmt.Errorf("wrap: %w", apperror.NewProductNotFoundError("p1")), http.StatusNotFound, apperror.TypeProductNotFound},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, apperror.TypeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := apperror.GetAppError(tc.err)
			if got.Code != tc.wantCode || got.Type != tc.wantType {
				t.Fatalf("GetAppError = %+v", got)
			}
		})
	}

	if !apperror.IsType(apperror.ErrStockConflict, apperror.TypeStockConflict) || apperror.IsAppError(errors.New("x")) {
		t.Fatalf("type helpers disagree")
	}
}

package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
)

const dateLayout = "2006-01-02"

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) string {
	return middleware.UserID(c)
}

// bindError answers a failed ShouldBind call. Rule violations become a 422
// with per-field messages; malformed input becomes a 400.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{
				Field:   toSnake(fe.Field()),
				Message: bindMessage(fe),
			})
		}
		response.ValidationError(c, fields)
		return
	}
	response.BadRequest(c, "Invalid request body")
}

func bindMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date in yyyy-mm-dd form"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// toSnake turns a Go field name like StartDate into start_date.
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseDate parses an optional yyyy-mm-dd value in the server's location.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDateRange(r request.DateRangeRequest) (*time.Time, *time.Time, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return nil, nil, apperror.NewFieldValidationError("start_date", "must be a date in yyyy-mm-dd form")
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return nil, nil, apperror.NewFieldValidationError("end_date", "must be a date in yyyy-mm-dd form")
	}
	return start, end, nil
}

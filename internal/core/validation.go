// AngelaMos | 2026
// validation.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const TimeOfDayLayout = "15:04"

// NewValidator returns a validator with the marketplace's custom tags:
// maxwords=N, maxrunes=N, hhmm and money.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	//nolint:errcheck // tag names are static and valid
	_ = v.RegisterValidation("maxwords", validateMaxWords)
	//nolint:errcheck // tag names are static and valid
	_ = v.RegisterValidation("maxrunes", validateMaxRunes)
	//nolint:errcheck // tag names are static and valid
	_ = v.RegisterValidation("hhmm", validateTimeOfDay)
	//nolint:errcheck // tag names are static and valid
	_ = v.RegisterValidation("money", validateMoney)

	return v
}

func validateMaxWords(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(strings.Fields(fl.Field().String())) <= limit
}

func validateMaxRunes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) <= limit
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := time.Parse(TimeOfDayLayout, fl.Field().String())
	return err == nil
}

func validateMoney(fl validator.FieldLevel) bool {
	_, err := ParseMoney(fl.Field().String())
	return err == nil
}

// maxMoney is the largest amount a NUMERIC(10,2) column holds.
var maxMoney = decimal.RequireFromString("99999999.99")

// ParseMoney parses a non-negative amount with at most two decimal places
// that fits NUMERIC(10,2).
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", s, ErrInvalidInput)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("amount %q is negative: %w", s, ErrInvalidInput)
	}
	if d.GreaterThan(maxMoney) {
		return decimal.Decimal{}, fmt.Errorf("amount %q exceeds %s: %w", s, maxMoney, ErrInvalidInput)
	}
	if d.Exponent() < -2 && !d.Equal(d.Truncate(2)) {
		return decimal.Decimal{}, fmt.Errorf(
			"amount %q has more than two decimal places: %w",
			s,
			ErrInvalidInput,
		)
	}
	return d.Truncate(2), nil
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (time.Time, error) {
	t, err := time.Parse(TimeOfDayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, ErrInvalidInput)
	}
	return t, nil
}

// Bind decodes a JSON body into dst and validates it. Failures come back
// as a 400 *AppError ready for JSONError.
func Bind(r *http.Request, v *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ValidationError("request body is required")
		}
		return ValidationError("invalid request body")
	}
	if err := v.Struct(dst); err != nil {
		return ValidationError(FormatValidationError(err))
	}
	return nil
}

func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, formatFieldError(fe))
	}

	return strings.Join(messages, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max", "maxrunes":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "maxwords":
		return fmt.Sprintf("%s must not exceed %s words", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, strings.ToLower(fe.Param()))
	case "hhmm":
		return field + " must be a time in HH:MM format"
	case "money":
		return field + " must be a non-negative amount with at most 2 decimal places"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/clever-multi/internal/models"
)

// QuoteValidator checks market quotes for required fields and constraints
type QuoteValidator struct {
	validate *validator.Validate
}

// NewQuoteValidator creates a new quote validator
func NewQuoteValidator() *QuoteValidator {
	v := validator.New()
	v.RegisterStructValidation(validateQuoteStruct, models.MarketQuote{})
	return &QuoteValidator{validate: v}
}

func validateQuoteStruct(sl validator.StructLevel) {
	q := sl.Current().Interface().(models.MarketQuote)
	if _, err := models.ParseSport(string(q.Sport)); q.Sport != "" && err != nil {
		sl.ReportError(q.Sport, "Sport", "sport", "sport", "")
	}
	if q.IsProp && q.Side != "" && q.Line == nil {
		sl.ReportError(q.Line, "Line", "line", "line_with_side", "")
	}
}

// Validate returns an error wrapping models.ErrInvalidQuote describing every
// failed constraint, or nil
func (v *QuoteValidator) Validate(q *models.MarketQuote) error {
	err := v.validate.Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", models.ErrInvalidQuote, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", models.ErrInvalidQuote, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "sport":
		return fmt.Sprintf("%s %q is not supported", field, fe.Value())
	case "line_with_side":
		return "over/under prop requires a line"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

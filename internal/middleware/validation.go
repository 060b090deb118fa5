package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apierrors "trendpulse/internal/errors"
)

// NewValidator builds the shared validator instance with the custom rules the
// dashboard endpoints rely on.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("iso8601", isISO8601)
	v.RegisterValidation("keyword", isValidKeyword)
	return v
}

// isISO8601 validates a YYYY-MM-DD date string
func isISO8601(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// isValidKeyword rejects empty or absurdly long keyword values
func isValidKeyword(fl validator.FieldLevel) bool {
	kw := strings.TrimSpace(fl.Field().String())
	return kw != "" && len(kw) <= 100
}

// QueryParamValidator validates query parameters
type QueryParamValidator struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
		validate:     NewValidator(),
	}
}

// ValidateBool validates a boolean query parameter
func (v *QueryParamValidator) ValidateBool(w http.ResponseWriter, r *http.Request, param string, defaultValue bool) (bool, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}

	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a boolean", param)))
	return false, false
}

// trendQuery carries the raw trend-view parameters through struct validation
// before anything is parsed.
type trendQuery struct {
	From     string   `validate:"omitempty,iso8601"`
	To       string   `validate:"omitempty,iso8601"`
	Keywords []string `validate:"omitempty,dive,keyword"`
}

// ValidateTrendQuery validates the from/to/keywords parameters as one unit.
// Blank keyword entries are dropped before validation; the distinction between
// an absent keywords parameter (nil) and an explicitly empty one (empty slice)
// is preserved for the caller.
func (v *QueryParamValidator) ValidateTrendQuery(w http.ResponseWriter, r *http.Request, maxKeywords int) (from, to *time.Time, keywords []string, ok bool) {
	q := trendQuery{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if r.URL.Query().Has("keywords") {
		q.Keywords = []string{}
		for _, kw := range strings.Split(r.URL.Query().Get("keywords"), ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				q.Keywords = append(q.Keywords, kw)
			}
		}
	}

	if err := v.validate.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			v.errorHandler.HandleError(w, r, fieldError(fieldErrs[0]))
		} else {
			v.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		}
		return nil, nil, nil, false
	}
	if len(q.Keywords) > maxKeywords {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation("keywords",
			fmt.Sprintf("at most %d keywords may be selected", maxKeywords)))
		return nil, nil, nil, false
	}

	return parseValidatedDate(q.From), parseValidatedDate(q.To), q.Keywords, true
}

// fieldError translates a validator field error into the API error shape.
func fieldError(fe validator.FieldError) *apierrors.APIError {
	switch fe.Tag() {
	case "iso8601":
		return apierrors.ErrValidation(strings.ToLower(fe.Field()), "must be a date in YYYY-MM-DD format")
	case "keyword":
		return apierrors.ErrValidation("keywords", "keywords must be non-empty and at most 100 characters")
	}
	return apierrors.ErrValidation(strings.ToLower(fe.Field()), "invalid value")
}

// parseValidatedDate parses a value the iso8601 rule has already accepted.
func parseValidatedDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

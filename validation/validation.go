package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/models"
)

type Validator struct {
	validator                *validator.Validate
	logger                   logger.Logger
	tagValidationDetailsOnce sync.Once
	tagValidationDetailsMap  map[string]tagValidationDetails
}

type tagValidationDetails struct {
	validatorFunc validator.Func
	message       func(field string) string
}

// FieldErrors carries every failed field with its messages, keyed by the
// field's JSON name.
type FieldErrors struct {
	Fields map[string][]string
}

func (e *FieldErrors) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, strings.Join(e.Fields[field], "; "))
	}
	return strings.Join(parts, "; ")
}

func (e *FieldErrors) add(field string, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func New(logger logger.Logger) (*Validator, error) {
	validator := &Validator{validator: validator.New(), logger: logger}
	validator.validator.RegisterTagNameFunc(useJSONFieldNames)
	if err := validator.registerCustomValidatorsForTags(); err != nil {
		return nil, err
	}

	return validator, nil
}

// Validate returns a *FieldErrors describing every invalid field of i, or nil.
func (v *Validator) Validate(i any) error {

	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}
	v.logger.Warn("validation failed", "err", err.Error())

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	fieldErrs := &FieldErrors{}
	for _, validationErr := range validationErrs {
		fieldErrs.add(validationErr.Field(), v.messageFor(validationErr.Tag(), validationErr.Field()))
	}
	return fieldErrs
}

func (v *Validator) messageFor(tag string, field string) string {
	if details, ok := v.getTagValidationDetails()[tag]; ok {
		return details.message(field)
	}

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)

	case "min", "max":
		return fmt.Sprintf("value or length of field '%s' is not in the expected range", field)

	}
	return fmt.Sprintf("invalid value for field '%s'", field)
}

func (v *Validator) getTagValidationDetails() map[string]tagValidationDetails {
	v.tagValidationDetailsOnce.Do(func() {
		v.tagValidationDetailsMap = map[string]tagValidationDetails{
			"not_blank": {
				validatorFunc: v.isNotBlank,
				message:       func(field string) string { return fmt.Sprintf("%s is required", field) },
			},
			"rating": {
				validatorFunc: v.isValidRating,
				message: func(field string) string {
					return fmt.Sprintf("%s must be a number between %d and %d", field, models.MinRating, models.MaxRating)
				},
			},
		}
	})
	return v.tagValidationDetailsMap
}

func (v *Validator) registerCustomValidatorsForTags() error {

	tagValidationDetailsMap := v.getTagValidationDetails()

	for tag, tagValidationDetails := range tagValidationDetailsMap {
		if err := v.validator.RegisterValidation(tag, tagValidationDetails.validatorFunc); err != nil {
			v.logger.Error("failed to register customer validator function", "err", err.Error())
			return err
		}
	}
	return nil
}

func useJSONFieldNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func (v *Validator) isNotBlank(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.TrimSpace(value) == "" {
		v.logger.Debug("value is blank", "field", fl.FieldName())
		return false
	}

	return true
}

func (v *Validator) isValidRating(fl validator.FieldLevel) bool {
	_, err := ParseRating(fl.Field().String())
	if err != nil {
		v.logger.Debug("rating is invalid", "rating", fl.Field().String(), "err", err.Error())
		return false
	}

	return true
}

// ParseRating parses a textual rating, accepting only finite numbers in
// [models.MinRating, models.MaxRating].
func ParseRating(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("rating is empty")
	}

	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("rating is not a number: %w", err)
	}
	if math.IsNaN(rating) || rating < models.MinRating || rating > models.MaxRating {
		return 0, fmt.Errorf("rating %v is out of range", rating)
	}

	return rating, nil
}

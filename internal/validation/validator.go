package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"bonneaffaire/pkg/apperrors"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern      = regexp.MustCompile(`^[\d\s\-\+\(\)]{10,}$`)
	postalCodePattern = regexp.MustCompile(`^\d{5}$`)
	imageURLPattern   = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|webp|gif)$`)
	slugPattern       = regexp.MustCompile(`^[a-z0-9-]+$`)
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Engine returns the shared validator with the storefront rules registered.
func Engine() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(jsonFieldName)

		mustRegister(v, "looseemail", matchString(emailPattern))
		mustRegister(v, "loosephone", matchString(phonePattern))
		mustRegister(v, "postalcode5", matchString(postalCodePattern))
		mustRegister(v, "imageurl", matchString(imageURLPattern))
		mustRegister(v, "slug", matchString(slugPattern))
		mustRegister(v, "finite", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			if f.Kind() != reflect.Float32 && f.Kind() != reflect.Float64 {
				return true
			}
			return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
		})

		instance = v
	})
	return instance
}

// IsEmail applies the storefront's loose email rule.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Struct validates s and returns a *apperrors.ValidationError carrying every
// violated field, or nil.
func Struct(s interface{}) error {
	err := Engine().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		fields = append(fields, apperrors.FieldError{
			Field:   path,
			Message: message(path, fe),
		})
	}
	return apperrors.NewValidationError(fields)
}

// Merge joins field errors from several checks into one validation error.
func Merge(errs ...error) error {
	var fields []apperrors.FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *apperrors.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		fields = append(fields, verr.Fields...)
	}
	return apperrors.NewValidationError(fields)
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// fieldPath drops the root struct name: "Order.customer.email" -> "customer.email".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(path string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "looseemail":
		return fmt.Sprintf("%s: invalid email format", path)
	case "loosephone":
		return fmt.Sprintf("%s: invalid phone number", path)
	case "postalcode5":
		return fmt.Sprintf("%s: invalid postal code (5 digits required)", path)
	case "imageurl":
		return fmt.Sprintf("%s: invalid image URL", path)
	case "slug":
		return fmt.Sprintf("%s: invalid slug", path)
	case "finite":
		return fmt.Sprintf("%s must be a valid number", path)
	case "oneof":
		return fmt.Sprintf("%s: invalid value %q", path, fmt.Sprint(fe.Value()))
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s is too short (min %s)", path, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s entries", path, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", path, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s is too long (max %s)", path, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s allows at most %s entries", path, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", path, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", path, fe.Tag())
}

// FutureDate reports field as invalid when t is set and not after now.
func FutureDate(field string, t *time.Time, now time.Time) error {
	if t == nil || t.After(now) {
		return nil
	}
	return apperrors.NewValidationError([]apperrors.FieldError{{
		Field:   field,
		Message: fmt.Sprintf("%s must be in the future", field),
	}})
}

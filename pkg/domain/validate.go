package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// entityValidate is shared by all record validation; validator.Validate caches
// struct metadata and is safe for concurrent use.
var entityValidate *validator.Validate

func init() {
	entityValidate = validator.New(validator.WithRequiredStructEnabled())
	mustRegister(entityValidate, "sex", func(fl validator.FieldLevel) bool {
		return Sex(fl.Field().String()).Valid()
	})
	mustRegister(entityValidate, "location_type", func(fl validator.FieldLevel) bool {
		return LocationType(fl.Field().String()).Valid()
	})
	entityValidate.RegisterStructValidation(func(sl validator.StructLevel) {
		n := sl.Current().Interface().(Name)
		if n.Full() == "" {
			sl.ReportError(n.First, "First", "First", "name_parts", "")
		}
	}, Name{})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// ValidatePerson checks the required fields and enumerations of a person record.
func ValidatePerson(p Person) error {
	return translate(entityValidate.Struct(p))
}

// ValidateLocation checks the required fields and enumerations of a location record.
func ValidateLocation(l Location) error {
	return translate(entityValidate.Struct(l))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return NewValidationError(fieldPath(fe.Namespace()), reasonFor(fe))
}

// fieldPath drops the leading struct name: "Person.Names[0].First" -> "names[0].first".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "sex":
		return fmt.Sprintf("unknown sex %q", fe.Value())
	case "location_type":
		return fmt.Sprintf("unknown location type %q", fe.Value())
	case "name_parts":
		return "at least one of first, middle or last is required"
	default:
		return "failed " + fe.Tag()
	}
}

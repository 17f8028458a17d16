package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/voxscribe/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// tagOrder lists the struct tags consulted for field names in messages.
var tagOrder = []string{"mapstructure", "form", "json"}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
		_ = validate.RegisterValidation("audioext", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return len(s) > 1 && strings.HasPrefix(s, ".") && s == strings.ToLower(s)
		})
	})
	return validate
}

// FieldError describes one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// String renders the field error as "field: message".
func (f FieldError) String() string { return f.Field + ": " + f.Message }

// Struct validates s and returns every failing field. Nil means valid.
func Struct(s any) []FieldError {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "-", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{Field: namespace(e), Message: message(e)})
	}
	return out
}

// Config validates a configuration struct. All problems are reported in one
// Configuration error, extra problems found by the caller can be appended.
func Config(s any, extra ...string) error {
	problems := make([]string, 0, len(extra))
	for _, fe := range Struct(s) {
		problems = append(problems, fe.String())
	}
	problems = append(problems, extra...)
	if len(problems) == 0 {
		return nil
	}
	return errors.Configuration(problems...)
}

// Request validates a bound request struct and reports the first failure.
func Request(s any) error {
	fields := Struct(s)
	if len(fields) == 0 {
		return nil
	}
	f := fields[0]
	return errors.InvalidInput(f.Field, f.Message)
}

// namespace drops the root struct name: "Config.audio.max_size_mb" -> "audio.max_size_mb".
func namespace(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range tagOrder {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return strings.ToLower(fld.Name)
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + e.Param()
	case "max", "lte":
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "url":
		return "must be a valid URL"
	case "audioext":
		return "must be a lower-case extension starting with '.'"
	case "required_without":
		return "is required when " + e.Param() + " is not set"
	default:
		return "is invalid"
	}
}

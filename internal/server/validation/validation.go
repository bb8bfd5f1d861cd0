// Package validation runs declarative, struct-tag based rule sets over
// request shapes and reports every failing field at once.
//
// Rules are go-playground/validator tags plus "notblank", which rejects
// strings that are empty after trimming. Fields are reported by their JSON
// names in declaration order, one error per field (the first rule that fails).
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Stable error codes returned to clients.
const (
	CodeNotEmpty     = "NotEmptyValidator"
	CodeLength       = "LengthValidator"
	CodeEmail        = "EmailValidator"
	CodeGreaterThan  = "GreaterThanValidator"
	CodeEqual        = "EqualValidator"
	CodeOneOf        = "PredicateValidator"
	CodeInvalidInput = "InvalidInput"
)

// Error is one field-level problem.
type Error struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is an ordered list of field errors. An empty Result means valid.
type Result []Error

// Valid reports whether no errors were collected.
func (r Result) Valid() bool { return len(r) == 0 }

// Messages returns the error messages grouped by field, preserving order
// within each field.
func (r Result) Messages() map[string][]string {
	out := make(map[string][]string, len(r))
	for _, e := range r {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// Fail builds a single-error Result for business rule violations.
func Fail(field, code, message string) Result {
	return Result{{Field: field, Code: code, Message: message}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return lowerFirst(f.Name)
		}
		return name
	})

	// notblank is registered on a fresh instance so it cannot fail.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return !f.IsZero()
		}
		return strings.TrimSpace(f.String()) != ""
	})

	return v
}

// Validate evaluates the rules declared on v, which must be a struct or a
// pointer to one. It never returns nil errors for invalid input: a value the
// validator cannot inspect yields a single CodeInvalidInput entry.
func Validate(v any) Result {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Fail("", CodeInvalidInput, err.Error())
	}

	res := make(Result, 0, len(verrs))
	for _, fe := range verrs {
		res = append(res, Error{
			Field:   fe.Field(),
			Code:    codeFor(fe.Tag()),
			Message: messageFor(fe),
		})
	}
	return res
}

func codeFor(tag string) string {
	switch tag {
	case "required", "notblank":
		return CodeNotEmpty
	case "min", "max", "len":
		return CodeLength
	case "email":
		return CodeEmail
	case "gt", "gte":
		return CodeGreaterThan
	case "eqfield":
		return CodeEqual
	case "oneof":
		return CodeOneOf
	default:
		return tag
	}
}

func messageFor(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("'%s' must not be empty.", f)
	case "min":
		return fmt.Sprintf("'%s' must be at least %s characters.", f, fe.Param())
	case "max":
		return fmt.Sprintf("'%s' must be at most %s characters.", f, fe.Param())
	case "len":
		return fmt.Sprintf("'%s' must be exactly %s characters.", f, fe.Param())
	case "email":
		return fmt.Sprintf("'%s' is not a valid email address.", f)
	case "gt":
		return fmt.Sprintf("'%s' must be greater than %s.", f, fe.Param())
	case "gte":
		return fmt.Sprintf("'%s' must be greater than or equal to %s.", f, fe.Param())
	case "eqfield":
		return fmt.Sprintf("'%s' must be equal to '%s'.", f, lowerFirst(fe.Param()))
	case "oneof":
		return fmt.Sprintf("'%s' must be one of: %s.", f, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("'%s' failed the '%s' rule.", f, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

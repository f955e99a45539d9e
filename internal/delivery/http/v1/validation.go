package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validatorsOnce sync.Once

// registerValidators makes validator report fields by their JSON names, so
// error keys match the request body, and adds the notblank rule that treats
// whitespace-only strings as missing.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

// bindJSON decodes and validates the body. An empty body still goes through
// validation so that every missing field is reported.
func bindJSON(c *gin.Context, dst any) map[string][]string {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(dst)
	}
	if err == nil {
		return nil
	}
	return validationMessages(err)
}

func validationMessages(err error) map[string][]string {
	fields := make(map[string][]string)

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &validationErrs):
		for _, fe := range validationErrs {
			field, message := fieldErrorMessage(fe)
			fields[field] = append(fields[field], message)
		}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		fields[typeErr.Field] = []string{typeErrorMessage(typeErr)}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		fields["body"] = []string{"The request body must be valid JSON."}
	default:
		fields["body"] = []string{"The request body is invalid."}
	}
	return fields
}

func displayName(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func fieldErrorMessage(fe validator.FieldError) (string, string) {
	field := fe.Field()
	name := displayName(field)

	switch fe.Tag() {
	case "required", "notblank":
		return field, fmt.Sprintf("The %s field is required.", name)
	case "max":
		return field, fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
	case "min":
		return field, fmt.Sprintf("The %s field must be at least %s characters.", name, fe.Param())
	case "email":
		return field, fmt.Sprintf("The %s field must be a valid email address.", name)
	case "oneof":
		return field, fmt.Sprintf("The selected %s is invalid.", name)
	case "eqfield":
		// Reported on the confirmed field, as in "password_confirmation".
		confirmed := strings.TrimSuffix(field, "_confirmation")
		return confirmed, fmt.Sprintf("The %s field confirmation does not match.", displayName(confirmed))
	default:
		return field, fmt.Sprintf("The %s field is invalid.", name)
	}
}

func typeErrorMessage(err *json.UnmarshalTypeError) string {
	name := displayName(err.Field)
	switch err.Type.Kind() {
	case reflect.String:
		return fmt.Sprintf("The %s field must be a string.", name)
	case reflect.Bool:
		return fmt.Sprintf("The %s field must be true or false.", name)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("The %s field must be an integer.", name)
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}

// flexibleBool accepts the boolean spellings HTML forms and loosely typed
// clients send: true/false, 1/0, "1"/"0" and "true"/"false". null is false.
type flexibleBool bool

func (b *flexibleBool) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(string(data)) {
	case "true", "1", `"1"`, `"true"`:
		*b = true
	case "false", "0", `"0"`, `"false"`, `""`, "null":
		*b = false
	default:
		return &json.UnmarshalTypeError{
			Value: string(data),
			Type:  reflect.TypeOf(true),
		}
	}
	return nil
}

// flexibleInt accepts an integer either as a JSON number or as a string
// holding one, e.g. 7 or "7".
type flexibleInt int64

func (i *flexibleInt) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return &json.UnmarshalTypeError{
			Value: string(data),
			Type:  reflect.TypeOf(int64(0)),
		}
	}
	*i = flexibleInt(n)
	return nil
}

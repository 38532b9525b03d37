package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/meditrack/meditrack-backend/pkg/util"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report the JSON name of a field
// instead of the Go one.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// validationMessages turns a bind error into a headline message and the
// per-field messages. The headline is the first field message.
func validationMessages(err error) (string, map[string]string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		first := ""
		for _, fe := range verrs {
			name := fieldPath(fe)
			msg := fieldMessage(name, fe)
			if first == "" {
				first = msg
			}
			if _, seen := fields[name]; !seen {
				fields[name] = msg
			}
		}
		return first, fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		name := typeErr.Field
		msg := fmt.Sprintf("%q must be a %s", name, jsonKind(typeErr.Type))
		return msg, map[string]string{name: msg}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "Request body must be valid JSON", nil
	}

	return "Invalid input", nil
}

// fieldPath drops the struct name from the namespace:
// SignupRequest.emergencyContact.name -> emergencyContact.name
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", name)
	case "email":
		return fmt.Sprintf("%q must be a valid email", name)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%q length must be at least %s characters long", name, fe.Param())
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", name, fe.Param())
		}
		return fmt.Sprintf("%q must be less than or equal to %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%q is invalid", name)
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Bool:
		return "boolean"
	}
	return "string"
}

func requiredMessage(field string) string {
	return fmt.Sprintf("%q is required", field)
}

func passwordMessage(err error) string {
	if errors.Is(err, util.ErrPasswordTooLong) {
		return fmt.Sprintf(`"password" length must be less than or equal to %d bytes long`, util.MaxPasswordBytes)
	}
	return fmt.Sprintf(`"password" length must be at least %d characters long`, util.MinPasswordLength)
}

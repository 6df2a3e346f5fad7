package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var initOnce sync.Once

// domainAliases name the enum and range rules shared by the request DTOs.
var domainAliases = map[string]string{
	"pwd":     "min=6,max=72",
	"round":   "oneof=HR Technical Managerial",
	"cstatus": "oneof=scheduled completed selected rejected",
	"score":   "gte=0,lte=10",
}

// Init wires gin's validator once: errors are keyed by json name and the
// domain aliases become available as binding tags.
func Init() {
	initOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)
		for alias, tags := range domainAliases {
			v.RegisterAlias(alias, tags)
		}
	})
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

var (
	errInvalidJSON = map[string]string{"payload": "invalid json"}
	errTooLarge    = map[string]string{"payload": "request body too large"}
	errPayload     = map[string]string{"payload": "invalid payload"}
)

// ToDetails maps a bind error to field -> message. Decoder failures are
// reported under "payload".
func ToDetails(err error) map[string]string {
	var (
		syntax   *json.SyntaxError
		typeErr  *json.UnmarshalTypeError
		fields   validator.ValidationErrors
		tooLarge *http.MaxBytesError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &fields):
		out := make(map[string]string, len(fields))
		for _, fe := range fields {
			out[fe.Field()] = message(fe)
		}
		return out
	case errors.As(err, &syntax):
		return clone(errInvalidJSON)
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return clone(errInvalidJSON)
		}
		return map[string]string{typeErr.Field: "must be a " + typeErr.Type.String()}
	case errors.As(err, &tooLarge):
		return clone(errTooLarge)
	default:
		return clone(errPayload)
	}
}

func clone(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// fixed messages; min/max/oneof depend on the parameter or field kind.
var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"gte":      "must be greater than or equal to %s",
	"lte":      "must be less than or equal to %s",
}

func message(fe validator.FieldError) string {
	tag, param := fe.ActualTag(), fe.Param()
	if tmpl, ok := messages[tag]; ok {
		if strings.Contains(tmpl, "%s") {
			return fmt.Sprintf(tmpl, param)
		}
		return tmpl
	}
	switch tag {
	case "min", "max":
		bound := "at least"
		if tag == "max" {
			bound = "at most"
		}
		if numeric(fe.Kind()) {
			return fmt.Sprintf("must be %s %s", bound, param)
		}
		return fmt.Sprintf("must be %s %s characters long", bound, param)
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "":
		return "is invalid"
	}
	if param == "" {
		return fmt.Sprintf("failed %q", tag)
	}
	return fmt.Sprintf("failed %q (%s)", tag, param)
}

func numeric(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || k == reflect.Float32 || k == reflect.Float64
}

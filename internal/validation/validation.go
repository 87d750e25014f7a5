// Package validation turns raw request bodies and query strings into typed
// requests, reporting every rejected field by its wire name.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

// DateLayout is the calendar-date form accepted for due dates.
const DateLayout = "2006-01-02"

var registerOnce sync.Once

// Register installs the field naming and custom rules on gin's validator.
// It is safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic(fmt.Sprintf("validation: unexpected binding engine %T", binding.Validator.Engine()))
		}
		v.RegisterTagNameFunc(wireName)
		rules := map[string]validator.Func{
			"timestamp": func(fl validator.FieldLevel) bool {
				_, err := ParseTimestamp(fl.Field().String())
				return err == nil
			},
			"taskstatus": func(fl validator.FieldLevel) bool {
				return models.TaskStatus(fl.Field().String()).Valid()
			},
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("validation: register %q: %v", tag, err))
			}
		}
	})
}

func wireName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ParseTimestamp accepts an RFC 3339 timestamp or a YYYY-MM-DD date, the
// latter read as midnight UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}

// BindJSON decodes the request body into obj and validates it. A nil result
// means obj is ready to use.
func BindJSON(c *gin.Context, obj interface{}) []dto.FieldError {
	Register()
	if err := c.ShouldBindJSON(obj); err != nil {
		return Translate(err)
	}
	return nil
}

// BindListTasksQuery reads the listing parameters, applying defaults for
// absent ones. Numeric parameters that do not parse are reported alongside
// any rule violations.
func BindListTasksQuery(c *gin.Context) (dto.ListTasksQuery, []dto.FieldError) {
	Register()
	q := dto.ListTasksQuery{
		Page:      constants.DefaultPage,
		Limit:     constants.DefaultPageSize,
		Status:    c.Query("status"),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}

	var fieldErrs []dto.FieldError
	parseInt := func(key string, dst *int) {
		raw, ok := c.GetQuery(key)
		if !ok {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fieldErrs = append(fieldErrs, dto.FieldError{Field: key, Message: "must be an integer"})
			return
		}
		*dst = n
	}
	parseInt("page", &q.Page)
	parseInt("limit", &q.Limit)

	if err := binding.Validator.ValidateStruct(&q); err != nil {
		for _, fe := range Translate(err) {
			if !hasField(fieldErrs, fe.Field) {
				fieldErrs = append(fieldErrs, fe)
			}
		}
	}
	return q, fieldErrs
}

func hasField(errs []dto.FieldError, field string) bool {
	for _, fe := range errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Translate converts a binding or validation error into field errors.
func Translate(err error) []dto.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]dto.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, dto.FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return []dto.FieldError{{Field: field, Message: "must be a " + typeErr.Type.String()}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []dto.FieldError{{Field: "body", Message: "malformed JSON"}}
	}
	if errors.Is(err, io.EOF) {
		return []dto.FieldError{{Field: "body", Message: "request body is required"}}
	}
	return []dto.FieldError{{Field: "body", Message: err.Error()}}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "taskstatus":
		return "must be one of: pending, in-progress, completed"
	case "timestamp":
		return "must be an RFC 3339 timestamp or a YYYY-MM-DD date"
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}

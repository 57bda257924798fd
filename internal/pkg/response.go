package pkg

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/rentfront/internal/domain"
)

// Response is the standard JSON envelope for API responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the JSON envelope for rejected input. Errors maps
// each offending field, by its wire name, to a readable reason.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func send(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) { send(c, http.StatusOK, "success", data) }

// Created answers a new order, account or document submission with 201.
func Created(c *gin.Context, data any) { send(c, http.StatusCreated, "created", data) }

// List sends a page of results.
func List(c *gin.Context, result any) { Success(c, result) }

// Error sends err as a JSON error response with the status of its
// domain.ErrorCode. Messages of internal and backend failures are replaced by
// the generic text from UserMessage and the cause is logged instead.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.Int("status", status),
			slog.String("code", domain.CodeOf(err).String()),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}

	send(c, status, UserMessage(err), nil)
}

// ValidationError sends a 400 JSON response with per-field validation error details.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body (JSON or form) to obj and validates
// it. On failure it sends a ValidationError response and returns false.
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		// Malformed body: nothing field-level to report.
		send(c, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	names := wireNames(obj)
	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := names[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		fieldErrors[name] = fieldMessage(fe)
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fieldErrors,
	})
}

// fieldMessage describes a failed validation rule in words.
func fieldMessage(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", param)
		}
		return "must be at least " + param
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", param)
		}
		return "must be at most " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), param)
		}
		return "failed " + fe.Tag()
	}
}

// wireNames maps struct field names of obj to the names clients send: the
// json tag, else the form tag. It returns nil when obj is not a struct.
func wireNames(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := tagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		} else if name := tagName(f.Tag.Get("form")); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

// tagName extracts the field name from a json or form struct tag value.
func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

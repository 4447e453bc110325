package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes and validates the body into out. On failure it writes the
// error response and returns false.
func BindJSON(ctx *gin.Context, out any) bool {
	err := ctx.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Sprintf("Request body must be at most %d bytes.", tooLarge.Limit), nil)
		return false
	}

	RespondBadRequest(ctx, "Invalid request body", bindErrorDetails(err, out))
	return false
}

func bindErrorDetails(err error, out any) gin.H {
	root := structType(out)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   jsonFieldName(root, fe.StructField(), fe.Field()),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
		}
		return gin.H{"fields": fields}
	}

	// note.Date is the only text-decoded field in request bodies
	if errors.Is(err, note.ErrInvalidDate) {
		return gin.H{
			"json":  "invalid_json_value",
			"field": "taskDate",
			"fields": []FieldError{{
				Field:   "taskDate",
				Rule:    "date",
				Param:   note.DateLayout,
				Message: "must be a date formatted as YYYY-MM-DD",
			}},
		}
	}

	if errors.Is(err, io.EOF) {
		return gin.H{"json": "empty_body"}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := jsonPath(root, typeErr.Field)

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeName(typeErr.Type)),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

func structType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// jsonFieldName maps a Go field of root to its json key. Request bodies are
// flat so one level is enough.
func jsonFieldName(root reflect.Type, goName, fallback string) string {
	if root == nil {
		return fallback
	}

	sf, ok := root.FieldByName(goName)
	if !ok {
		return fallback
	}

	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

// jsonPath normalises the decoder's field path, which may hold Go names on
// older toolchains.
func jsonPath(root reflect.Type, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	head, rest, nested := strings.Cut(path, ".")
	head = jsonFieldName(root, head, head)
	if nested {
		return head + "." + rest
	}
	return head
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	}
	return t.String()
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}

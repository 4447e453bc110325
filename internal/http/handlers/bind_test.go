package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/geocoder89/notesapp/internal/domain/user"
	"github.com/geocoder89/notesapp/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/login", func(ctx *gin.Context) {
		var req user.LoginRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusOK)
	})
	r.POST("/notes", func(ctx *gin.Context) {
		var req note.CreateRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":""}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}

	wantRules := map[string]string{
		"email":    "required",
		"password": "required",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Error.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Error.Details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}

	long := `{"title":"` + strings.Repeat("a", 256) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString(long))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp = bindErrorResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if len(resp.Error.Details.Fields) != 1 {
		t.Fatalf("expected one field error, got %+v", resp.Error.Details.Fields)
	}
	if got := resp.Error.Details.Fields[0]; got.Field != "title" || got.Rule != "max" || got.Param != "255" {
		t.Fatalf("unexpected field error: %+v", got)
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.PUT("/notes/:id", func(ctx *gin.Context) {
		var req note.PatchRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusOK)
	})

	body := `{"title":"Groceries","pinned":"yes"}`
	req := httptest.NewRequest(http.MethodPut, "/notes/abc", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "pinned" {
		t.Fatalf("expected detail field to be pinned, got %q", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) == 0 {
		t.Fatalf("expected at least one field error in details.fields")
	}

	fieldErr := resp.Error.Details.Fields[0]
	if fieldErr.Field != "pinned" {
		t.Fatalf("expected fields[0].field=pinned, got %q", fieldErr.Field)
	}
	if fieldErr.Rule != "type" {
		t.Fatalf("expected fields[0].rule=type, got %q", fieldErr.Rule)
	}
	if fieldErr.Message == "" {
		t.Fatalf("expected non-empty fields[0].message")
	}
}

func TestBindJSON_DomainFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, 64)
		ctx.Next()
	})
	r.POST("/notes", func(ctx *gin.Context) {
		var req note.CreateRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantJSON   string
		wantField  string
	}{
		{name: "bad task date", body: `{"title":"x","taskDate":"15/10/2026"}`, wantStatus: http.StatusBadRequest, wantJSON: "invalid_json_value", wantField: "taskDate"},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest, wantJSON: "empty_body"},
		{name: "truncated", body: `{"title":`, wantStatus: http.StatusBadRequest, wantJSON: "invalid_json_syntax"},
		{name: "too large", body: `{"content":"` + strings.Repeat("x", 100) + `"}`, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			var resp bindErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
			}

			if tt.wantStatus == http.StatusRequestEntityTooLarge {
				if resp.Error.Code != "payload_too_large" {
					t.Fatalf("unexpected code: %s", resp.Error.Code)
				}
				return
			}

			if resp.Error.Details.JSON != tt.wantJSON {
				t.Fatalf("details.json = %q, want %q", resp.Error.Details.JSON, tt.wantJSON)
			}
			if resp.Error.Details.Field != tt.wantField {
				t.Fatalf("details.field = %q, want %q", resp.Error.Details.Field, tt.wantField)
			}
		})
	}
}

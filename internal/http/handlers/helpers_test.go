package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/geocoder89/notesapp/internal/http/middlewares"
	"github.com/geocoder89/notesapp/internal/session"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

var fixedNow = time.Date(2026, time.October, 14, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// Fake repository implementation of the handlers.NotesRepository interface

type fakeNotesRepo struct {
	listFn   func(ctx context.Context, ownerID string) ([]note.Note, error)
	getFn    func(ctx context.Context, ownerID, id string) (note.Note, error)
	createFn func(ctx context.Context, ownerID string, req note.CreateRequest) (note.Note, error)
	patchFn  func(ctx context.Context, ownerID, id string, req note.PatchRequest) (note.Note, error)
	removeFn func(ctx context.Context, ownerID, id string) error
}

func (f *fakeNotesRepo) List(ctx context.Context, ownerID string) ([]note.Note, error) {
	if f.listFn != nil {
		return f.listFn(ctx, ownerID)
	}
	return []note.Note{}, nil
}

func (f *fakeNotesRepo) Get(ctx context.Context, ownerID, id string) (note.Note, error) {
	if f.getFn != nil {
		return f.getFn(ctx, ownerID, id)
	}
	return note.Note{}, nil
}

func (f *fakeNotesRepo) Create(ctx context.Context, ownerID string, req note.CreateRequest) (note.Note, error) {
	if f.createFn != nil {
		return f.createFn(ctx, ownerID, req)
	}
	return note.Note{}, nil
}

func (f *fakeNotesRepo) Patch(ctx context.Context, ownerID, id string, req note.PatchRequest) (note.Note, error) {
	if f.patchFn != nil {
		return f.patchFn(ctx, ownerID, id, req)
	}
	return note.Note{}, nil
}

func (f *fakeNotesRepo) Remove(ctx context.Context, ownerID, id string) error {
	if f.removeFn != nil {
		return f.removeFn(ctx, ownerID, id)
	}
	return nil
}

// asUser stands in for the session middleware.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxActor, session.Actor{UserID: userID, SessionID: "sid-" + userID})
		c.Next()
	}
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, asUser("owner-1"), h)

	return r
}

func doRequest(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode error body: %v body=%s", err, w.Body.String())
	}
	return env
}

func datePtr(y int, m time.Month, d int) *note.Date {
	v := note.Date{Year: y, Month: m, Day: d}
	return &v
}

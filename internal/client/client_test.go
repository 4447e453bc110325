package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/notesapp/internal/accounts"
	"github.com/geocoder89/notesapp/internal/client"
	"github.com/geocoder89/notesapp/internal/config"
	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/geocoder89/notesapp/internal/domain/user"
	"github.com/geocoder89/notesapp/internal/export"
	apphttp "github.com/geocoder89/notesapp/internal/http"
	"github.com/geocoder89/notesapp/internal/http/middlewares"
	"github.com/geocoder89/notesapp/internal/observability"
	"github.com/geocoder89/notesapp/internal/repo/memory"
	"github.com/geocoder89/notesapp/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Env:            "test",
		SessionSecret:  "client-test-secret",
		SessionTTL:     time.Hour,
		SessionSliding: true,
		AuthRateLimit:  100,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := accounts.NewService(memory.NewUsersRepo())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	router := apphttp.NewRouter(apphttp.Deps{
		Config:      cfg,
		Log:         logger,
		Notes:       memory.NewNotesRepo(),
		Accounts:    svc,
		Sessions:    session.NewManager(session.NewMemoryStore(), session.NewSigner(cfg.SessionSecret), session.Options{TTL: cfg.SessionTTL, Sliding: true}, logger),
		Exports:     export.Default(),
		Prom:        observability.NewProm(reg),
		Gatherer:    reg,
		AuthLimiter: middlewares.NewRateLimiter(cfg.AuthRateLimit, time.Minute),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func registered(t *testing.T, base string) *client.Client {
	t.Helper()

	c, err := client.New(base)
	require.NoError(t, err)

	_, err = c.Register(context.Background(), user.RegisterRequest{
		Name:            "Ada",
		Email:           "ada@example.com",
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, c.Session())
	return c
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c, err := client.New("")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Empty(t, c.Session())
}

func TestClient_SessionLifecycle(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	c := registered(t, srv.URL)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)

	// a second client resumes the saved token
	resumed, err := client.New(srv.URL, client.WithSession(c.Session()))
	require.NoError(t, err)
	_, err = resumed.Me(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Session())

	_, err = resumed.Me(ctx)
	var apiErr client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestClient_LoginWrongPassword(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	c := registered(t, srv.URL)
	require.NoError(t, c.Logout(ctx))

	_, err := c.Login(ctx, "ada@example.com", "wrong-password")
	var apiErr client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid_credentials", apiErr.Code)

	u, err := c.Login(ctx, "ADA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
}

func TestClient_NotesCRUD(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := registered(t, srv.URL)

	created, err := c.CreateNote(ctx, note.CreateRequest{Title: "  Groceries ", Content: "milk"})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", created.Title)

	pinned := true
	updated, err := c.UpdateNote(ctx, created.ID, note.PatchRequest{Pinned: &pinned})
	require.NoError(t, err)
	assert.True(t, updated.Pinned)
	assert.Equal(t, "milk", updated.Content)

	got, err := c.GetNote(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.UpdatedAt, got.UpdatedAt)

	list, err := c.ListNotes(ctx, client.ListOptions{Query: "grocer"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.DeleteNote(ctx, created.ID))

	_, err = c.GetNote(ctx, created.ID)
	var apiErr client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_MutateThenListSerializes(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := registered(t, srv.URL)

	var wg sync.WaitGroup
	counts := make([]int, 5)
	for i := range counts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			list, err := c.MutateThenList(ctx, func(ctx context.Context) error {
				_, err := c.CreateNote(ctx, note.CreateRequest{Title: "n"})
				return err
			}, client.ListOptions{})
			if err == nil {
				counts[i] = len(list)
			}
		}(i)
	}
	wg.Wait()

	// every refresh observed exactly its own mutation on top of the earlier ones
	seen := map[int]bool{}
	for _, n := range counts {
		seen[n] = true
	}
	assert.Len(t, seen, len(counts))
	for i := 1; i <= len(counts); i++ {
		assert.True(t, seen[i], "missing refresh with %d notes", i)
	}
}

func TestClient_Export(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := registered(t, srv.URL)

	created, err := c.CreateNote(ctx, note.CreateRequest{Title: "Report", Content: "body"})
	require.NoError(t, err)

	out, err := c.ExportNote(ctx, created.ID, "json")
	require.NoError(t, err)
	assert.Contains(t, out.ContentType, "application/json")
	assert.NotEmpty(t, out.Filename)
	assert.Contains(t, string(out.Body), "Report")

	_, err = c.ExportDate(ctx, "not-a-date", "pdf")
	var apiErr client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

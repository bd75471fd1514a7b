package middleware_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasku-go-api/internal/middleware"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/service"
	"github.com/noah-isme/kasku-go-api/internal/utils"
)

type channelRecorder struct {
	entries chan service.AuditEntry
}

func newChannelRecorder() *channelRecorder {
	return &channelRecorder{entries: make(chan service.AuditEntry, 4)}
}

func (r *channelRecorder) Record(_ context.Context, entry service.AuditEntry) error {
	r.entries <- entry
	return nil
}

func (r *channelRecorder) wait(t *testing.T) service.AuditEntry {
	t.Helper()
	select {
	case entry := <-r.entries:
		return entry
	case <-time.After(2 * time.Second):
		t.Fatal("no audit entry recorded")
		return service.AuditEntry{}
	}
}

func (r *channelRecorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case entry := <-r.entries:
		t.Fatalf("unexpected audit entry for action %s", entry.Action)
	case <-time.After(200 * time.Millisecond):
	}
}

func asUser(id uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUser, models.User{ID: id, Username: "tester"})
		c.Locals(middleware.LocalUserID, id)
		return c.Next()
	}
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuditedRecordsSuccess(t *testing.T) {
	recorder := newChannelRecorder()
	app := fiber.New()
	app.Post("/students", asUser(7), middleware.Audited(recorder, models.AuditActionStudentCreate, "student",
		func(c *fiber.Ctx) error {
			return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", fiber.Map{"id": 1})
		}))

	resp := postJSON(t, app, "/students", `{"name":"Budi","phone":"+62811"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	entry := recorder.wait(t)
	require.EqualValues(t, 7, entry.UserID)
	require.Equal(t, models.AuditActionStudentCreate, entry.Action)
	require.Equal(t, "student", entry.Resource)
	require.True(t, entry.Success)
	require.Empty(t, entry.ErrorMessage)
	require.Equal(t, "Budi", entry.Context["name"])
}

func TestAuditedRecordsFailureMessage(t *testing.T) {
	recorder := newChannelRecorder()
	app := fiber.New()
	app.Post("/students", asUser(7), middleware.Audited(recorder, models.AuditActionStudentCreate, "student",
		func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusConflict, "student already exists")
		}))

	resp := postJSON(t, app, "/students", `{"name":"Budi"}`)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	entry := recorder.wait(t)
	require.False(t, entry.Success)
	require.Equal(t, "student already exists", entry.ErrorMessage)
}

func TestAuditedCapturesResourceID(t *testing.T) {
	recorder := newChannelRecorder()
	app := fiber.New()
	app.Delete("/students/:id", asUser(7), middleware.Audited(recorder, models.AuditActionStudentDelete, "student",
		func(c *fiber.Ctx) error {
			return utils.SendSuccess(c, "student deleted", nil)
		}))

	req := httptest.NewRequest(http.MethodDelete, "/students/42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	entry := recorder.wait(t)
	require.NotNil(t, entry.ResourceID)
	require.Equal(t, "42", *entry.ResourceID)
}

func TestAuditedSkipsAnonymousRequests(t *testing.T) {
	recorder := newChannelRecorder()
	app := fiber.New()
	app.Post("/students", middleware.Audited(recorder, models.AuditActionStudentCreate, "student",
		func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}))

	resp := postJSON(t, app, "/students", `{"name":"Budi"}`)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	recorder.expectNone(t)
}

func TestAuditedEntrySurvivesContextRecycle(t *testing.T) {
	// Hold the recorder until a second request has recycled the fiber
	// context; the first entry must keep its own copies of the strings
	// read off the request buffers.
	gate := make(chan struct{})
	recorder := newChannelRecorder()
	gated := gatedRecorder{inner: recorder, gate: gate}

	app := fiber.New()
	app.Delete("/students/:id", asUser(7), middleware.Audited(&gated, models.AuditActionStudentDelete, "student",
		func(c *fiber.Ctx) error {
			return utils.SendSuccess(c, "student deleted", nil)
		}))

	first := httptest.NewRequest(http.MethodDelete, "/students/41", nil)
	first.Header.Set("User-Agent", "agent-one")
	resp, err := app.Test(first)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	second := httptest.NewRequest(http.MethodDelete, "/students/90210", nil)
	second.Header.Set("User-Agent", "agent-two-with-a-longer-string")
	resp, err = app.Test(second)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	close(gate)
	byResource := map[string]service.AuditEntry{}
	for i := 0; i < 2; i++ {
		entry := recorder.wait(t)
		require.NotNil(t, entry.ResourceID)
		byResource[*entry.ResourceID] = entry
	}
	require.Equal(t, "agent-one", byResource["41"].UserAgent)
	require.Equal(t, "agent-two-with-a-longer-string", byResource["90210"].UserAgent)
}

type gatedRecorder struct {
	inner *channelRecorder
	gate  chan struct{}
}

func (r *gatedRecorder) Record(ctx context.Context, entry service.AuditEntry) error {
	<-r.gate
	return r.inner.Record(ctx, entry)
}

func TestAuditedRedirectIsNotSuccess(t *testing.T) {
	recorder := newChannelRecorder()
	app := fiber.New()
	app.Post("/students", asUser(7), middleware.Audited(recorder, models.AuditActionStudentCreate, "student",
		func(c *fiber.Ctx) error {
			return c.Redirect("/students/1", fiber.StatusSeeOther)
		}))

	resp := postJSON(t, app, "/students", `{"name":"Budi"}`)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	entry := recorder.wait(t)
	require.False(t, entry.Success)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pilltrack/internal/db"
	"github.com/terraincognita07/pilltrack/internal/models"
	"github.com/terraincognita07/pilltrack/internal/security"
	"github.com/terraincognita07/pilltrack/internal/services"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type dispatcherStub struct {
	mu   sync.Mutex
	sent []services.PillReminder
	err  error
}

func (stub *dispatcherStub) SendPillReminder(_ context.Context, reminder services.PillReminder) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.err != nil {
		return stub.err
	}
	stub.sent = append(stub.sent, reminder)
	return nil
}

type testEnv struct {
	app          *fiber.App
	handler      *Handler
	repositories *db.Repositories
	dispatcher   *dispatcherStub
	location     *time.Location
	now          time.Time
}

type responseEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func mustLoadLocation(t *testing.T) *time.Location {
	t.Helper()

	location, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return location
}

// newTestEnv pins the clock to 09:00 on the given local date.
func newTestEnv(t *testing.T, today string) *testEnv {
	t.Helper()

	location := mustLoadLocation(t)
	day, err := time.ParseInLocation("2006-01-02", today, location)
	if err != nil {
		t.Fatalf("parse test day: %v", err)
	}
	now := day.Add(9 * time.Hour)

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "pilltrack-api.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("resolve sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	dispatcher := &dispatcherStub{}
	handler, err := NewHandler(database, HandlerOptions{
		SecretKey:  testSecretKey,
		Location:   location,
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatalf("NewHandler returned error: %v", err)
	}
	handler.withClock(func() time.Time { return now })

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	return &testEnv{
		app:          app,
		handler:      handler,
		repositories: handler.repositories,
		dispatcher:   dispatcher,
		location:     location,
		now:          now,
	}
}

func (env *testEnv) createUser(t *testing.T, email string) (models.User, string) {
	t.Helper()

	user := models.User{Email: email, FullName: "Test User", PasswordHash: "hash", Role: models.RoleCustomer}
	if err := env.repositories.Users.Create(&user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := security.IssueToken([]byte(testSecretKey), user.ID, user.Role, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user, token
}

func (env *testEnv) createCycle(t *testing.T, userID uint, start string) models.MenstrualCycle {
	t.Helper()

	day, err := time.ParseInLocation("2006-01-02", start, env.location)
	if err != nil {
		t.Fatalf("parse cycle start: %v", err)
	}
	cycle := models.MenstrualCycle{UserID: userID, CycleStartDate: day, CycleLength: 28}
	if err := env.repositories.Cycles.Create(&cycle); err != nil {
		t.Fatalf("create cycle: %v", err)
	}
	return cycle
}

func (env *testEnv) do(t *testing.T, method string, path string, token string, body any) (int, responseEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: app.Test returned error: %v", method, path, err)
	}
	defer response.Body.Close()

	payload := responseEnvelope{}
	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("%s %s: decode response %q: %v", method, path, string(raw), err)
		}
	}
	return response.StatusCode, payload
}

func decodeData(t *testing.T, payload responseEnvelope, target any) {
	t.Helper()

	if err := json.Unmarshal(payload.Data, target); err != nil {
		t.Fatalf("decode data %s: %v", string(payload.Data), err)
	}
}

// setupSchedule creates a user with a cycle and a schedule through the API.
func (env *testEnv) setupSchedule(t *testing.T, email string, pillType string, start string) (models.User, string) {
	t.Helper()

	user, token := env.createUser(t, email)
	env.createCycle(t, user.ID, start)
	status, payload := env.do(t, http.MethodPost, "/api/pill-tracking/setup", token, map[string]any{
		"pill_type":       pillType,
		"pill_start_date": start,
		"reminder_time":   "08:30",
	})
	if status != http.StatusCreated {
		t.Fatalf("setup %s: expected 201, got %d (%s)", pillType, status, payload.Message)
	}
	return user, token
}

var errDeliveryDown = errors.New("smtp unavailable")

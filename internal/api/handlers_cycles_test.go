package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/terraincognita07/pilltrack/internal/models"
)

func uintString(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func TestCycleEndpoints(t *testing.T) {
	env := newTestEnv(t, "2025-03-10")
	user, token := env.createUser(t, "ana@example.com")

	status, _ := env.do(t, http.MethodGet, "/api/cycles/latest", token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 without cycles, got %d", status)
	}

	status, payload := env.do(t, http.MethodPost, "/api/cycles", token, map[string]any{"cycle_start_date": "2025-03-01"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d %q", status, payload.Message)
	}
	created := cycleView{}
	decodeData(t, payload, &created)
	if created.CycleStartDate != "2025-03-01" || created.CycleLength != models.DefaultCycleLength {
		t.Fatalf("unexpected cycle %#v", created)
	}

	status, payload = env.do(t, http.MethodPost, "/api/cycles", token, map[string]any{"cycle_start_date": "2025-03-29", "cycle_length": 30})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d %q", status, payload.Message)
	}
	second := cycleView{}
	decodeData(t, payload, &second)

	status, payload = env.do(t, http.MethodGet, "/api/cycles/latest", token, nil)
	latest := cycleView{}
	decodeData(t, payload, &latest)
	if status != http.StatusOK || latest.ID != second.ID || latest.CycleLength != 30 {
		t.Fatalf("expected latest cycle %d, got %d %#v", second.ID, status, latest)
	}

	status, payload = env.do(t, http.MethodPost, "/api/pill-tracking/setup", token, map[string]any{
		"pill_type":       "21-day",
		"pill_start_date": "2025-03-29",
		"reminder_time":   "08:30",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected setup on latest cycle, got %d %q", status, payload.Message)
	}

	_, otherToken := env.createUser(t, "bich@example.com")
	status, _ = env.do(t, http.MethodDelete, "/api/cycles/"+uintString(second.ID), otherToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 deleting another user's cycle, got %d", status)
	}

	status, payload = env.do(t, http.MethodDelete, "/api/cycles/"+uintString(second.ID), token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %q", status, payload.Message)
	}
	deleted := deletedView{}
	decodeData(t, payload, &deleted)
	if deleted.Deleted != 21 {
		t.Fatalf("expected 21 pill entries removed with the cycle, got %d", deleted.Deleted)
	}

	remaining, err := env.repositories.PillSchedules.Find(models.PillScheduleFilter{UserID: models.UintPtr(user.ID)}, models.OrderByPillNumberAsc, 0)
	if err != nil || len(remaining) != 0 {
		t.Fatalf("expected no pill entries left, got %d err=%v", len(remaining), err)
	}
}

func TestStartCycleValidation(t *testing.T) {
	env := newTestEnv(t, "2025-03-10")
	_, token := env.createUser(t, "ana@example.com")

	for _, body := range []map[string]any{
		{},
		{"cycle_start_date": "yesterday"},
		{"cycle_start_date": "2025-03-01", "cycle_length": 5},
	} {
		status, payload := env.do(t, http.MethodPost, "/api/cycles", token, body)
		if status != http.StatusBadRequest || payload.Success {
			t.Fatalf("body %v: expected 400, got %d %q", body, status, payload.Message)
		}
	}
}

func TestNewHandlerRequiresDependencies(t *testing.T) {
	if _, err := NewHandler(nil, HandlerOptions{SecretKey: testSecretKey, Dispatcher: &dispatcherStub{}}); err == nil {
		t.Fatal("expected error without database")
	}
}

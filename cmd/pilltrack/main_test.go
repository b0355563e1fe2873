package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/terraincognita07/pilltrack/internal/api"
	"github.com/terraincognita07/pilltrack/internal/config"
	"github.com/terraincognita07/pilltrack/internal/db"
	"github.com/terraincognita07/pilltrack/internal/notify"
)

func TestCommandLineParsing(t *testing.T) {
	tests := []struct {
		args    []string
		command string
	}{
		{args: nil, command: "serve"},
		{args: []string{"user", "--email", "ana@example.com", "--role", "staff"}, command: "user"},
		{args: []string{"token", "--email", "ana@example.com", "--ttl", "2h"}, command: "token"},
	}
	for _, test := range tests {
		commands := commandLine{}
		parser, err := kong.New(&commands, kong.Name("pilltrack"))
		if err != nil {
			t.Fatalf("kong.New returned error: %v", err)
		}
		parsed, err := parser.Parse(test.args)
		if err != nil {
			t.Fatalf("args %v: parse returned error: %v", test.args, err)
		}
		if parsed.Command() != test.command {
			t.Fatalf("args %v: expected command %q, got %q", test.args, test.command, parsed.Command())
		}
		if test.command == "token" && commands.Token.TTL != 2*time.Hour {
			t.Fatalf("expected ttl 2h, got %s", commands.Token.TTL)
		}
		if test.command == "user" && commands.User.Role != "staff" {
			t.Fatalf("expected staff role, got %q", commands.User.Role)
		}
	}
}

func TestCommandLineRejectsUnknownRole(t *testing.T) {
	commands := commandLine{}
	parser, err := kong.New(&commands, kong.Name("pilltrack"))
	if err != nil {
		t.Fatalf("kong.New returned error: %v", err)
	}
	if _, err := parser.Parse([]string{"user", "--email", "ana@example.com", "--role", "admin"}); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
}

func TestNewAppServesHealthAndNotFound(t *testing.T) {
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "pilltrack-main.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := database.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	handler, err := api.NewHandler(database, api.HandlerOptions{
		SecretKey:  "0123456789abcdef0123456789abcdef",
		Location:   time.UTC,
		Dispatcher: notify.NewLogDispatcher(notify.Branding{AppName: "Pilltrack"}),
	})
	if err != nil {
		t.Fatalf("NewHandler returned error: %v", err)
	}
	app := newApp(handler, "Pilltrack")

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	defer response.Body.Close()
	payload := map[string]string{}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if response.StatusCode != http.StatusOK || payload["status"] != "ok" {
		t.Fatalf("unexpected health response %d %v", response.StatusCode, payload)
	}

	missing, err := app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", missing.StatusCode)
	}
}

func TestExecuteLeavesProcessTimezoneAlone(t *testing.T) {
	location, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	before := time.Local

	commands := commandLine{}
	parser, err := kong.New(&commands, kong.Name("pilltrack"), kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}))
	if err != nil {
		t.Fatalf("kong.New returned error: %v", err)
	}
	parsed, err := parser.Parse([]string{"user", "--email", "ana@example.com"})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	cfg := &config.Config{
		Location:  location,
		DBPath:    filepath.Join(t.TempDir(), "pilltrack-execute.db"),
		SecretKey: "0123456789abcdef0123456789abcdef",
	}
	if err := execute(parsed, cfg); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if time.Local != before {
		t.Fatalf("expected time.Local to stay %s, got %s", before, time.Local)
	}
}

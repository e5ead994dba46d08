package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"otrs-connector/internal/otrs"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "otrs.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
device_url: https://otrs.example.com
username: bot
password: secret
service_name: GenericTicketConnector
route_mapping:
  search_ticket: /TicketSearchCustom
max_tickets_per_cycle: 5
server_timezone: Europe/Berlin
search:
  ticket_create_time_minutes: 60
  title_search: "phish, malware"
poll_interval: 2m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxTickets() != 5 || cfg.PollInterval != 2*time.Minute {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.RequestTimeout != 30*time.Second || cfg.Retries() != 3 || cfg.ListenAddr != ":9100" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Location().String() != "Europe/Berlin" {
		t.Fatalf("unexpected location: %s", cfg.Location())
	}

	u, err := otrs.BuildSearchTicketURL(cfg.Connection(), cfg.SearchFilter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://otrs.example.com/otrs/nph-genericinterface.pl/Webservice/GenericTicketConnector/TicketSearchCustom" +
		"?UserLogin=bot&Password=secret&TicketCreateTimeNewerMinutes=60" +
		"&StateTypeIDs=1&StateTypeIDs=2&Title=%25phish%25&Title=%25malware%25"
	if u != want {
		t.Fatalf("unexpected url:\n got %s\nwant %s", u, want)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OTRS_USERNAME", "env-user")
	t.Setenv("OTRS_PASSWORD", "env-pass")
	path := writeConfig(t, `
device_url: https://otrs.example.com
username: file-user
service_name: GenericTicketConnector
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Username != "env-user" || cfg.Password != "env-pass" {
		t.Fatalf("env overrides not applied: %q %q", cfg.Username, cfg.Password)
	}
}

func TestLoadValidation(t *testing.T) {
	path := writeConfig(t, `
max_tickets_per_cycle: -1
server_timezone: Mars/Olympus
`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, part := range []string{"device_url", "service_name", "max_tickets_per_cycle", "server_timezone"} {
		if !strings.Contains(err.Error(), part) {
			t.Fatalf("expected %q in error, got %v", part, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadZeroRetriesDisablesRetry(t *testing.T) {
	path := writeConfig(t, `
device_url: https://otrs.example.com
service_name: GenericTicketConnector
max_retries: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retries() != 0 || cfg.ClientOptions().MaxRetries != 0 {
		t.Fatalf("expected retries disabled, got %d", cfg.Retries())
	}
	if cfg.MaxTickets() != 10 {
		t.Fatalf("expected default max tickets, got %d", cfg.MaxTickets())
	}
}

func TestLoadZeroMaxTicketsRejected(t *testing.T) {
	path := writeConfig(t, `
device_url: https://otrs.example.com
service_name: GenericTicketConnector
max_tickets_per_cycle: 0
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "max_tickets_per_cycle must be positive") {
		t.Fatalf("expected max_tickets_per_cycle error, got %v", err)
	}
}

package config

import (
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":3001" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":3001")
	}
	if cfg.DefaultCurrency != "INR" {
		t.Errorf("DefaultCurrency = %q, want %q", cfg.DefaultCurrency, "INR")
	}
	if cfg.MonitorIntervalSeconds != 30 {
		t.Errorf("MonitorIntervalSeconds = %d, want 30", cfg.MonitorIntervalSeconds)
	}
	if !cfg.EnableMonitoring {
		t.Error("EnableMonitoring = false, want true")
	}
	if cfg.CSVPath != "logs/payments.csv" {
		t.Errorf("CSVPath = %q, want %q", cfg.CSVPath, "logs/payments.csv")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DEFAULT_CURRENCY", "GBP")
	t.Setenv("SHEET_MONITOR_INTERVAL", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.DefaultCurrency != "GBP" {
		t.Errorf("DefaultCurrency = %q, want %q", cfg.DefaultCurrency, "GBP")
	}
	if got := cfg.MonitorInterval().Seconds(); got != 5 {
		t.Errorf("MonitorInterval = %vs, want 5s", got)
	}
}

func TestSheetsConfigured(t *testing.T) {
	cfg := &Config{}
	if cfg.SheetsConfigured() {
		t.Error("SheetsConfigured() = true for empty config")
	}
	cfg.SheetID = "sheet-1"
	if cfg.SheetsConfigured() {
		t.Error("SheetsConfigured() = true without credentials")
	}
	cfg.GoogleCredsJSON = `{"client_email":"x"}`
	if !cfg.SheetsConfigured() {
		t.Error("SheetsConfigured() = false with sheet id and creds JSON")
	}
}

func TestTwilioConfigured(t *testing.T) {
	cfg := &Config{TwilioAccountSID: "AC1", TwilioAuthToken: "tok", TwilioFromNumber: "+1"}
	if cfg.TwilioConfigured() {
		t.Error("TwilioConfigured() = true without a destination number")
	}
	cfg.TwilioToNumber = "+2"
	if !cfg.TwilioConfigured() {
		t.Error("TwilioConfigured() = false with all four values set")
	}
}

func TestKafkaBrokersList(t *testing.T) {
	cfg := &Config{NotifyKafkaBrokers: "localhost:9092, broker2:9092 ,"}
	got := cfg.KafkaBrokersList()
	want := []string{"localhost:9092", "broker2:9092"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KafkaBrokersList() = %v, want %v", got, want)
	}

	empty := &Config{}
	if l := empty.KafkaBrokersList(); l != nil {
		t.Errorf("KafkaBrokersList() on empty config = %v, want nil", l)
	}
}

func TestOrganizationDirectory(t *testing.T) {
	cfg := &Config{OrgDirectory: "ORG_001:Alpha Org, ORG_002:Beta Org,bad-entry,:NoID"}
	got := cfg.OrganizationDirectory()
	want := map[string]string{"ORG_001": "Alpha Org", "ORG_002": "Beta Org"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OrganizationDirectory() = %v, want %v", got, want)
	}

	empty := &Config{OrgDirectory: "garbage"}
	if d := empty.OrganizationDirectory(); d != nil {
		t.Errorf("OrganizationDirectory() with only malformed entries = %v, want nil", d)
	}
}

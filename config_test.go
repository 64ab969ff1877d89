package main

import (
	"errors"
	"testing"

	"lg/diet-tracker-api/nutrition"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// TestLoadConfig_Defaults verifies only DB_URL is required.
func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(envOf(map[string]string{"DB_URL": "postgres://localhost/diet"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("port = %q, want 3000", cfg.Port)
	}
	if cfg.MacroSplit != nutrition.DefaultMacroSplit {
		t.Errorf("split = %+v, want default", cfg.MacroSplit)
	}
	if len(cfg.AllowedOrigins) != 1 {
		t.Errorf("origins = %v, want one default origin", cfg.AllowedOrigins)
	}
}

// TestLoadConfig_MissingDBURL verifies startup fails without a database.
func TestLoadConfig_MissingDBURL(t *testing.T) {
	if _, err := loadConfig(envOf(nil)); err == nil {
		t.Fatal("expected error for missing DB_URL")
	}
}

// TestLoadConfig_Overrides verifies port, origins and a custom macro split.
func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadConfig(envOf(map[string]string{
		"DB_URL":               "postgres://localhost/diet",
		"PORT":                 "8080",
		"CORS_ALLOWED_ORIGINS": "https://a.example, ,https://b.example",
		"MACRO_SPLIT_PROTEIN":  "0.25",
		"MACRO_SPLIT_CARBS":    "0.5",
		"MACRO_SPLIT_FAT":      "0.25",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	want := nutrition.MacroSplit{Protein: 0.25, Carbs: 0.5, Fat: 0.25}
	if cfg.MacroSplit != want {
		t.Errorf("split = %+v, want %+v", cfg.MacroSplit, want)
	}
}

// TestLoadConfig_BadSplit verifies malformed and unbalanced splits are rejected.
func TestLoadConfig_BadSplit(t *testing.T) {
	_, err := loadConfig(envOf(map[string]string{"DB_URL": "x", "MACRO_SPLIT_FAT": "lots"}))
	if err == nil {
		t.Error("expected parse error for MACRO_SPLIT_FAT=lots")
	}

	_, err = loadConfig(envOf(map[string]string{"DB_URL": "x", "MACRO_SPLIT_FAT": "0.5"}))
	if !errors.Is(err, nutrition.ErrValidation) {
		t.Errorf("err = %v, want wrapped ErrValidation", err)
	}
}

/* ─── Mail ────────────────────────────────────────────────────────────── */

// TestLoadConfig_MailDefaults verifies reset links fall back to the first
// CORS origin and SMTP stays off without a host.
func TestLoadConfig_MailDefaults(t *testing.T) {
	cfg, err := loadConfig(envOf(map[string]string{
		"DB_URL":               "postgres://localhost/diet",
		"CORS_ALLOWED_ORIGINS": "https://app.example,https://admin.example",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AppURL != "https://app.example" {
		t.Errorf("app URL = %q, want first origin", cfg.AppURL)
	}
	if cfg.SMTP.Host != "" || cfg.SMTP.Port != 587 {
		t.Errorf("smtp = %+v, want no host and port 587", cfg.SMTP)
	}
	if _, ok := newMailer(cfg).(logMailer); !ok {
		t.Errorf("mailer without SMTP_HOST should log")
	}
}

// TestLoadConfig_SMTP verifies SMTP settings and that From defaults to the username.
func TestLoadConfig_SMTP(t *testing.T) {
	cfg, err := loadConfig(envOf(map[string]string{
		"DB_URL":        "postgres://localhost/diet",
		"APP_URL":       "https://diet.example/",
		"SMTP_HOST":     "smtp.example",
		"SMTP_PORT":     "2525",
		"SMTP_USERNAME": "noreply@diet.example",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AppURL != "https://diet.example" {
		t.Errorf("app URL = %q, want trailing slash trimmed", cfg.AppURL)
	}
	if cfg.SMTP.Port != 2525 || cfg.SMTP.From != "noreply@diet.example" {
		t.Errorf("smtp = %+v", cfg.SMTP)
	}
	if _, ok := newMailer(cfg).(smtpMailer); !ok {
		t.Errorf("mailer with SMTP_HOST should send over SMTP")
	}
}

func TestLoadConfig_BadSMTP(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"port":    {"DB_URL": "x", "SMTP_PORT": "abc"},
		"no from": {"DB_URL": "x", "SMTP_HOST": "smtp.example"},
	} {
		if _, err := loadConfig(envOf(env)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

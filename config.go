package main

import (
	"fmt"
	"strconv"
	"strings"

	"lg/diet-tracker-api/nutrition"
)

// config is read once at startup from the environment (after godotenv has
// loaded .env into it).
type config struct {
	DBURL          string
	Port           string
	AllowedOrigins []string
	MacroSplit     nutrition.MacroSplit
	// AppURL is the user front-end; password reset links point at it.
	AppURL string
	SMTP   smtpConfig
}

// smtpConfig is optional; with no Host, mail is logged instead of sent.
type smtpConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// loadConfig builds the server config from getenv. Passing the lookup in
// keeps it testable without touching the process environment.
func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		DBURL:          getenv("DB_URL"),
		Port:           getenv("PORT"),
		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS")),
		MacroSplit:     nutrition.DefaultMacroSplit,
	}
	if cfg.DBURL == "" {
		return cfg, fmt.Errorf("DB_URL is required")
	}
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}

	shares := []struct {
		key string
		dst *float64
	}{
		{"MACRO_SPLIT_PROTEIN", &cfg.MacroSplit.Protein},
		{"MACRO_SPLIT_CARBS", &cfg.MacroSplit.Carbs},
		{"MACRO_SPLIT_FAT", &cfg.MacroSplit.Fat},
	}
	for _, s := range shares {
		raw := strings.TrimSpace(getenv(s.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", s.key, err)
		}
		*s.dst = v
	}
	if err := cfg.MacroSplit.Validate(); err != nil {
		return cfg, fmt.Errorf("MACRO_SPLIT_*: %w", err)
	}

	cfg.AppURL = strings.TrimRight(strings.TrimSpace(getenv("APP_URL")), "/")
	if cfg.AppURL == "" {
		cfg.AppURL = cfg.AllowedOrigins[0]
	}

	cfg.SMTP = smtpConfig{
		Host:     strings.TrimSpace(getenv("SMTP_HOST")),
		Port:     587,
		Username: getenv("SMTP_USERNAME"),
		Password: getenv("SMTP_PASSWORD"),
		From:     getenv("SMTP_FROM"),
	}
	if raw := strings.TrimSpace(getenv("SMTP_PORT")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 {
			return cfg, fmt.Errorf("SMTP_PORT: invalid port %q", raw)
		}
		cfg.SMTP.Port = port
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	if cfg.SMTP.Host != "" && cfg.SMTP.From == "" {
		return cfg, fmt.Errorf("SMTP_FROM or SMTP_USERNAME is required when SMTP_HOST is set")
	}
	return cfg, nil
}

// splitList splits a comma-separated env value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

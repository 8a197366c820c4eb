// Package config loads and validates the process-wide configuration for
// the notification worker. All values come from environment variables,
// loaded once at start.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	pkgconfig "helpdesk-notify/pkg/config"
)

// Helpdesk holds the upstream ticketing API settings.
type Helpdesk struct {
	// BaseURL is the upstream API prefix, e.g. "https://helpdesk.example.com/api".
	BaseURL string

	// APIVersion is sent as the X-API-Version header on every request.
	APIVersion string

	// EncodedCredentials is the pre-computed base64 Basic credential.
	EncodedCredentials string

	// WebBase is the URL prefix used only to build "open in browser"
	// buttons, e.g. "https://helpdesk.example.com/task".
	WebBase string

	// CommentsPath is the deployment-specific dedicated comments
	// endpoint, as a printf pattern over the ticket id.
	CommentsPath string

	// LifetimePath is the deployment-specific lifetime-events endpoint.
	LifetimePath string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// Config is the process-wide configuration: the chat transport, the
// upstream API, and the state directory. The background loop loads its
// own settings via worker.LoadConfigFromEnv.
type Config struct {
	TelegramToken string
	Helpdesk      Helpdesk
	DataDir       string
}

// Load reads the configuration from the environment and validates it.
//
// Environment variables:
//   - TELEGRAM_BOT_TOKEN (required)
//   - HELPDESK_BASE_URL (required)
//   - HELPDESK_API_VERSION (default "5.42")
//   - HELPDESK_ENCODED_CREDENTIALS, or HELPDESK_USER + HELPDESK_PASS
//   - HELPDESK_WEB_BASE
//   - HELPDESK_COMMENTS_PATH (default "/task/%d/comment")
//   - HELPDESK_LIFETIME_PATH (default "/tasklifetime")
//   - HTTP_TIMEOUT (default 15s)
//   - DATA_DIR (default "./data")
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		Helpdesk: Helpdesk{
			BaseURL:            os.Getenv("HELPDESK_BASE_URL"),
			APIVersion:         pkgconfig.GetEnvString("HELPDESK_API_VERSION", "5.42"),
			EncodedCredentials: os.Getenv("HELPDESK_ENCODED_CREDENTIALS"),
			WebBase:            os.Getenv("HELPDESK_WEB_BASE"),
			CommentsPath:       pkgconfig.GetEnvString("HELPDESK_COMMENTS_PATH", "/task/%d/comment"),
			LifetimePath:       pkgconfig.GetEnvString("HELPDESK_LIFETIME_PATH", "/tasklifetime"),
			Timeout:            pkgconfig.GetEnvDuration("HTTP_TIMEOUT", 15*time.Second),
		},
		DataDir: pkgconfig.GetEnvString("DATA_DIR", "./data"),
	}

	// A pre-encoded credential wins; otherwise encode user:pass.
	if cfg.Helpdesk.EncodedCredentials == "" {
		user := os.Getenv("HELPDESK_USER")
		pass := os.Getenv("HELPDESK_PASS")
		if user != "" && pass != "" {
			cfg.Helpdesk.EncodedCredentials = base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present and well-formed.
func (c *Config) Validate() error {
	var errs []error

	if c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is not set"))
	}
	if c.Helpdesk.BaseURL == "" {
		errs = append(errs, errors.New("HELPDESK_BASE_URL is not set"))
	} else if u, err := url.Parse(c.Helpdesk.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("HELPDESK_BASE_URL is not a valid URL: %q", c.Helpdesk.BaseURL))
	}
	if c.Helpdesk.EncodedCredentials == "" {
		errs = append(errs, errors.New("helpdesk credentials are not set (HELPDESK_ENCODED_CREDENTIALS or HELPDESK_USER/HELPDESK_PASS)"))
	}
	// The comments path is a printf pattern carrying the ticket id.
	if !strings.Contains(c.Helpdesk.CommentsPath, "%d") {
		errs = append(errs, fmt.Errorf("HELPDESK_COMMENTS_PATH must contain a %%d ticket-id verb: %q", c.Helpdesk.CommentsPath))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"zoneboard/internal/zone"
)

// Config holds everything the service reads from the environment.
// Secrets (Strava and GitHub credentials) are env-only; scoring
// constants have competition defaults.
type Config struct {
	DBPath     string
	ListenAddr string

	StravaClientID     string
	StravaClientSecret string
	VerifyToken        string

	GitHubToken          string
	GitHubRepoOwner      string
	GitHubRepoName       string
	GitHubFilePath       string
	GitHubCommitterName  string
	GitHubCommitterEmail string

	Timezone        string
	SeasonStartWeek int
	PTOBudget       float64
	DailyCap        float64
	WeeklyCap       float64
	MinHRPolicy     zone.MinHRPolicy

	BackfillWindow   time.Duration
	BackfillSchedule string
	OutputPath       string
}

// Load reads configuration from the environment, applying defaults for
// everything but secrets.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:     envOr("ZONEBOARD_DB_PATH", "data/zoneboard.db"),
		ListenAddr: envOr("ZONEBOARD_LISTEN_ADDR", ":8080"),

		StravaClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		VerifyToken:        os.Getenv("STRAVA_VERIFY_TOKEN"),

		GitHubToken:          os.Getenv("GITHUB_TOKEN"),
		GitHubRepoOwner:      os.Getenv("GITHUB_REPO_OWNER"),
		GitHubRepoName:       os.Getenv("GITHUB_REPO_NAME"),
		GitHubFilePath:       envOr("GITHUB_FILE_PATH", "scores.json"),
		GitHubCommitterName:  os.Getenv("GITHUB_COMMITTER_NAME"),
		GitHubCommitterEmail: os.Getenv("GITHUB_COMMITTER_EMAIL"),

		Timezone:         envOr("ZONEBOARD_TIMEZONE", "America/Denver"),
		MinHRPolicy:      zone.MinHRPolicy(envOr("ZONEBOARD_MIN_HR_POLICY", string(zone.MinHRHalfMax))),
		BackfillSchedule: envOr("ZONEBOARD_BACKFILL_SCHEDULE", "0 3 * * *"),
		OutputPath:       envOr("ZONEBOARD_OUTPUT_PATH", "scores.json"),
	}

	var err error
	if cfg.SeasonStartWeek, err = envIntOr("ZONEBOARD_SEASON_START_WEEK", 44); err != nil {
		return nil, err
	}
	if cfg.PTOBudget, err = envFloatOr("ZONEBOARD_PTO_BUDGET", 600); err != nil {
		return nil, err
	}
	if cfg.DailyCap, err = envFloatOr("ZONEBOARD_DAILY_CAP", 50); err != nil {
		return nil, err
	}
	if cfg.WeeklyCap, err = envFloatOr("ZONEBOARD_WEEKLY_CAP", 150); err != nil {
		return nil, err
	}

	hours, err := envIntOr("ZONEBOARD_BACKFILL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.BackfillWindow = time.Duration(hours) * time.Hour

	return cfg, nil
}

// Validate checks the invariants every command relies on. Credential
// checks are left to the commands that need them, since a local rebuild
// against the file sink works without any.
func (c *Config) Validate() error {
	if !c.MinHRPolicy.Valid() {
		return fmt.Errorf("ZONEBOARD_MIN_HR_POLICY must be %q or %q, got %q",
			zone.MinHRHalfMax, zone.MinHRReserve, c.MinHRPolicy)
	}
	if c.SeasonStartWeek < 1 || c.SeasonStartWeek > 53 {
		return fmt.Errorf("ZONEBOARD_SEASON_START_WEEK must be 1..53, got %d", c.SeasonStartWeek)
	}
	if c.DailyCap <= 0 || c.WeeklyCap <= 0 {
		return errors.New("daily and weekly caps must be positive")
	}
	if c.PTOBudget < 0 {
		return errors.New("ZONEBOARD_PTO_BUDGET must not be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("ZONEBOARD_TIMEZONE: %w", err)
	}
	return nil
}

// RequireStrava checks that the Strava API credentials are present.
func (c *Config) RequireStrava() error {
	if c.StravaClientID == "" || c.StravaClientSecret == "" {
		return errors.New("STRAVA_CLIENT_ID and STRAVA_CLIENT_SECRET are required")
	}
	return nil
}

// RequireGitHub checks that the GitHub publish credentials are present.
func (c *Config) RequireGitHub() error {
	if c.GitHubToken == "" || c.GitHubRepoOwner == "" || c.GitHubRepoName == "" {
		return errors.New("GITHUB_TOKEN, GITHUB_REPO_OWNER and GITHUB_REPO_NAME are required")
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func envFloatOr(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return f, nil
}

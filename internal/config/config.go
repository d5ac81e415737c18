package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the call-screening process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Screening ScreeningConfig
	Voicemail VoicemailConfig
	Gateway   GatewayConfig
}

// GatewayConfig points at the telephone gateway (ATA or SIP box) whose HTTP
// control API drives the line.
type GatewayConfig struct {
	// BaseURL of the gateway control API, e.g. http://192.168.1.20:8084.
	BaseURL string
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// ScreeningConfig tunes the decision engine heuristics.
//
// Registry rules (whitelist/blacklist) always apply; the settings below only
// affect the third classification stage.
type ScreeningConfig struct {
	// RobocallPrefixes lists canonical number prefixes treated as auto-dialers.
	RobocallPrefixes []string

	// CallerNamePattern is a regexp matched against the caller-ID display name.
	CallerNamePattern string

	// RateWindow/RateThreshold flag numbers calling more than RateThreshold
	// times inside RateWindow.
	RateWindow    time.Duration
	RateThreshold int
}

// VoicemailConfig controls message recording and the greeting played per
// classification before the attendant acts.
type VoicemailConfig struct {
	// MessageFolder is where recorded .wav payloads live.
	MessageFolder string

	// RingsBeforeAnswer per classification; the attendant lets the phone ring
	// this many times before going off-hook.
	PermittedRings int
	FilteredRings  int
	BlockedRings   int

	PermittedGreeting string
	FilteredGreeting  string
	BlockedGreeting   string

	// RecordFiltered/RecordBlocked decide whether a message is recorded for
	// that class. Permitted calls never record; the caller reaches the line.
	RecordFiltered bool
	RecordBlocked  bool
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	// Duration env vars are optional; defaults applied in Validate().
	c.Auth.AccessTokenTTL = optDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = optDuration("JWT_REFRESH_TTL")

	c.Screening.RobocallPrefixes = splitList(os.Getenv("SCREEN_ROBOCALL_PREFIXES"))
	c.Screening.CallerNamePattern = strings.TrimSpace(os.Getenv("SCREEN_CALLER_NAME_PATTERN"))
	c.Screening.RateWindow = optDuration("SCREEN_RATE_WINDOW")
	c.Screening.RateThreshold = optInt("SCREEN_RATE_THRESHOLD")

	c.Voicemail.MessageFolder = strings.TrimSpace(os.Getenv("VOICEMAIL_FOLDER"))
	c.Voicemail.PermittedRings = optInt("VOICEMAIL_PERMITTED_RINGS")
	c.Voicemail.FilteredRings = optInt("VOICEMAIL_FILTERED_RINGS")
	c.Voicemail.BlockedRings = optInt("VOICEMAIL_BLOCKED_RINGS")
	c.Voicemail.PermittedGreeting = strings.TrimSpace(os.Getenv("VOICEMAIL_PERMITTED_GREETING"))
	c.Voicemail.FilteredGreeting = strings.TrimSpace(os.Getenv("VOICEMAIL_FILTERED_GREETING"))
	c.Voicemail.BlockedGreeting = strings.TrimSpace(os.Getenv("VOICEMAIL_BLOCKED_GREETING"))
	c.Voicemail.RecordFiltered = optBool("VOICEMAIL_RECORD_FILTERED", true)
	c.Voicemail.RecordBlocked = optBool("VOICEMAIL_RECORD_BLOCKED", false)

	c.Gateway.BaseURL = strings.TrimSpace(os.Getenv("GATEWAY_BASE_URL"))

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	if c.Screening.RateWindow <= 0 {
		c.Screening.RateWindow = 5 * time.Minute
	}
	if c.Screening.RateThreshold <= 0 {
		c.Screening.RateThreshold = 10
	}

	if c.Voicemail.MessageFolder == "" {
		errs = append(errs, errors.New("VOICEMAIL_FOLDER is required"))
	}
	if c.Voicemail.PermittedRings <= 0 {
		c.Voicemail.PermittedRings = 6
	}
	if c.Voicemail.FilteredRings <= 0 {
		c.Voicemail.FilteredRings = 4
	}
	if c.Voicemail.BlockedRings <= 0 {
		c.Voicemail.BlockedRings = 1
	}

	if c.Gateway.BaseURL == "" {
		errs = append(errs, errors.New("GATEWAY_BASE_URL is required"))
	} else if !strings.HasPrefix(c.Gateway.BaseURL, "http://") && !strings.HasPrefix(c.Gateway.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("GATEWAY_BASE_URL must be an http(s) URL, got %q", c.Gateway.BaseURL))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func optBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func optDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}

package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"preplycal/internal/fsutil"
)

// NOTE: The YAML file carries everything except the session token, which
// only ever comes from the environment (PREPLY_SESSIONID).

const (
	DefaultEndpoint     = "https://preply.com/graphql/v2/TutorCalendarEvents"
	DefaultPayload      = "payload.json"
	DefaultOutput       = "preply.ics"
	DefaultTimezone     = "America/Lima"
	DefaultCalendarName = "Preply Lessons"
	DefaultProductID    = "-//Preply Export//EN"
	DefaultHorizonDays  = 60
	DefaultWindowDays   = 31
	DefaultEventSuffix  = "Preply"
	DefaultUIDDomain    = "preply"
	DefaultPreviewLines = 30
	DefaultLogLevel     = "info"

	// EnvPrefix namespaces environment overrides, e.g. PREPLY_SESSIONID.
	EnvPrefix = "PREPLY"
)

// ErrMissingSession is returned when no session token is available.
var ErrMissingSession = errors.New("PREPLY_SESSIONID not set")

// Config is the top-level application configuration.
type Config struct {
	// Endpoint is the calendar GraphQL endpoint.
	Endpoint string `yaml:"endpoint"`

	// Payload is the path to the base query JSON document.
	Payload string `yaml:"payload"`

	// Output is the ICS file written at the end of the run.
	Output string `yaml:"output"`

	// Timezone is the IANA zone written as X-WR-TIMEZONE and used for
	// the local-time column of the per-event log line. Event times stay UTC.
	Timezone string `yaml:"timezone"`

	// CalendarName is written as X-WR-CALNAME.
	CalendarName string `yaml:"calendar_name"`

	ProductID string `yaml:"product_id"`

	// HorizonDays is how many days past today are exported.
	HorizonDays int `yaml:"horizon_days"`

	// WindowDays is the maximum span of a single API query.
	WindowDays int `yaml:"window_days"`

	// EventSuffix is appended to every event summary.
	EventSuffix string `yaml:"event_suffix"`

	// UIDDomain is appended to every hashed uid after '@'.
	UIDDomain string `yaml:"uid_domain"`

	// PreviewLines is how many ICS lines are echoed before writing; 0 disables.
	PreviewLines int `yaml:"preview_lines"`

	// HTTPTimeoutSeconds bounds each request; 0 keeps the client default.
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds"`

	LogLevel string `yaml:"log_level"`

	// SessionID is never persisted.
	SessionID string `yaml:"-"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:     DefaultEndpoint,
		Payload:      DefaultPayload,
		Output:       DefaultOutput,
		Timezone:     DefaultTimezone,
		CalendarName: DefaultCalendarName,
		ProductID:    DefaultProductID,
		HorizonDays:  DefaultHorizonDays,
		WindowDays:   DefaultWindowDays,
		EventSuffix:  DefaultEventSuffix,
		UIDDomain:    DefaultUIDDomain,
		PreviewLines: DefaultPreviewLines,
		LogLevel:     DefaultLogLevel,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Payload == "" {
		c.Payload = DefaultPayload
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.CalendarName == "" {
		c.CalendarName = DefaultCalendarName
	}
	if c.ProductID == "" {
		c.ProductID = DefaultProductID
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = DefaultHorizonDays
	}
	if c.WindowDays <= 0 {
		c.WindowDays = DefaultWindowDays
	}
	if c.EventSuffix == "" {
		c.EventSuffix = DefaultEventSuffix
	}
	if c.UIDDomain == "" {
		c.UIDDomain = DefaultUIDDomain
	}
	if c.PreviewLines < 0 {
		c.PreviewLines = 0
	}
	if c.HTTPTimeoutSeconds < 0 {
		c.HTTPTimeoutSeconds = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - If the file exists, it is unmarshalled and normalized.
//
// Environment overrides are not applied here; see ApplyEnv.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// SessionFromEnv returns the trimmed PREPLY_SESSIONID value, or
// ErrMissingSession if it is unset or blank. It reads nothing from disk,
// so callers can fail before Load creates a first-run config file.
func SessionFromEnv() (string, error) {
	return sessionFrom(newEnv())
}

// ApplyEnv overlays PREPLY_* environment variables onto c and fails if
// no session token is present.
//
//	PREPLY_SESSIONID  session cookie value (required)
//	PREPLY_ENDPOINT   overrides endpoint
//	PREPLY_OUTPUT     overrides output
//	PREPLY_TIMEZONE   overrides timezone
func (c *Config) ApplyEnv() error {
	v := newEnv()

	if s := v.GetString("endpoint"); s != "" {
		c.Endpoint = s
	}
	if s := v.GetString("output"); s != "" {
		c.Output = s
	}
	if s := v.GetString("timezone"); s != "" {
		c.Timezone = s
	}

	session, err := sessionFrom(v)
	if err != nil {
		return err
	}
	c.SessionID = session
	return nil
}

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func sessionFrom(v *viper.Viper) (string, error) {
	s := strings.TrimSpace(v.GetString("sessionid"))
	if s == "" {
		return "", ErrMissingSession
	}
	return s, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, data, 0o600)
}

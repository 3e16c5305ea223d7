package server

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"
	_ "time/tzdata"

	"github.com/opst/taskboard/pkg/ai"
	"github.com/opst/taskboard/pkg/auth/session"
	"github.com/opst/taskboard/pkg/loop/recurring"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort     = 8080
	DefaultTimezone = "America/Sao_Paulo"
	DefaultSchedule = "daily:08:00"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config of taskboard servers.
//
// This is readonly. Create it with Load or ConfigMarshall.Seal.
type Config struct {
	port         int
	dburi        string
	schema       string
	location     *time.Location
	session      session.Config
	notification *NotificationConfig
	gemini       *GeminiConfig
	google       *GoogleConfig
}

func (c *Config) Port() int {
	return c.port
}

// DBURI is the connection string of postgres.
func (c *Config) DBURI() string {
	return c.dburi
}

// Schema is the directory of schema repository. It can be empty.
func (c *Config) Schema() string {
	return c.schema
}

// Location is the timezone where "today" and calendar dates are decided.
func (c *Config) Location() *time.Location {
	return c.location
}

func (c *Config) Session() session.Config {
	return c.session
}

func (c *Config) Notification() *NotificationConfig {
	return c.notification
}

func (c *Config) Gemini() *GeminiConfig {
	return c.gemini
}

func (c *Config) Google() *GoogleConfig {
	return c.google
}

type NotificationConfig struct {
	schedule   recurring.Policy
	cronSecret string
}

// Schedule of the overdue notification loop.
func (n *NotificationConfig) Schedule() recurring.Policy {
	return n.schedule
}

// CronSecret is a bearer token required by the cron endpoint.
//
// Empty means the endpoint is open.
func (n *NotificationConfig) CronSecret() string {
	return n.cronSecret
}

type GeminiConfig struct {
	apiKey string
	model  string
}

// ApiKey for Gemini. Empty means AI extraction is disabled.
func (g *GeminiConfig) ApiKey() string {
	return g.apiKey
}

func (g *GeminiConfig) Model() string {
	return g.model
}

type GoogleConfig struct {
	clientId     string
	clientSecret string
	redirectUri  string
}

func (g *GoogleConfig) ClientId() string {
	return g.clientId
}

func (g *GoogleConfig) ClientSecret() string {
	return g.clientSecret
}

func (g *GoogleConfig) RedirectUri() string {
	return g.redirectUri
}

// Enabled tells calendar integration is configured.
func (g *GoogleConfig) Enabled() bool {
	return g.clientId != "" && g.clientSecret != "" && g.redirectUri != ""
}

// ConfigMarshall is a mutable counterpart of Config, as written in yaml.
type ConfigMarshall struct {
	Port         int                         `yaml:"port,omitempty"`
	DBURI        string                      `yaml:"dburi"`
	Schema       string                      `yaml:"schema,omitempty"`
	Timezone     string                      `yaml:"timezone,omitempty"`
	Session      *SessionConfigMarshall      `yaml:"session,omitempty"`
	Notification *NotificationConfigMarshall `yaml:"notification,omitempty"`
	Gemini       *GeminiConfigMarshall       `yaml:"gemini,omitempty"`
	Google       *GoogleConfigMarshall       `yaml:"google,omitempty"`
}

type SessionConfigMarshall struct {
	Cookie string `yaml:"cookie,omitempty"`
	TTL    string `yaml:"ttl,omitempty"`
	Secure bool   `yaml:"secure,omitempty"`
}

type NotificationConfigMarshall struct {
	Schedule   string `yaml:"schedule,omitempty"`
	CronSecret string `yaml:"cronSecret,omitempty"`
}

type GeminiConfigMarshall struct {
	ApiKey string `yaml:"apiKey,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

type GoogleConfigMarshall struct {
	ClientId     string `yaml:"clientId,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	RedirectUri  string `yaml:"redirectUri,omitempty"`
}

// Seal verifies configuration and creates the readonly Config.
//
// Omitted items get their default.
func (cm *ConfigMarshall) Seal() (*Config, error) {
	return cm.seal("(root)")
}

func required(path string, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, path)
	}
	return nil
}

func (cm *ConfigMarshall) seal(path string) (*Config, error) {
	if err := required(path+".dburi", cm.DBURI); err != nil {
		return nil, err
	}

	port := cm.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || 65535 < port {
		return nil, fmt.Errorf("%w: %s.port is out of range: %d", ErrInvalidConfig, path, port)
	}

	tz := cm.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.timezone: %w", ErrInvalidConfig, path, err)
	}

	sess, err := cm.Session.seal(path + ".session")
	if err != nil {
		return nil, err
	}
	notif, err := cm.Notification.seal(path+".notification", loc)
	if err != nil {
		return nil, err
	}

	return &Config{
		port:         port,
		dburi:        cm.DBURI,
		schema:       cm.Schema,
		location:     loc,
		session:      sess,
		notification: notif,
		gemini:       cm.Gemini.seal(),
		google:       cm.Google.seal(),
	}, nil
}

func (sm *SessionConfigMarshall) seal(path string) (session.Config, error) {
	conf := session.Config{Cookie: session.DefaultCookieName, TTL: session.DefaultTTL}
	if sm == nil {
		return conf, nil
	}
	if sm.Cookie != "" {
		conf.Cookie = sm.Cookie
	}
	if sm.TTL != "" {
		ttl, err := time.ParseDuration(sm.TTL)
		if err != nil {
			return conf, fmt.Errorf("%w: %s.ttl: %w", ErrInvalidConfig, path, err)
		}
		if ttl <= 0 {
			return conf, fmt.Errorf("%w: %s.ttl should be positive: %s", ErrInvalidConfig, path, sm.TTL)
		}
		conf.TTL = ttl
	}
	conf.Secure = sm.Secure
	return conf, nil
}

func (nm *NotificationConfigMarshall) seal(path string, loc *time.Location) (*NotificationConfig, error) {
	schedule, secret := DefaultSchedule, ""
	if nm != nil {
		if nm.Schedule != "" {
			schedule = nm.Schedule
		}
		secret = nm.CronSecret
	}

	policy, err := recurring.ParsePolicy(schedule, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.schedule: %w", ErrInvalidConfig, path, err)
	}
	return &NotificationConfig{schedule: policy, cronSecret: secret}, nil
}

func (gm *GeminiConfigMarshall) seal() *GeminiConfig {
	if gm == nil {
		return &GeminiConfig{model: ai.DefaultModel}
	}
	model := gm.Model
	if model == "" {
		model = ai.DefaultModel
	}
	return &GeminiConfig{apiKey: gm.ApiKey, model: model}
}

func (gm *GoogleConfigMarshall) seal() *GoogleConfig {
	if gm == nil {
		return &GoogleConfig{}
	}
	return &GoogleConfig{
		clientId:     gm.ClientId,
		clientSecret: gm.ClientSecret,
		redirectUri:  gm.RedirectUri,
	}
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnv replaces ${NAME} with the environment variable NAME.
//
// Unset variables become empty. Bare $NAME is left as is.
func ExpandEnv(content []byte, lookup func(string) (string, bool)) []byte {
	return envRef.ReplaceAllFunc(content, func(ref []byte) []byte {
		name := envRef.FindSubmatch(ref)[1]
		v, _ := lookup(string(name))
		return []byte(v)
	})
}

// Load reads a config file, expanding environment variables.
func Load(file string) (*Config, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	cm := ConfigMarshall{}
	if err := yaml.Unmarshal(ExpandEnv(content, os.LookupEnv), &cm); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, file, err)
	}
	return cm.Seal()
}

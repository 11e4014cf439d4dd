package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	StoreParse    = "parse"
	StorePostgres = "postgres"
)

// ConfigPathEnv names the YAML file read when no --config flag is given.
const ConfigPathEnv = "DREAMTEAMS_CONFIG"

type Config struct {
	Marvel MarvelConfig `yaml:"marvel"`
	Parse  ParseConfig  `yaml:"parse"`
	Store  StoreConfig  `yaml:"store"`
	Events EventsConfig `yaml:"events"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type MarvelConfig struct {
	PublicKey  string        `yaml:"public_key"`
	PrivateKey string        `yaml:"private_key"`
	BaseURL    string        `yaml:"base_url"`
	PageSize   int           `yaml:"page_size"`
	Timeout    time.Duration `yaml:"timeout"`
}

type ParseConfig struct {
	ServerURL     string `yaml:"server_url"`
	ApplicationID string `yaml:"application_id"`
	RESTAPIKey    string `yaml:"rest_api_key"`
}

type StoreConfig struct {
	Backend  string         `yaml:"backend"`
	Database DatabaseConfig `yaml:"database"`
}

type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"`
	Stream        string `yaml:"stream"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	PingInterval   time.Duration `yaml:"ping_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Marvel: MarvelConfig{
			BaseURL:  "https://gateway.marvel.com/v1/public",
			PageSize: 20,
			Timeout:  30 * time.Second,
		},
		Parse: ParseConfig{
			ServerURL: "https://parseapi.back4app.com",
		},
		Store: StoreConfig{
			Backend:  StoreParse,
			Database: DefaultDatabaseConfig(),
		},
		Events: EventsConfig{
			Stream:        "ROSTER_EVENTS",
			SubjectPrefix: "roster.events",
		},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
			PingInterval:   30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables that are already set. A missing file is only a warning.
func LoadEnvFiles(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and environment overrides. Callers validate what their command needs.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error

	setString(&c.Marvel.PublicKey, "MARVEL_PUBLIC_KEY")
	setString(&c.Marvel.PrivateKey, "MARVEL_PRIVATE_KEY")
	setString(&c.Marvel.BaseURL, "MARVEL_BASE_URL")
	errs = append(errs, setInt(&c.Marvel.PageSize, "CATALOG_PAGE_SIZE"))

	setString(&c.Parse.ServerURL, "PARSE_SERVER_URL")
	setString(&c.Parse.ApplicationID, "PARSE_APP_ID")
	setString(&c.Parse.RESTAPIKey, "PARSE_REST_KEY")

	setString(&c.Store.Backend, "TEAM_STORE")
	errs = append(errs, c.Store.Database.applyEnv())

	setString(&c.Events.NATSURL, "NATS_URL")

	errs = append(errs, setInt(&c.Server.Port, "PORT"))
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	setString(&c.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOG_PRETTY: %w", err))
		} else {
			c.Log.Pretty = pretty
		}
	}

	return errors.Join(errs...)
}

// Validate checks everything the server needs.
func (c *Config) Validate() error {
	errs := c.catalogErrors()

	if c.Parse.ServerURL == "" || c.Parse.ApplicationID == "" || c.Parse.RESTAPIKey == "" {
		errs = append(errs, errors.New("parse server url, application id and rest key are required"))
	}

	switch c.Store.Backend {
	case StoreParse:
	case StorePostgres:
		if c.Store.Database.Host == "" || c.Store.Database.Database == "" {
			errs = append(errs, errors.New("postgres store needs a host and database name"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown team store %q", c.Store.Backend))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Server.Port))
	}

	return joinInvalid(errs)
}

// ValidateCatalog checks only what catalog lookups need.
func (c *Config) ValidateCatalog() error {
	return joinInvalid(c.catalogErrors())
}

func (c *Config) catalogErrors() []error {
	var errs []error
	if c.Marvel.PublicKey == "" || c.Marvel.PrivateKey == "" {
		errs = append(errs, errors.New("marvel public and private keys are required"))
	}
	if c.Marvel.PageSize < 1 || c.Marvel.PageSize > 100 {
		errs = append(errs, fmt.Errorf("catalog page size must be between 1 and 100, got %d", c.Marvel.PageSize))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %w", err))
	}
	return errs
}

func joinInvalid(errs []error) error {
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the listen address for the gateway.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

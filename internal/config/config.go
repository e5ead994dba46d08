package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"otrs-connector/internal/otrs"
)

// DefaultPath is where the connector looks for its configuration file.
const DefaultPath = "config/otrs.yaml"

type Config struct {
	DeviceURL          string            `yaml:"device_url"`
	Username           string            `yaml:"username"`
	Password           string            `yaml:"password"`
	ServiceName        string            `yaml:"service_name"`
	RouteMapping       map[string]string `yaml:"route_mapping"`
	MaxTicketsPerCycle *int              `yaml:"max_tickets_per_cycle"`
	ServerTimezone     string            `yaml:"server_timezone"`
	Search             struct {
		TicketCreateTimeMinutes int    `yaml:"ticket_create_time_minutes"`
		TitleSearch             string `yaml:"title_search"`
	} `yaml:"search"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxRetries         *int          `yaml:"max_retries"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	ListenAddr         string        `yaml:"listen_addr"`
	LogLevel           string        `yaml:"log_level"`
}

// Load reads the YAML file at path, applies .env and environment overrides,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"OTRS_DEVICE_URL":   &c.DeviceURL,
		"OTRS_USERNAME":     &c.Username,
		"OTRS_PASSWORD":     &c.Password,
		"OTRS_SERVICE_NAME": &c.ServiceName,
		"LOG_LEVEL":         &c.LogLevel,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.MaxTicketsPerCycle == nil {
		c.MaxTicketsPerCycle = intPtr(10)
	}
	if c.ServerTimezone == "" {
		c.ServerTimezone = "UTC"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Minute
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxRetries == nil {
		c.MaxRetries = intPtr(3)
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":9100"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DeviceURL) == "" {
		errs = append(errs, errors.New("device_url is required"))
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		errs = append(errs, errors.New("service_name is required"))
	}
	if c.MaxTicketsPerCycle != nil && *c.MaxTicketsPerCycle <= 0 {
		errs = append(errs, fmt.Errorf("max_tickets_per_cycle must be positive, got %d", *c.MaxTicketsPerCycle))
	}
	if c.MaxRetries != nil && *c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries must not be negative, got %d", *c.MaxRetries))
	}
	if _, err := time.LoadLocation(c.ServerTimezone); err != nil {
		errs = append(errs, fmt.Errorf("server_timezone: %w", err))
	}
	for op := range c.RouteMapping {
		if strings.Trim(c.RouteMapping[op], "/ ") == "" {
			errs = append(errs, fmt.Errorf("route_mapping.%s must not be empty", op))
		}
	}
	return errors.Join(errs...)
}

// MaxTickets is the number of tickets fetched per polling cycle.
func (c *Config) MaxTickets() int {
	if c.MaxTicketsPerCycle == nil {
		return 10
	}
	return *c.MaxTicketsPerCycle
}

// Retries is the number of retries after a failed request. Zero disables
// retrying.
func (c *Config) Retries() int {
	if c.MaxRetries == nil {
		return 3
	}
	return *c.MaxRetries
}

// Location returns the server timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ServerTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Connection builds the immutable OTRS connection settings.
func (c *Config) Connection() otrs.ConnectionConfig {
	overrides := make(map[otrs.Operation]string, len(c.RouteMapping))
	for op, seg := range c.RouteMapping {
		overrides[otrs.Operation(op)] = seg
	}
	return otrs.ConnectionConfig{
		DeviceURL:   c.DeviceURL,
		ServiceName: c.ServiceName,
		Username:    c.Username,
		Password:    c.Password,
		Routes:      otrs.NewDefaultRouteMapping(overrides),
	}
}

func (c *Config) SearchFilter() otrs.SearchFilter {
	return otrs.SearchFilter{
		CreateTimeNewerMinutes: c.Search.TicketCreateTimeMinutes,
		TitleSearch:            c.Search.TitleSearch,
	}
}

func (c *Config) ClientOptions() otrs.ClientOptions {
	return otrs.ClientOptions{
		Timeout:            c.RequestTimeout,
		MaxRetries:         c.Retries(),
		Location:           c.Location(),
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
}

func intPtr(n int) *int { return &n }

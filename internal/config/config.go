package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Server aggregates the diagnostic server configuration.
// Precedence: CLI flags > YAML file > Environment variables > Defaults
type Server struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// serverFile mirrors the optional YAML file. Pointer fields stay nil when the
// key is absent.
type serverFile struct {
	Port                 string `yaml:"port"`
	ShutdownGracePeriod  string `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string `yaml:"read_header_timeout"`
	WriteTimeout         string `yaml:"write_timeout"`
	IdleTimeout          string `yaml:"idle_timeout"`
	EnableRequestLogging *bool  `yaml:"enable_request_logging"`
	RateLimit            struct {
		RPS   *float64 `yaml:"rps"`
		Burst *int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// ServerOverrides holds command-line flag overrides.
type ServerOverrides struct {
	ConfigFile     string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// LoadServer resolves the server configuration from env, the optional YAML
// file named by overrides and the flag values themselves.
func LoadServer(overrides *ServerOverrides, env map[string]string) (Server, error) {
	cfg := defaultServer()

	applyEnvConfig(&cfg, env)

	if overrides != nil && overrides.ConfigFile != "" {
		file, err := loadServerFile(overrides.ConfigFile)
		if err != nil {
			return Server{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyServerFile(&cfg, file); err != nil {
			return Server{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateServer(cfg); err != nil {
		return Server{}, err
	}

	return cfg, nil
}

func defaultServer() Server {
	return Server{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

func loadServerFile(path string) (*serverFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var file serverFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &file, nil
}

func applyServerFile(cfg *Server, file *serverFile) error {
	if file.Port != "" {
		cfg.Port = file.Port
	}

	durations := []struct {
		key   string
		raw   string
		field *time.Duration
	}{
		{"shutdown_grace_period", file.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", file.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", file.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", file.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.field = value
	}

	if file.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *file.EnableRequestLogging
	}
	if file.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *file.RateLimit.RPS
	}
	if file.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *file.RateLimit.Burst
	}
	return nil
}

func applyEnvConfig(cfg *Server, env map[string]string) {
	if port := strings.TrimSpace(env["PORT"]); port != "" {
		cfg.Port = port
	}

	if rps := strings.TrimSpace(env["RATE_LIMIT_RPS"]); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(env["RATE_LIMIT_BURST"]); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if logging := strings.TrimSpace(env["ENABLE_REQUEST_LOGGING"]); logging != "" {
		if value, err := strconv.ParseBool(logging); err == nil {
			cfg.EnableRequestLogging = value
		}
	}
}

func applyCLIOverrides(cfg *Server, overrides *ServerOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

func validateServer(cfg Server) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit rps must be >= 0, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit burst must be >= 0, got %d", cfg.RateLimitBurst)
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return fmt.Errorf("shutdown grace period must be positive")
	}
	return nil
}

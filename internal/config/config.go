package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mbarreto/botcore/internal/health"
	"github.com/mbarreto/botcore/internal/logger"
	apitls "github.com/mbarreto/botcore/internal/tls"
)

// FileConfig represents the top-level TOML structure.
type FileConfig struct {
	Env      []string        `toml:"env" mapstructure:"env"`
	EnvFiles []string        `toml:"env_files" mapstructure:"env_files"`
	UseOSEnv bool            `toml:"use_os_env" mapstructure:"use_os_env"`
	Log      *LogConfig      `toml:"log" mapstructure:"log"`
	EventLog *EventLogConfig `toml:"eventlog" mapstructure:"eventlog"`
	Server   *ServerConfig   `toml:"server" mapstructure:"server"`
	Services []ServiceConfig `toml:"services" mapstructure:"services"`
}

type LogConfig struct {
	Level      string `toml:"level" mapstructure:"level"`
	Path       string `toml:"path" mapstructure:"path"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

type EventLogConfig struct {
	Path  string   `toml:"path" mapstructure:"path"`
	Sinks []string `toml:"sinks" mapstructure:"sinks"`
}

type ServerConfig struct {
	Listen        string     `toml:"listen" mapstructure:"listen"`
	BasePath      string     `toml:"base_path" mapstructure:"base_path"`
	MetricsListen string     `toml:"metrics_listen" mapstructure:"metrics_listen"`
	TLS           *TLSConfig `toml:"tls" mapstructure:"tls"`
}

// TLSConfig enables HTTPS on the API listener. Either cert_file and
// key_file name an existing PEM pair, or dir names a directory that
// holds one (generated on first start when auto_generate is set).
type TLSConfig struct {
	Enabled      bool     `toml:"enabled" mapstructure:"enabled"`
	CertFile     string   `toml:"cert_file" mapstructure:"cert_file"`
	KeyFile      string   `toml:"key_file" mapstructure:"key_file"`
	Dir          string   `toml:"dir" mapstructure:"dir"`
	AutoGenerate bool     `toml:"auto_generate" mapstructure:"auto_generate"`
	CommonName   string   `toml:"common_name" mapstructure:"common_name"`
	DNSNames     []string `toml:"dns_names" mapstructure:"dns_names"`
	ValidDays    int      `toml:"valid_days" mapstructure:"valid_days"`
	MinVersion   string   `toml:"min_version" mapstructure:"min_version"`
}

// ServiceConfig is one health-checked dependency entry.
type ServiceConfig struct {
	Name         string        `toml:"name" mapstructure:"name"`
	Type         string        `toml:"type" mapstructure:"type"` // http, database, static
	URL          string        `toml:"url" mapstructure:"url"`
	FallbackPath string        `toml:"fallback_path" mapstructure:"fallback_path"`
	DSN          string        `toml:"dsn" mapstructure:"dsn"`
	Status       string        `toml:"status" mapstructure:"status"`
	Note         string        `toml:"note" mapstructure:"note"`
	Timeout      time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// LoadConfig parses path as TOML and validates the result.
func LoadConfig(path string) (*FileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, err
	}
	if err := fc.validate(); err != nil {
		return nil, err
	}
	return &fc, nil
}

func (fc *FileConfig) validate() error {
	seen := make(map[string]bool, len(fc.Services))
	for _, sc := range fc.Services {
		if sc.Name == "" {
			return fmt.Errorf("service entry requires name")
		}
		if seen[sc.Name] {
			return fmt.Errorf("duplicate service %q", sc.Name)
		}
		seen[sc.Name] = true
		switch sc.Type {
		case "http":
			if sc.URL == "" {
				return fmt.Errorf("service %s: http check requires url", sc.Name)
			}
		case "database":
			if sc.DSN == "" {
				return fmt.Errorf("service %s: database check requires dsn", sc.Name)
			}
		case "static":
			switch sc.Status {
			case "", string(health.StatusOK), string(health.StatusSkip):
			default:
				return fmt.Errorf("service %s: static check status must be ok or skip", sc.Name)
			}
		default:
			return fmt.Errorf("service %s: unknown check type %q", sc.Name, sc.Type)
		}
	}
	return nil
}

// LoggerConfig converts the [log] section into a logger.Config.
func (fc *FileConfig) LoggerConfig() logger.Config {
	if fc.Log == nil {
		return logger.Config{}
	}
	return logger.Config{
		Level:      fc.Log.Level,
		Path:       fc.Log.Path,
		MaxSizeMB:  fc.Log.MaxSizeMB,
		MaxBackups: fc.Log.MaxBackups,
		MaxAgeDays: fc.Log.MaxAgeDays,
		Compress:   fc.Log.Compress,
	}
}

// HealthServices builds the prober service list from the [[services]]
// entries. Call after validate (LoadConfig does both).
func (fc *FileConfig) HealthServices() []health.Service {
	services := make([]health.Service, 0, len(fc.Services))
	for _, sc := range fc.Services {
		var chk health.Checker
		switch sc.Type {
		case "http":
			chk = &health.HTTPChecker{URL: sc.URL, FallbackPath: sc.FallbackPath}
		case "database":
			chk = &health.DBChecker{DSN: sc.DSN}
		case "static":
			st := health.Status(sc.Status)
			if sc.Status == "" {
				st = health.StatusSkip
			}
			chk = health.StaticChecker{Status: st, Note: sc.Note}
		}
		services = append(services, health.Service{Name: sc.Name, Checker: chk, Timeout: sc.Timeout})
	}
	return services
}

// TLSOptions converts the [server.tls] section into listener TLS
// options, or nil when TLS is not enabled.
func (fc *FileConfig) TLSOptions() *apitls.Options {
	if fc.Server == nil || fc.Server.TLS == nil || !fc.Server.TLS.Enabled {
		return nil
	}
	t := fc.Server.TLS
	return &apitls.Options{
		CertFile:     t.CertFile,
		KeyFile:      t.KeyFile,
		Dir:          t.Dir,
		AutoGenerate: t.AutoGenerate,
		CommonName:   t.CommonName,
		DNSNames:     t.DNSNames,
		ValidDays:    t.ValidDays,
		MinVersion:   t.MinVersion,
	}
}

// EventLogPath returns the configured event log path or a default.
func (fc *FileConfig) EventLogPath() string {
	if fc.EventLog != nil && fc.EventLog.Path != "" {
		return fc.EventLog.Path
	}
	return "events.log"
}

// SinkDSNs returns the configured export sink DSNs.
func (fc *FileConfig) SinkDSNs() []string {
	if fc.EventLog == nil {
		return nil
	}
	return fc.EventLog.Sinks
}

// GlobalEnv merges env from config: OS env (when UseOSEnv), then
// env_files contents, then the top-level env list overriding last.
func (fc *FileConfig) GlobalEnv() ([]string, error) {
	m := make(map[string]string)
	if fc.UseOSEnv {
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				m[kv[:i]] = kv[i+1:]
			}
		}
	}
	for _, p := range fc.EnvFiles {
		pairs, err := loadEnvFile(p)
		if err != nil {
			return nil, err
		}
		for k, v := range pairs {
			m[k] = v
		}
	}
	for _, kv := range fc.Env {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out, nil
}

func loadEnvFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string)
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '='); i >= 0 {
			k := strings.TrimSpace(line[:i])
			v := strings.TrimSpace(line[i+1:])
			m[k] = v
		}
	}
	return m, nil
}

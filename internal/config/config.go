package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/hookrelay/internal/detector"
	"github.com/loykin/hookrelay/internal/env"
	"github.com/loykin/hookrelay/internal/logger"
)

// FileConfig represents the top-level TOML structure:
//
//	env = ["AUTOMEM_API_KEY=..."]
//	env_files = [".env"]
//	use_os_env = true
//
//	[dispatch]
//	output_root = "/var/lib/hookrelay/minutes"
//	min_duration = 120
//	extractor = "minutes"
//	pipe_script = "/opt/hooks/pipe-to-automem.py"
//
//	[gateway]
//	type = "tcp"
//	addr = "localhost:8800"
//	timeout = "2s"
//
//	[journal]
//	dsn = "sqlite:///var/lib/hookrelay/journal.db"
//
//	[server]
//	listen = ":8080"
//	base_path = "/api"
//
//	[metrics]
//	enabled = true
//	listen = ":9100"
type FileConfig struct {
	Env      []string       `toml:"env" mapstructure:"env"`
	EnvFiles []string       `toml:"env_files" mapstructure:"env_files"`
	UseOSEnv bool           `toml:"use_os_env" mapstructure:"use_os_env"`
	Dispatch DispatchConfig `toml:"dispatch" mapstructure:"dispatch"`
	Gateway  GatewayConfig  `toml:"gateway" mapstructure:"gateway"`
	Journal  JournalConfig  `toml:"journal" mapstructure:"journal"`
	Server   *ServerConfig  `toml:"server" mapstructure:"server"`
	Metrics  *MetricsConfig `toml:"metrics" mapstructure:"metrics"`
	Log      logger.Config  `toml:"log" mapstructure:"log"`
}

type DispatchConfig struct {
	OutputRoot  string `toml:"output_root" mapstructure:"output_root"`
	MinDuration int64  `toml:"min_duration" mapstructure:"min_duration"` // seconds
	Extractor   string `toml:"extractor" mapstructure:"extractor"`
	InstallHint string `toml:"install_hint" mapstructure:"install_hint"`
	PipeScript  string `toml:"pipe_script" mapstructure:"pipe_script"`
	EndpointVar string `toml:"endpoint_var" mapstructure:"endpoint_var"`
}

type GatewayConfig struct {
	Type    string        `toml:"type" mapstructure:"type"` // tcp | command | pidfile
	Addr    string        `toml:"addr" mapstructure:"addr"`
	Timeout time.Duration `toml:"timeout" mapstructure:"timeout"`
	Command string        `toml:"command" mapstructure:"command"`
	PIDFile string        `toml:"pidfile" mapstructure:"pidfile"`
}

type JournalConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen"`
}

// Load reads a TOML config file. A missing path yields defaults only.
func Load(path string) (*FileConfig, error) {
	v := viper.New()
	v.SetDefault("use_os_env", true)
	v.SetDefault("dispatch.min_duration", 120)
	v.SetDefault("dispatch.extractor", "minutes")
	v.SetDefault("dispatch.endpoint_var", "AUTOMEM_ENDPOINT")
	v.SetDefault("gateway.type", "tcp")
	v.SetDefault("gateway.addr", "localhost:8800")
	v.SetDefault("gateway.timeout", detector.DefaultProbeTimeout)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &fc, nil
}

// Detector builds the gateway availability probe from config.
func (c *FileConfig) Detector() (detector.Detector, error) {
	g := c.Gateway
	switch g.Type {
	case "", "tcp":
		addr := g.Addr
		if addr == "" {
			addr = "localhost:8800"
		}
		return detector.TCPDetector{Addr: addr, Timeout: g.Timeout}, nil
	case "command":
		if g.Command == "" {
			return nil, fmt.Errorf("gateway.command required for command detector")
		}
		return detector.CommandDetector{Command: g.Command}, nil
	case "pidfile":
		if g.PIDFile == "" {
			return nil, fmt.Errorf("gateway.pidfile required for pidfile detector")
		}
		return detector.PIDFileDetector{PIDFile: g.PIDFile}, nil
	default:
		return nil, fmt.Errorf("unknown gateway detector type: %q", g.Type)
	}
}

// TaskEnv composes the environment for spawned tasks.
// Precedence: OS env (when use_os_env) as base, then env_files in
// order, then the top-level env list. Returns nil when nothing is
// configured and use_os_env is set, so children simply inherit.
func (c *FileConfig) TaskEnv(configPath string) ([]string, error) {
	if c.UseOSEnv && len(c.Env) == 0 && len(c.EnvFiles) == 0 {
		return nil, nil
	}
	e := env.New()
	if c.UseOSEnv {
		e.FromOS()
	} else {
		e.EmptyBase()
	}
	vars := make(env.Var)
	for _, p := range c.EnvFiles {
		if !filepath.IsAbs(p) && configPath != "" {
			p = filepath.Join(filepath.Dir(configPath), p)
		}
		m, err := loadEnvFile(p)
		if err != nil {
			return nil, err
		}
		for k, v := range m {
			vars[k] = v
		}
	}
	for _, kv := range c.Env {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			vars[kv[:i]] = kv[i+1:]
		}
	}
	for k, v := range vars {
		e.Set(k, v)
	}
	return e.Merge(nil), nil
}

// loadEnvFile parses a simple .env file with KEY=VALUE lines.
// Lines starting with # are ignored.
func loadEnvFile(path string) (map[string]string, error) {
	clean := filepath.Clean(path)
	b, err := os.ReadFile(clean)
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
			m[strings.TrimSpace(line[:i])] = strings.TrimSpace(line[i+1:])
		}
	}
	return m, nil
}

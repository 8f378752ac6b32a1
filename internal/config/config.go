package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestCaseExt string

	// Execution settings
	Timeout     time.Duration
	OutputLimit int
	KeepBinary  bool

	// Compile command templates keyed by source extension
	Compilers map[string]string

	// Storage settings
	Store string
	MySQL MySQLConfig

	// Companion listener address
	CompanionAddr string

	// Logging
	LogLevel  string
	LogFormat string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// MySQLConfig holds the connection settings of the MySQL test case store
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Flags holds command-line flags
type Flags struct {
	Timeout    time.Duration
	KeepBinary bool
	NoCompile  bool
	TUI        bool
	Quiet      bool
	Store      string
	NameFilter string
	TestCases  bool
	Verbose    bool
	Addr       string
}

// fileConfig mirrors cpt.yaml
type fileConfig struct {
	Timeout     time.Duration     `yaml:"timeout"`
	OutputLimit int               `yaml:"outputLimit"`
	KeepBinary  bool              `yaml:"keepBinary"`
	TestCaseExt string            `yaml:"testCaseExt"`
	Compilers   map[string]string `yaml:"compilers"`
	Store       string            `yaml:"store"`
	MySQL       *MySQLConfig      `yaml:"mysql"`
	Companion   struct {
		Addr string `yaml:"addr"`
	} `yaml:"companion"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:   DefaultProjectPath,
		TestCaseExt:   DefaultTestCaseExt,
		Timeout:       DefaultTimeout,
		OutputLimit:   DefaultOutputLimit,
		Store:         DefaultStore,
		MySQL:         DefaultMySQL,
		CompanionAddr: DefaultCompanionAddr,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
	}
	cfg.Compilers = make(map[string]string, len(DefaultCompilers))
	for ext, tpl := range DefaultCompilers {
		cfg.Compilers[ext] = tpl
	}
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config for the project in dir, reading .env and cpt.yaml when present.
// Environment variables win over the file.
func Load(dir string) (*Config, error) {
	cfg := New()
	cfg.ProjectPath = dir

	// .env is optional
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.LoadFile(filepath.Join(dir, DefaultConfigFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the YAML file at path into the config
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.Timeout > 0 {
		c.Timeout = fc.Timeout
	}
	if fc.OutputLimit > 0 {
		c.OutputLimit = fc.OutputLimit
	}
	if fc.KeepBinary {
		c.KeepBinary = true
	}
	if fc.TestCaseExt != "" {
		c.TestCaseExt = fc.TestCaseExt
	}
	for ext, tpl := range fc.Compilers {
		c.Compilers[strings.ToLower(ext)] = tpl
	}
	if fc.Store != "" {
		c.Store = fc.Store
	}
	if fc.MySQL != nil {
		c.MySQL = mergeMySQL(c.MySQL, *fc.MySQL)
	}
	if fc.Companion.Addr != "" {
		c.CompanionAddr = fc.Companion.Addr
	}
	if fc.Log.Level != "" {
		c.LogLevel = fc.Log.Level
	}
	if fc.Log.Format != "" {
		c.LogFormat = fc.Log.Format
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CPT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CPT_TIMEOUT %q: %w", v, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid CPT_TIMEOUT %q: must be positive", v)
		}
		c.Timeout = d
	}
	if v := os.Getenv("CPT_OUTPUT_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CPT_OUTPUT_LIMIT %q: %w", v, err)
		}
		if n <= 0 {
			return fmt.Errorf("invalid CPT_OUTPUT_LIMIT %q: must be positive", v)
		}
		c.OutputLimit = n
	}
	if v := os.Getenv("CPT_STORE"); v != "" {
		c.Store = v
	}
	c.MySQL = mergeMySQL(c.MySQL, MySQLConfig{
		Host:     os.Getenv("CPT_MYSQL_HOST"),
		Port:     os.Getenv("CPT_MYSQL_PORT"),
		User:     os.Getenv("CPT_MYSQL_USER"),
		Password: os.Getenv("CPT_MYSQL_PASSWORD"),
		Database: os.Getenv("CPT_MYSQL_DATABASE"),
	})
	return nil
}

func mergeMySQL(base, override MySQLConfig) MySQLConfig {
	if override.Host != "" {
		base.Host = override.Host
	}
	if override.Port != "" {
		base.Port = override.Port
	}
	if override.User != "" {
		base.User = override.User
	}
	if override.Password != "" {
		base.Password = override.Password
	}
	if override.Database != "" {
		base.Database = override.Database
	}
	return base
}

// ApplyFlags stores the parsed flags and applies their overrides
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Timeout > 0 {
		c.Timeout = flags.Timeout
	}
	if flags.KeepBinary {
		c.KeepBinary = true
	}
	if flags.Store != "" {
		c.Store = flags.Store
	}
	if flags.Addr != "" {
		c.CompanionAddr = flags.Addr
	}
	if flags.Verbose {
		c.LogLevel = "debug"
	}
}

// ResolvePath anchors path at the project and returns it in absolute form.
// A bare file name would otherwise be looked up in $PATH when executed.
func (c *Config) ResolvePath(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.ProjectPath, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// TestCasePath returns the test case file that belongs to source
func (c *Config) TestCasePath(source string) string {
	return source + c.TestCaseExt
}

// BinaryPath returns where the compiled executable for source is written
func (c *Config) BinaryPath(source string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base + ".bin"
}

// CompilerTemplate returns the compile command template for source
func (c *Config) CompilerTemplate(source string) (string, bool) {
	tpl, ok := c.Compilers[strings.ToLower(filepath.Ext(source))]
	return tpl, ok
}

// IsSource reports whether path has an extension the compilers know about
func (c *Config) IsSource(path string) bool {
	_, ok := c.CompilerTemplate(path)
	return ok
}

package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultHost     = "0.0.0.0"
	DefaultPort     = 49554
	DefaultAPIURL   = "http://127.0.0.1:49554"
	DefaultDataDir  = "data"
	DefaultLogLevel = "info"

	DefaultMaxBodyBytes   int64 = 256 * 1024
	DefaultPreviewBytes         = 256 * 1024
	DefaultMaxRecords           = 15
	DefaultRenderMaxBytes int64 = 2 * 1024 * 1024
	DefaultListLimit            = 50
	DefaultTimezone             = "Asia/Shanghai"

	fileName                 = ".stockhook.toml"
	envPrefix                = "STOCKHOOK_"
	configDirEnvKey          = envPrefix + "CONFIG_DIR"
	trustProjectConfigEnvKey = envPrefix + "TRUST_PROJECT_CONFIG"
)

// StoreConfig bounds what the ingest path accepts and retains.
type StoreConfig struct {
	MaxBodyBytes int64 `toml:"max_body_bytes"`
	PreviewBytes int   `toml:"preview_bytes"`
	MaxRecords   int   `toml:"max_records"`
}

// UIConfig controls the HTML views.
type UIConfig struct {
	RenderMaxBytes int64  `toml:"render_max_bytes"`
	ListLimit      int    `toml:"list_limit"`
	Timezone       string `toml:"timezone"`
}

// AuthConfig holds the shared token. TokenHash is a bcrypt hash and may be
// used instead of, or alongside, the plaintext Token.
type AuthConfig struct {
	Token        string `toml:"token"`
	TokenHash    string `toml:"token_hash"`
	ProtectReads bool   `toml:"protect_reads"`
}

// CORSConfig lists origins allowed to call the server from a browser.
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Config defines runtime configuration for stockhook.
type Config struct {
	Listen                   string      `toml:"listen"`
	DataDir                  string      `toml:"data_dir"`
	APIURL                   string      `toml:"api_url"`
	LogLevel                 string      `toml:"log_level"`
	Store                    StoreConfig `toml:"store"`
	UI                       UIConfig    `toml:"ui"`
	Auth                     AuthConfig  `toml:"auth"`
	CORS                     CORSConfig  `toml:"cors"`
	TrustedProjectConfigPath string      `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		Listen:   net.JoinHostPort(DefaultHost, strconv.Itoa(DefaultPort)),
		DataDir:  DefaultDataDir,
		APIURL:   DefaultAPIURL,
		LogLevel: DefaultLogLevel,
		Store: StoreConfig{
			MaxBodyBytes: DefaultMaxBodyBytes,
			PreviewBytes: DefaultPreviewBytes,
			MaxRecords:   DefaultMaxRecords,
		},
		UI: UIConfig{
			RenderMaxBytes: DefaultRenderMaxBytes,
			ListLimit:      DefaultListLimit,
			Timezone:       DefaultTimezone,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, fileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"listen",
	"data_dir",
	"api_url",
	"log_level",
	"store.max_body_bytes",
	"store.preview_bytes",
	"store.max_records",
	"ui.render_max_bytes",
	"ui.list_limit",
	"ui.timezone",
	"auth.token",
	"auth.token_hash",
	"auth.protect_reads",
	"cors.allowed_origins",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key. The plaintext token is masked.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "listen":
		return c.Listen, nil
	case "data_dir":
		return c.DataDir, nil
	case "api_url":
		return c.APIURL, nil
	case "log_level":
		return c.LogLevel, nil
	case "store.max_body_bytes":
		return strconv.FormatInt(c.Store.MaxBodyBytes, 10), nil
	case "store.preview_bytes":
		return strconv.Itoa(c.Store.PreviewBytes), nil
	case "store.max_records":
		return strconv.Itoa(c.Store.MaxRecords), nil
	case "ui.render_max_bytes":
		return strconv.FormatInt(c.UI.RenderMaxBytes, 10), nil
	case "ui.list_limit":
		return strconv.Itoa(c.UI.ListLimit), nil
	case "ui.timezone":
		return c.UI.Timezone, nil
	case "auth.token":
		if c.Auth.Token == "" {
			return "", nil
		}
		return "********", nil
	case "auth.token_hash":
		return c.Auth.TokenHash, nil
	case "auth.protect_reads":
		return strconv.FormatBool(c.Auth.ProtectReads), nil
	case "cors.allowed_origins":
		return strings.Join(c.CORS.AllowedOrigins, ","), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Location resolves the configured display time zone, falling back to UTC
// when the name is unknown.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.UI.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, fileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	// The file may hold the token.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, fileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, fileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if raw := env("LISTEN"); raw != "" {
		c.Listen = raw
	} else if host, port := env("HOST"), env("PORT"); host != "" || port != "" {
		currentHost, currentPort, err := net.SplitHostPort(c.Listen)
		if err != nil {
			currentHost, currentPort = DefaultHost, strconv.Itoa(DefaultPort)
		}
		if host != "" {
			currentHost = host
		}
		if port != "" {
			if _, err := strconv.ParseUint(port, 10, 16); err == nil {
				currentPort = port
			}
		}
		c.Listen = net.JoinHostPort(currentHost, currentPort)
	}

	if raw := env("DATA_DIR"); raw != "" {
		c.DataDir = raw
	}
	if raw := env("API_URL"); raw != "" {
		c.APIURL = raw
	}
	if raw := env("LOG_LEVEL"); raw != "" {
		c.LogLevel = raw
	}
	if raw := env("TOKEN"); raw != "" {
		c.Auth.Token = raw
	}
	if raw := env("TOKEN_HASH"); raw != "" {
		c.Auth.TokenHash = raw
	}
	if raw := env("PROTECT_READS"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			c.Auth.ProtectReads = parsed
		}
	}
	if raw := env("CORS_ORIGINS"); raw != "" {
		c.CORS.AllowedOrigins = splitCSV(raw)
	}
	if raw := env("TIMEZONE"); raw != "" {
		c.UI.Timezone = raw
	}

	// Malformed numbers are ignored and the previous value stands.
	if n, ok := envPositiveInt64("MAX_BODY"); ok {
		c.Store.MaxBodyBytes = n
	}
	if n, ok := envPositiveInt64("PREVIEW_BYTES"); ok {
		c.Store.PreviewBytes = int(n)
	}
	if n, ok := envPositiveInt64("MAX_RECORDS"); ok {
		c.Store.MaxRecords = int(n)
	}
	if n, ok := envPositiveInt64("RENDER_MAX_BYTES"); ok {
		c.UI.RenderMaxBytes = n
	}
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + name))
}

func envPositiveInt64(name string) (int64, bool) {
	raw := env(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "store.max_records":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%s must be zero or a positive integer", key)
		}
		return parsed, nil
	case "store.max_body_bytes", "store.preview_bytes", "ui.render_max_bytes", "ui.list_limit":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "auth.protect_reads":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "cors.allowed_origins":
		return splitCSV(value), nil
	case "listen":
		if _, _, err := net.SplitHostPort(value); err != nil {
			return nil, fmt.Errorf("listen must be host:port: %w", err)
		}
		return value, nil
	case "ui.timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return nil, fmt.Errorf("unknown timezone %q", value)
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = net.JoinHostPort(DefaultHost, strconv.Itoa(DefaultPort))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = DefaultDataDir
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Store.MaxBodyBytes <= 0 {
		c.Store.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Store.PreviewBytes <= 0 {
		c.Store.PreviewBytes = DefaultPreviewBytes
	}
	if c.Store.MaxRecords < 0 {
		c.Store.MaxRecords = 0
	}
	if c.UI.RenderMaxBytes <= 0 {
		c.UI.RenderMaxBytes = DefaultRenderMaxBytes
	}
	if c.UI.ListLimit <= 0 {
		c.UI.ListLimit = DefaultListLimit
	}
	c.CORS.AllowedOrigins = splitCSV(strings.Join(c.CORS.AllowedOrigins, ","))
}

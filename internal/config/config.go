/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"gowireframe/internal/log"
	"gowireframe/internal/storage"
	"gowireframe/internal/wireframe"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type ParserConfig struct {
	DeepNestingLimit int `yaml:"deep_nesting_limit"`
	CacheSize        int `yaml:"cache_size"`
}

type FixerConfig struct {
	MaxIterations int `yaml:"max_iterations"`
}

type IndexConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "pgx"
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
	// The Postgres password is not stored on disk; it lives in the OS keyring.
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	CacheSize int    `yaml:"cache_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Parser        ParserConfig  `yaml:"parser"`
	Fixer         FixerConfig   `yaml:"fixer"`
	Index         IndexConfig   `yaml:"index"`
	Server        ServerConfig  `yaml:"server"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Parser:        ParserConfig{DeepNestingLimit: 4},
		Fixer:         FixerConfig{MaxIterations: 100},
		Index:         IndexConfig{Driver: storage.DriverSQLite},
		Server:        ServerConfig{Addr: ":8090", CacheSize: 256},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile       = "GWF_CONFIG"
	EnvDeepNestingLimit = "GWF_DEEP_NESTING_LIMIT"
	EnvFixMaxIterations = "GWF_FIX_MAX_ITERATIONS"
	EnvIndexDriver      = "GWF_INDEX_DRIVER"
	EnvIndexDSN         = "GWF_INDEX_DSN"
	EnvIndexPath        = "GWF_INDEX_PATH"
	EnvServerAddr       = "GWF_SERVER_ADDR"
	EnvLogLevel         = "GWF_LOG_LEVEL"
	EnvLogFormat        = "GWF_LOG_FORMAT"
	EnvLogSource        = "GWF_LOG_SOURCE"
	EnvLogFile          = "GWF_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService  = "GoWireframe"
	keyringPassword = "index_password"
)

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

// osKeyring implements TokenStore with github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// ConfigPath returns the per-user config file path. GWF_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "gowireframe", "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is an error; a missing one is not.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// IndexPassword returns the Postgres index password from the keyring, or "" when none is stored.
func IndexPassword() (string, error) {
	pw, err := tokenStore.Get(keyringService, keyringPassword)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return pw, err
}

// SetIndexPassword stores pw in the keyring; an empty pw removes it.
func SetIndexPassword(pw string) error {
	if pw == "" {
		err := tokenStore.Delete(keyringService, keyringPassword)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	return tokenStore.Set(keyringService, keyringPassword, pw)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Parser.DeepNestingLimit > 0 {
		dst.Parser.DeepNestingLimit = src.Parser.DeepNestingLimit
	}
	if src.Parser.CacheSize > 0 {
		dst.Parser.CacheSize = src.Parser.CacheSize
	}
	if src.Fixer.MaxIterations > 0 {
		dst.Fixer.MaxIterations = src.Fixer.MaxIterations
	}
	if s := strings.TrimSpace(src.Index.Driver); s != "" {
		dst.Index.Driver = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Index.Path); s != "" {
		dst.Index.Path = s
	}
	if s := strings.TrimSpace(src.Index.DSN); s != "" {
		dst.Index.DSN = s
	}
	if s := strings.TrimSpace(src.Server.Addr); s != "" {
		dst.Server.Addr = s
	}
	if src.Server.CacheSize > 0 {
		dst.Server.CacheSize = src.Server.CacheSize
	}
	if s := strings.TrimSpace(src.Logging.Level); s != "" {
		dst.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Logging.Format); s != "" {
		dst.Logging.Format = strings.ToLower(s)
	}
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func envInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envInt(EnvDeepNestingLimit, &cfg.Parser.DeepNestingLimit)
	envInt(EnvFixMaxIterations, &cfg.Fixer.MaxIterations)
	envString(EnvIndexDriver, &cfg.Index.Driver)
	envString(EnvIndexDSN, &cfg.Index.DSN)
	envString(EnvIndexPath, &cfg.Index.Path)
	envString(EnvServerAddr, &cfg.Server.Addr)
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	envString(EnvLogFile, &cfg.Logging.File)
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := map[string]string{
		"parser.deep_nesting_limit": EnvDeepNestingLimit,
		"fixer.max_iterations":      EnvFixMaxIterations,
		"index.driver":              EnvIndexDriver,
		"index.dsn":                 EnvIndexDSN,
		"index.path":                EnvIndexPath,
		"server.addr":               EnvServerAddr,
		"logging.level":             EnvLogLevel,
		"logging.format":            EnvLogFormat,
		"logging.source":            EnvLogSource,
		"logging.file":              EnvLogFile,
	}[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// LogOptions maps the logging section onto log.Init options.
func (c AppConfig) LogOptions() log.Options {
	return log.Options{Level: c.Logging.Level, Format: c.Logging.Format, AddSource: c.Logging.Source, File: c.Logging.File}
}

// WireframeOptions maps the parser and fixer sections; cacheSize overrides parser.cache_size when > 0.
func (c AppConfig) WireframeOptions(cacheSize int) wireframe.Options {
	if cacheSize <= 0 {
		cacheSize = c.Parser.CacheSize
	}
	return wireframe.Options{
		DeepNestingLimit: c.Parser.DeepNestingLimit,
		MaxFixIterations: c.Fixer.MaxIterations,
		CacheSize:        cacheSize,
	}
}

// IndexOptions maps the index section. target, when set, replaces the configured path (sqlite)
// or DSN (postgres). The Postgres password comes from the keyring.
func (c AppConfig) IndexOptions(target string) (storage.Options, error) {
	opts := storage.Options{Driver: c.Index.Driver, Path: c.Index.Path, DSN: c.Index.DSN}
	if target != "" {
		if strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://") {
			opts.Driver = storage.DriverPostgres
			opts.DSN = target
		} else {
			opts.Path = target
		}
	}
	if opts.Driver == storage.DriverPostgres {
		pw, err := IndexPassword()
		if err != nil {
			return opts, fmt.Errorf("read index password: %w", err)
		}
		opts.Password = pw
	}
	return opts, nil
}

// Package config loads toolshub settings from an INI file, the environment
// and command-line flags.
//
// Precedence, highest first: flags that were set, TOOLSHUB_* environment
// variables, the INI file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable names.
const EnvPrefix = "TOOLSHUB"

// DefaultFile is read when no config file is given explicitly.
const DefaultFile = "data/toolshub.ini"

// Known configuration keys, in Section.Key form.
const (
	KeyServerAddr      = "Server.Addr"
	KeyServerStaticDir = "Server.StaticDir"
	KeyServerBaseURL   = "Server.BaseURL"
	KeyServerDebug     = "Server.Debug"
	KeyShutdownTimeout = "Server.ShutdownTimeout"

	KeyContactTo     = "Contact.To"
	KeyContactRate   = "Contact.RatePerMinute"
	KeyContactBurst  = "Contact.Burst"
	KeyContactMaxLen = "Contact.MaxMessageLength"

	KeySMTPHost     = "SMTP.Host"
	KeySMTPPort     = "SMTP.Port"
	KeySMTPUsername = "SMTP.Username"
	KeySMTPPassword = "SMTP.Password"
	KeySMTPFrom     = "SMTP.From"
)

var defaults = map[string]any{
	KeyServerAddr:      ":8080",
	KeyServerStaticDir: "public",
	KeyServerBaseURL:   "https://officetoolshub.com",
	KeyServerDebug:     false,
	KeyShutdownTimeout: "10s",
	KeyContactTo:       "",
	KeyContactRate:     5,
	KeyContactBurst:    3,
	KeyContactMaxLen:   5000,
	KeySMTPHost:        "",
	KeySMTPPort:        587,
	KeySMTPUsername:    "",
	KeySMTPPassword:    "",
	KeySMTPFrom:        "",
}

// Keys returns every known configuration key.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	return keys
}

// EnvName returns the environment variable consulted for key,
// e.g. "Server.Addr" -> "TOOLSHUB_SERVER_ADDR".
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Config wraps a viper instance holding the merged settings.
type Config struct {
	vp     *viper.Viper
	source string
}

// Options controls Load.
type Options struct {
	// File is the INI file to read. Empty means DefaultFile, which may be absent.
	File string
	// Flags maps configuration keys to flags that override them.
	Flags map[string]*pflag.Flag
}

// Load builds a Config.
func Load(opts Options) (*Config, error) {
	vp := viper.New()
	for k, v := range defaults {
		vp.SetDefault(k, v)
	}

	path := opts.File
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	source := ""
	iniCfg, err := ini.Load(path)
	switch {
	case err == nil:
		source = path
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				viperKey := section.Name() + "." + key.Name()
				if section.Name() == ini.DefaultSection {
					viperKey = key.Name()
				}
				// File values sit between defaults and the environment.
				vp.SetDefault(viperKey, key.Value())
			}
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// No default file; defaults and environment only.
	default:
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	for key := range defaults {
		if err := vp.BindEnv(key, EnvName(key)); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := vp.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	return &Config{vp: vp, source: source}, nil
}

// Source returns the file the configuration was read from, if any.
func (c *Config) Source() string {
	return c.source
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	return c.vp.GetDuration(key)
}

// Server holds web server settings.
type Server struct {
	Addr            string
	StaticDir       string
	BaseURL         string
	Debug           bool
	ShutdownTimeout time.Duration
}

// Contact holds contact form settings.
type Contact struct {
	To               string
	RatePerMinute    int
	Burst            int
	MaxMessageLength int
}

// SMTP holds outgoing mail settings. An empty Host disables SMTP delivery.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Server returns the web server settings.
func (c *Config) Server() Server {
	return Server{
		Addr:            c.GetString(KeyServerAddr),
		StaticDir:       c.GetString(KeyServerStaticDir),
		BaseURL:         strings.TrimSuffix(c.GetString(KeyServerBaseURL), "/"),
		Debug:           c.GetBool(KeyServerDebug),
		ShutdownTimeout: c.GetDuration(KeyShutdownTimeout),
	}
}

// Contact returns the contact form settings.
func (c *Config) Contact() Contact {
	return Contact{
		To:               c.GetString(KeyContactTo),
		RatePerMinute:    c.GetInt(KeyContactRate),
		Burst:            c.GetInt(KeyContactBurst),
		MaxMessageLength: c.GetInt(KeyContactMaxLen),
	}
}

// SMTP returns the outgoing mail settings.
func (c *Config) SMTP() SMTP {
	return SMTP{
		Host:     c.GetString(KeySMTPHost),
		Port:     c.GetInt(KeySMTPPort),
		Username: c.GetString(KeySMTPUsername),
		Password: c.GetString(KeySMTPPassword),
		From:     c.GetString(KeySMTPFrom),
	}
}

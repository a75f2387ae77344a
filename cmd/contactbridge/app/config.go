package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/contactbridge"
	"github.com/agentstation/contactbridge/pkg/contacts"
)

// DefaultLockName is the advisory lock both parties contend on.
const DefaultLockName = "contactbridge-sync"

// Config holds the CLI configuration loaded from flags, environment
// variables, .env files, and the config file, in that precedence order.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Backend connections
	DSN        string
	APIBaseURL string
	LockName   string

	// Bridge configuration
	Bridge contactbridge.Config

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables
//  3. .env files
//  4. Config file (~/.contactbridge.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("CONTACTBRIDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := os.Getenv("CONTACTBRIDGE_CONFIG")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".contactbridge")
	}

	// Missing config file is fine; everything can come from the
	// environment.
	_ = v.ReadInConfig()

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		DSN:        v.GetString("dsn"),
		APIBaseURL: v.GetString("api_base_url"),
		LockName:   v.GetString("lock_name"),

		Bridge: contactbridge.Config{
			Label:        v.GetString("label"),
			Parties:      [2]string{v.GetString("party_a"), v.GetString("party_b")},
			Party:        v.GetString("party"),
			LockTimeout:  v.GetDuration("lock_timeout"),
			LogRetention: v.GetInt("log_retention"),
			ErrorLimit:   v.GetInt("error_limit"),
			Groups:       toGroups(v.GetStringSlice("groups")),
		},

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	if config.LockName == "" {
		config.LockName = DefaultLockName
	}
	if config.Bridge.LockTimeout == 0 {
		config.Bridge.LockTimeout = 2 * time.Minute
	}

	return config, nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func toGroups(names []string) []contacts.Group {
	if len(names) == 0 {
		return nil
	}
	out := make([]contacts.Group, 0, len(names))
	for _, n := range names {
		out = append(out, contacts.Group(n))
	}
	return out
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	myhttp "github.com/bcap/teachbook-harvester/http"
	"github.com/bcap/teachbook-harvester/storage/neo4j"
)

const (
	appName   = "teachbook-harvester"
	envPrefix = "TBHARVEST"
)

type HTTPConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	MinRetryWait time.Duration `mapstructure:"min_retry_wait"`
	MaxRetryWait time.Duration `mapstructure:"max_retry_wait"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Parallelism  int           `mapstructure:"parallelism"`
	UserAgent    string        `mapstructure:"user_agent"`
}

type HarvestConfig struct {
	MaxSectionDepth int `mapstructure:"max_section_depth"`
}

type Neo4jConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type StorageConfig struct {
	Neo4j Neo4jConfig `mapstructure:"neo4j"`
}

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Harvest HarvestConfig `mapstructure:"harvest"`
	Storage StorageConfig `mapstructure:"storage"`
}

// Flags maps config keys to the command line flags that override them.
var Flags = map[string]string{
	"http.max_retries":          "max-retries",
	"http.min_retry_wait":       "min-retry-wait",
	"http.max_retry_wait":       "max-retry-wait",
	"http.timeout":              "timeout",
	"http.parallelism":          "parallelism",
	"http.user_agent":           "user-agent",
	"harvest.max_section_depth": "max-section-depth",
	"storage.neo4j.url":         "neo4j-url",
	"storage.neo4j.user":        "neo4j-user",
	"storage.neo4j.password":    "neo4j-password",
}

// BindFlags binds the flags of Flags found in flags onto v. A bound flag only
// wins over the other sources when it is set on the command line.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range Flags {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// New returns a viper instance with defaults, environment variables
// (TBHARVEST_HTTP_MAX_RETRIES and so on) and the config file loaded. When
// configFile is empty, harvester.yaml is looked up in the working directory
// and in the user config directory, and is optional.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("http.max_retries", 0)
	v.SetDefault("http.min_retry_wait", 1*time.Second)
	v.SetDefault("http.max_retry_wait", 15*time.Second)
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.parallelism", 10)
	v.SetDefault("http.user_agent", myhttp.DefaultUserAgent)
	v.SetDefault("harvest.max_section_depth", 3)
	v.SetDefault("storage.neo4j.url", neo4j.DefaultURL)
	v.SetDefault("storage.neo4j.user", "")
	v.SetDefault("storage.neo4j.password", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return v, nil
	}

	v.SetConfigName("harvester")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, appName))
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", appName))
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Decode turns the settings of v into a Config.
func Decode(v *viper.Viper) (*Config, error) {
	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if config.HTTP.Parallelism < 1 {
		return nil, fmt.Errorf("http.parallelism must be at least 1, got %d", config.HTTP.Parallelism)
	}
	if config.HTTP.MaxRetries < 0 {
		return nil, fmt.Errorf("http.max_retries cannot be negative, got %d", config.HTTP.MaxRetries)
	}
	return &config, nil
}

func Load(configFile string) (*Config, error) {
	v, err := New(configFile)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

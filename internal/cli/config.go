package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CHATDIALOG_STORAGE_BACKEND.
const EnvPrefix = "CHATDIALOG"

// Config holds the command line configuration.
type Config struct {
	Dialogs string        `mapstructure:"dialogs"`
	Entry   string        `mapstructure:"entry"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	MCP     MCPConfig     `mapstructure:"mcp"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Backend       string        `mapstructure:"backend"`
	DSN           string        `mapstructure:"dsn"`
	Address       string        `mapstructure:"address"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	Prefix        string        `mapstructure:"prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
	EncryptionKey string        `mapstructure:"encryption_key"`
	FallbackKeys  []string      `mapstructure:"fallback_keys"`
}

// HTTPConfig holds the simulator server settings.
type HTTPConfig struct {
	Port    int    `mapstructure:"port"`
	BotID   string `mapstructure:"bot_id"`
	Metrics bool   `mapstructure:"metrics"`
}

// MCPConfig holds the MCP server settings.
type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendFile     = "file"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"dialogs":    "dialogs",
	"entry":      "entry",
	"log-level":  "log.level",
	"log-json":   "log.json",
	"storage":    "storage.backend",
	"dsn":        "storage.dsn",
	"redis-addr": "storage.address",
	"port":       "http.port",
	"bot-id":     "http.bot_id",
	"metrics":    "http.metrics",
	"transport":  "mcp.transport",
	"sse-port":   "mcp.port",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dialogs", "dialogs.yaml")
	v.SetDefault("entry", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.address", "localhost:6379")
	v.SetDefault("storage.password", "")
	v.SetDefault("storage.db", 0)
	v.SetDefault("storage.prefix", "chatdialog:")
	v.SetDefault("storage.ttl", time.Duration(0))
	v.SetDefault("storage.lock_ttl", 30*time.Second)
	v.SetDefault("storage.encryption_key", "")
	v.SetDefault("storage.fallback_keys", []string{})
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.bot_id", "http")
	v.SetDefault("http.metrics", true)
	v.SetDefault("mcp.transport", "stdio")
	v.SetDefault("mcp.port", 8081)
}

// LoadConfig reads configuration from file, env and flags, in increasing priority.
// An empty path falls back to $CHATDIALOG_CONFIG, then to an optional chatdialog.yaml
// in the working directory. flags may be nil.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("chatdialog")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the combinations the factories rely on.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Storage.Address == "" {
			return fmt.Errorf("storage backend %s requires an address", c.Storage.Backend)
		}
	case BackendSQLite, BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage backend %s requires a dsn", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q (memory, file, redis, sqlite, postgres)", c.Storage.Backend)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown mcp transport %q (stdio, sse)", c.MCP.Transport)
	}
	return nil
}

// LoadDotEnv loads the existing files among paths into the environment.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	var found []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	if len(found) == 0 {
		return nil
	}
	if err := godotenv.Load(found...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

type StoreConfig struct {
	// Driver is memory or sqlite.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type InventoryConfig struct {
	// ReconcileInterval of zero disables the periodic reconcile task.
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Token      string `mapstructure:"token"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Store:     StoreConfig{Driver: "memory"},
		Inventory: InventoryConfig{ReconcileInterval: 30 * time.Second},
		Log:       LogConfig{Level: "info", Format: "console"},
		HTTP:      HTTPConfig{Addr: ":8080", Mode: "release"},
		Notify:    NotifyConfig{WebhookURL: "https://notify-api.line.me/api/notify"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("inventory.reconcile_interval", d.Inventory.ReconcileInterval)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.mode", d.HTTP.Mode)
	v.SetDefault("notify.webhook_url", d.Notify.WebhookURL)
	v.SetDefault("notify.token", d.Notify.Token)
}

// Load reads .env (if present), then bomkit.yaml from the usual locations or
// from file when it is not empty, then BOMKIT_* environment variables.
func Load(file string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("bomkit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config/")
		v.AddConfigPath("$HOME/.bomkit/")
	}

	v.SetEnvPrefix("BOMKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Inventory.ReconcileInterval < 0 {
		return fmt.Errorf("inventory.reconcile_interval must not be negative, got %s", c.Inventory.ReconcileInterval)
	}
	return nil
}

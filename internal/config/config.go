package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// envFiles are loaded before the environment is read. Values already present
// in the process environment are never overwritten.
var envFiles = []string{".config.env", ".env"}

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database DatabaseConfig
	Auth     struct {
		TokenSecret string
		BcryptCost  int
	}
	Log struct {
		Level  string
		Format string
	}
}

// DatabaseConfig describes the relational store. Host, Port, User, Password,
// Name and SSLMode are used by postgres; Path by sqlite.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the driver specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// legacyEnv maps config keys to the environment names used by existing
// deployments. The prefixed ACCOUNTS_ form is accepted as well.
var legacyEnv = map[string]string{
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USER",
	"database.password": "DB_PASS",
	"database.name":     "DB_NAME",
	"database.sslmode":  "DB_SSLMODE",
	"auth.tokensecret":  "TOKEN_SECRET",
}

// Load reads configuration from environment variables and an optional config
// file. An empty path searches the working directory for "accounts.*".
func Load(path string) (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("ACCOUNTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		prefixed := "ACCOUNTS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 8081)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.name", "students")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "data/accounts.db")
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 25)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)
	v.SetDefault("auth.tokensecret", "")
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("accounts")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // optional file
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	return cfg, nil
}

// Validate reports settings the process cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.TokenSecret) == "" {
		return errors.New("auth token secret is required (TOKEN_SECRET)")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// String returns a representation safe for logs.
func (c Config) String() string {
	target := c.Database.Path
	if c.Database.Driver != DriverSQLite {
		target = fmt.Sprintf("%s@%s:%d/%s", c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name)
	}
	return fmt.Sprintf("Config{Addr: %s, DB: %s %s, Auth: *** (masked) ***}", c.Server.Addr, c.Database.Driver, target)
}

func loadDotEnv() {
	for _, file := range envFiles {
		_ = godotenv.Load(file) // missing files are fine
	}
}

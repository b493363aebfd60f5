package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

type Config struct {
	Server Server `yaml:"server"`
}

type Server struct {
	Addr          string        `yaml:"addr"`
	PostgresDsn   string        `yaml:"postgresDsn"`
	SqlitePath    string        `yaml:"sqlitePath"` // used when postgresDsn is empty
	RedisAddr     string        `yaml:"redisAddr"`
	RedisDB       int           `yaml:"redisDB"`
	MemcachedAddr string        `yaml:"memcachedAddr"`
	EnableTrace   bool          `yaml:"enableTrace"`
	TraceEndpoint string        `yaml:"traceEndpoint"`
	SessionSecret string        `yaml:"sessionSecret"`
	TypeCacheTTL  time.Duration `yaml:"typeCacheTTL"`
}

func Default() Config {
	return Config{
		Server: Server{
			Addr:          ":8000",
			SqlitePath:    "admindata.db",
			TraceEndpoint: "localhost:4318",
			TypeCacheTTL:  10 * time.Minute,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path skips
// the file. Environment variables override both.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "open config")
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, errors.Wrap(err, "decode config")
		}
	}

	if err := applyEnv(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

func applyEnv(config *Config) error {
	if v := os.Getenv("ADMINDATA_ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv("ADMINDATA_POSTGRES_DSN"); v != "" {
		config.Server.PostgresDsn = v
	}
	if v := os.Getenv("ADMINDATA_SQLITE_PATH"); v != "" {
		config.Server.SqlitePath = v
	}
	if v := os.Getenv("ADMINDATA_REDIS_ADDR"); v != "" {
		config.Server.RedisAddr = v
	}
	if v := os.Getenv("ADMINDATA_MEMCACHED_ADDR"); v != "" {
		config.Server.MemcachedAddr = v
	}
	if v := os.Getenv("ADMINDATA_SESSION_SECRET"); v != "" {
		config.Server.SessionSecret = v
	}
	if v := os.Getenv("ADMINDATA_ENABLE_TRACE"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "ADMINDATA_ENABLE_TRACE")
		}
		config.Server.EnableTrace = enabled
	}
	return nil
}

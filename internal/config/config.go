package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

type Config struct {
	LogLevel          string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage           Storage   `yaml:"storage"`
	Redis             Redis     `yaml:"redis"`
	SQLiteStoragePath string    `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"quicktactoe.db"`
	Economy           Economy   `yaml:"economy"`
	Authority         Authority `yaml:"authority"`
	Telemetry         Telemetry `yaml:"telemetry"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Economy holds token amounts moved by the game operations.
type Economy struct {
	StarterGrant uint64 `yaml:"starter-grant" env:"ECONOMY_STARTER_GRANT" env-default:"10"`
	EntryFee     uint64 `yaml:"entry-fee" env:"ECONOMY_ENTRY_FEE" env-default:"1"`
	Reward       uint64 `yaml:"reward" env:"ECONOMY_REWARD" env-default:"1"`
}

type Authority struct {
	Name string `yaml:"name" env:"AUTHORITY_NAME" env-default:"quicktactoe"`
}

// Telemetry export is off while Endpoint is empty.
type Telemetry struct {
	Endpoint string `yaml:"endpoint" env:"TELEMETRY_ENDPOINT"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	switch config.Storage.Driver {
	case StorageRedis, StorageSQLite:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

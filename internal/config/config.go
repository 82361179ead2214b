package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env:"BIND_IP" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env:"PORT" env-default:"3000"`

	// bounds the context of every API request
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"10s"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGO_DB" env-required:"true" env-description:"MongoDB connection string"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-description:"database name, taken from the connection string when empty"`
}

type TelegramConfig struct {
	Token      string  `yaml:"bot_token" env:"BOT_TOKEN" env-description:"bot token used for profile lookups and alerts"`
	APIURL     string  `yaml:"api_url" env:"TELEGRAM_API_URL" env-default:"https://api.telegram.org"`
	AlertChats []int64 `yaml:"alert_chats" env:"TELEGRAM_ALERT_CHATS" env-separator:","`
	AlertLevel string  `yaml:"alert_level" env:"TELEGRAM_ALERT_LEVEL" env-default:"error"`
}

type AuthConfig struct {
	Secret          string        `yaml:"jwt_secret" env:"JWT_SEC" env-required:"true" env-description:"token signing secret"`
	TokenTTL        time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	LegacyPlaintext bool          `yaml:"legacy_plaintext" env:"LEGACY_PLAINTEXT" env-default:"false" env-description:"accept plaintext passwords stored by the old service"`
}

type ProfileCacheConfig struct {
	Capacity int           `yaml:"capacity" env:"PROFILE_CACHE_CAPACITY" env-default:"10000"`
	TTL      time.Duration `yaml:"ttl" env:"PROFILE_CACHE_TTL" env-default:"0s"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
}

type Config struct {
	Env          string             `yaml:"env" env:"ENV" env-default:"local"`
	LogPath      string             `yaml:"log_path" env:"LOG_PATH" env-default:"/var/log/tgadmin.log"`
	Listen       Listen             `yaml:"listen"`
	Mongo        MongoConfig        `yaml:"mongo"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	Auth         AuthConfig         `yaml:"auth"`
	ProfileCache ProfileCacheConfig `yaml:"profile_cache"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// AlertSlogLevel parses AlertLevel, defaulting to error.
func (t TelegramConfig) AlertSlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(t.AlertLevel)); err != nil {
		return slog.LevelError
	}
	return level
}

var instance *Config
var once sync.Once

// Load reads the YAML file at path when it exists, then the environment.
// Variables from a .env file in the working directory are applied first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{}
	var err error
	if path != "" && fileExists(path) {
		err = cleanenv.ReadConfig(path, conf)
	} else {
		err = cleanenv.ReadEnv(conf)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		return nil, fmt.Errorf("config: %s; %s", err, desc)
	}
	return conf, nil
}

func MustLoad(path string) *Config {
	once.Do(func() {
		conf, err := Load(path)
		if err != nil {
			log.Fatal(err)
		}
		instance = conf
	})
	return instance
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

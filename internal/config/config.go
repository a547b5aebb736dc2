package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds every setting of the service. Each key can be overridden by an
// environment variable named after it, e.g. db.host -> DB_HOST.
type Config struct {
	Server ServerConfig   `mapstructure:"server"`
	API    APIConfig      `mapstructure:"api"`
	JWT    JWTConfig      `mapstructure:"jwt"`
	DB     DatabaseConfig `mapstructure:"db"`
	Redis  RedisConfig    `mapstructure:"redis"`
	Google GoogleConfig   `mapstructure:"google"`
	Log    LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address         string   `mapstructure:"address"`
	BaseURL         string   `mapstructure:"base_url"`
	Mode            string   `mapstructure:"mode"`
	CorsOrigins     []string `mapstructure:"cors_origins"`
	ThumbnailDir    string   `mapstructure:"thumbnail_dir"`
	ThumbnailPublic string   `mapstructure:"thumbnail_public"`
}

type APIConfig struct {
	Key string `mapstructure:"key"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Timezone string `mapstructure:"timezone"`
	// Path is the database file when Driver is sqlite.
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	MapsAPIKey   string `mapstructure:"maps_api_key"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

var defaults = map[string]interface{}{
	"server.address":          "0.0.0.0:8080",
	"server.base_url":         "http://localhost:8080",
	"server.mode":             "debug",
	"server.cors_origins":     []string{"http://localhost:5173"},
	"server.thumbnail_dir":    "./public/assets/route-thumbnails",
	"server.thumbnail_public": "/assets/route-thumbnails",
	"api.key":                 "",
	"jwt.secret":              "supersecret",
	"jwt.ttl":                 72 * time.Hour,
	"db.driver":               "postgres",
	"db.host":                 "localhost",
	"db.port":                 "5432",
	"db.user":                 "postgres",
	"db.password":             "password",
	"db.name":                 "geocache",
	"db.sslmode":              "disable",
	"db.timezone":             "UTC",
	"db.path":                 "geocache.db",
	"redis.address":           "",
	"redis.password":          "",
	"redis.db":                0,
	"redis.ttl":               30 * time.Second,
	"google.client_id":        "",
	"google.client_secret":    "",
	"google.redirect_url":     "http://localhost:8080/auth/google/callback",
	"google.maps_api_key":     "",
	"log.file":                "./logs/app.log",
	"log.level":               "debug",
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found – relying on env vars")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	return &cfg, nil
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}

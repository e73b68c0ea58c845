// server/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Sub-structs, mirroring the YAML layout ---

type ServerConfig struct {
	Port               string   `mapstructure:"port"`
	CORSAllowedOrigins []string `mapstructure:"corsAllowedOrigins"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

// TTL parses Expiration ("2h", "30m", ...).
func (c JWTConfig) TTL() (time.Duration, error) {
	return time.ParseDuration(c.Expiration)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// Enabled reports whether image uploads can be served.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SeedConfig struct {
	File          string `mapstructure:"file"`
	AdminEmail    string `mapstructure:"adminEmail"`
	AdminPassword string `mapstructure:"adminPassword"`
}

// --- Main Config struct ---

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Redis  RedisConfig  `mapstructure:"redis"`
	S3     S3Config     `mapstructure:"s3"`
	Log    LogConfig    `mapstructure:"log"`
	Seed   SeedConfig   `mapstructure:"seed"`
}

// LoadConfig reads config.yaml from path and overrides it with environment
// variables. A .env file in the working directory is loaded first when present.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "3000")
	v.SetDefault("server.corsAllowedOrigins", []string{"*"})
	v.SetDefault("mongo.dbName", "coffeeos")
	v.SetDefault("jwt.expiration", "2h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("seed.adminEmail", "admin@coffeeos.local")

	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.corsAllowedOrigins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.dbName", "MONGO_DBNAME")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.expiration", "JWT_EXPIRATION", "JWT_EXPIRES_IN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("seed.file", "SEED_FILE")
	v.BindEnv("seed.adminEmail", "ADMIN_EMAIL")
	v.BindEnv("seed.adminPassword", "ADMIN_PASSWORD")

	// A missing config.yaml is fine, env vars alone are enough.
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}

	// CORS_ALLOWED_ORIGINS arrives as a single comma separated string.
	config.Server.CORSAllowedOrigins = splitAndTrim(strings.Join(config.Server.CORSAllowedOrigins, ","))

	err = config.Validate()
	return config, err
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("mongo.uri (MONGO_URI) is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret (JWT_SECRET) is required")
	}
	if _, err := c.JWT.TTL(); err != nil {
		return fmt.Errorf("invalid jwt.expiration %q: %w", c.JWT.Expiration, err)
	}
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

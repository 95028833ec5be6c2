// server/config/config.go
package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Sub-structs mirroring the YAML layout ---

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StoreConfig struct {
	Driver     string `mapstructure:"driver"` // mongo, sqlite or memory
	SQLitePath string `mapstructure:"sqlitePath"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// Enabled reports whether uploads can be sent to a bucket.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

type PlotConfig struct {
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	SessionCache int           `mapstructure:"sessionCache"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// --- Main config struct ---

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Store  StoreConfig  `mapstructure:"store"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	S3     S3Config     `mapstructure:"s3"`
	Plot   PlotConfig   `mapstructure:"plot"`
	CORS   CORSConfig   `mapstructure:"cors"`
}

// ErrMissingJWTSecret is returned when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("config: jwt.secret (JWT_SECRET) is required")

// LoadConfig reads config.yaml from path and applies environment overrides.
// A .env file in the working directory is loaded first when present.
func LoadConfig(path string) (config Config, err error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("store.sqlitePath", "garden.db")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbName", "garden")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("plot.writeTimeout", "10s")
	v.SetDefault("plot.sessionCache", 256)
	v.SetDefault("cors.allowedOrigins", []string{"*"})

	v.AutomaticEnv()
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("store.sqlitePath", "SQLITE_PATH")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.dbName", "MONGO_DBNAME")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	v.BindEnv("plot.writeTimeout", "PLOT_WRITE_TIMEOUT")
	v.BindEnv("plot.sessionCache", "PLOT_SESSION_CACHE")
	v.BindEnv("cors.allowedOrigins", "CORS_ALLOWED_ORIGINS")

	// Without config.yaml viper falls back to defaults and the environment.
	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return
	}

	if config.JWT.Secret == "" {
		err = ErrMissingJWTSecret
	}
	return
}

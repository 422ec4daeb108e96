package configuration

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Feed        Feed        `json:"feed"`
	Logger      Logger      `json:"logger"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

type Database struct {
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID    string `json:"projectID"`
	Subscription string `json:"subscription"`
}

type ServiceBus struct {
	ConnectionString string `json:"connectionString"`
	Queue            string `json:"queue"`
}

// Feed tunes the retrieval and ranking engine.
type Feed struct {
	CacheBackend         string `json:"cacheBackend"` // memory or redis
	CacheTTLSeconds      int    `json:"cacheTTLSeconds"`
	SweepIntervalSeconds int    `json:"sweepIntervalSeconds"`
	OverfetchFactor      int    `json:"overfetchFactor"`
	OverfetchCap         int    `json:"overfetchCap"`
	WatchHistorySize     int    `json:"watchHistorySize"`
	PreferredTagSample   int    `json:"preferredTagSample"`
	ConstrainedPageSize  int    `json:"constrainedPageSize"`
	PrefetchLookahead    int    `json:"prefetchLookahead"`
	PreloadThreshold     int    `json:"preloadThreshold"`
	DefaultPageSize      int    `json:"defaultPageSize"`
	MaxPageSize          int    `json:"maxPageSize"`
}

type Logger struct {
	Format string `json:"format"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initFeed(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Mongo.Name == "" {
		C.Database.Mongo.Name = os.Getenv("MONGO_DB_NAME")
	}
	if C.Database.Mongo.Name == "" {
		C.Database.Mongo.Name = "tiktaik"
	}
	if C.Database.Mongo.Host == "" {
		C.Database.Mongo.Host = os.Getenv("MONGO_HOST")
	}
	if C.Database.Mongo.Host == "" {
		C.Database.Mongo.Host = "localhost"
	}
	if C.Database.Mongo.Port == "" {
		C.Database.Mongo.Port = os.Getenv("MONGO_PORT")
	}
	if C.Database.Mongo.Port == "" {
		C.Database.Mongo.Port = "27017"
	}
	if C.Database.Mongo.User == "" {
		C.Database.Mongo.User = os.Getenv("MONGO_USER")
	}
	if C.Database.Mongo.Password == "" {
		C.Database.Mongo.Password = os.Getenv("MONGO_PASSWORD")
	}

	if C.RedisClient.Host == "" {
		C.RedisClient.Host = os.Getenv("REDIS_HOST")
	}
	if C.RedisClient.Port == "" {
		if v := os.Getenv("REDIS_PORT"); v != "" {
			C.RedisClient.Port = v
		} else {
			C.RedisClient.Port = "6379"
		}
	}
	if C.RedisClient.Password == "" {
		C.RedisClient.Password = os.Getenv("REDIS_PASSWORD")
	}
}

func initApp(C *Config) {
	// Prefer SECRET_KEY from environment for JWT verification; overrides config file when provided
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initFeed(C *Config) {
	if C.Feed.CacheBackend == "" {
		if v := os.Getenv("FEED_CACHE_BACKEND"); v != "" {
			C.Feed.CacheBackend = v
		} else {
			C.Feed.CacheBackend = "memory"
		}
	}
	if C.Feed.CacheTTLSeconds <= 0 {
		C.Feed.CacheTTLSeconds = 300
	}
	if C.Feed.SweepIntervalSeconds <= 0 {
		C.Feed.SweepIntervalSeconds = 30
	}
	if C.Feed.OverfetchFactor <= 0 {
		C.Feed.OverfetchFactor = 3
	}
	if C.Feed.OverfetchCap <= 0 {
		C.Feed.OverfetchCap = 150
	}
	if C.Feed.WatchHistorySize <= 0 {
		C.Feed.WatchHistorySize = 100
	}
	if C.Feed.PreferredTagSample <= 0 {
		C.Feed.PreferredTagSample = 50
	}
	if C.Feed.ConstrainedPageSize <= 0 {
		C.Feed.ConstrainedPageSize = 5
	}
	if C.Feed.PrefetchLookahead <= 0 {
		C.Feed.PrefetchLookahead = 5
	}
	if C.Feed.PreloadThreshold <= 0 {
		C.Feed.PreloadThreshold = 2
	}
	if C.Feed.DefaultPageSize <= 0 {
		C.Feed.DefaultPageSize = 20
	}
	if C.Feed.MaxPageSize <= 0 {
		C.Feed.MaxPageSize = 50
	}
}

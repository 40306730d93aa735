package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Chatbot   ChatbotConfig
	Lexicon   LexiconConfig
	FAQ       FAQConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// ChatbotConfig tunes the message pipeline. Zero values fall back to the
// defaults below.
type ChatbotConfig struct {
	MaxResults          int
	MinResults          int
	HistoryLimit        int
	RecentTurns         int
	SimilarityThreshold float64
	ResponsePicker      string
	Seed                int64
	MaxMessageLength    int
}

type LexiconConfig struct {
	Path string
}

type FAQConfig struct {
	RefreshSchedule string
	LoadAttempts    int
}

type CacheConfig struct {
	SearchTTLSeconds int
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
}

type SecurityConfig struct {
	AllowedOrigins []string
	Development    bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from path, or from the standard search
// locations when path is empty.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/shoppit")
	}

	v.SetEnvPrefix("SHOPPIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)
	v.SetDefault("server.writeTimeout", 15)
	v.SetDefault("server.bodyLimit", 1048576)

	v.SetDefault("sqlite.path", "./data/shoppit.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("chatbot.maxResults", 12)
	v.SetDefault("chatbot.minResults", 3)
	v.SetDefault("chatbot.historyLimit", 20)
	v.SetDefault("chatbot.recentTurns", 5)
	v.SetDefault("chatbot.similarityThreshold", 0.6)
	v.SetDefault("chatbot.responsePicker", "random")
	v.SetDefault("chatbot.seed", 0)
	v.SetDefault("chatbot.maxMessageLength", 1000)

	v.SetDefault("lexicon.path", "")

	v.SetDefault("faq.refreshSchedule", "")
	v.SetDefault("faq.loadAttempts", 3)

	v.SetDefault("cache.searchTTLSeconds", 300)

	v.SetDefault("rateLimit.maxRequestsPerMinute", 60)

	v.SetDefault("security.allowedOrigins", []string{})
	v.SetDefault("security.development", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}

package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Source SourceConfig `mapstructure:"source"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	DatabaseURL string `mapstructure:"database_url"`
}

// CacheConfig configures snapshot freshness and retention.
type CacheConfig struct {
	TTLSecs       int `mapstructure:"ttl_secs"`
	RetentionSize int `mapstructure:"retention_size"`
}

// TTL returns the freshness window as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}

// SourceConfig configures the four external scam-report sources.
type SourceConfig struct {
	UserAgent  string           `mapstructure:"user_agent"`
	News       NewsConfig       `mapstructure:"news"`
	Complaints ComplaintsConfig `mapstructure:"complaints"`
	Advisory   AdvisoryConfig   `mapstructure:"advisory"`
	Social     SocialConfig     `mapstructure:"social"`
}

// NewsConfig configures the syndicated news feed source.
type NewsConfig struct {
	BaseURL     string   `mapstructure:"base_url"`
	Queries     []string `mapstructure:"queries"`
	TimeoutSecs int      `mapstructure:"timeout_secs"`
	MaxItems    int      `mapstructure:"max_items"`
}

// ComplaintsConfig configures the consumer-complaint forum source.
type ComplaintsConfig struct {
	URLs        []string `mapstructure:"urls"`
	TimeoutSecs int      `mapstructure:"timeout_secs"`
	MaxItems    int      `mapstructure:"max_items"`
	DelaySecs   int      `mapstructure:"delay_secs"`
}

// AdvisoryConfig configures the government advisory source.
type AdvisoryConfig struct {
	URLs        []string `mapstructure:"urls"`
	TimeoutSecs int      `mapstructure:"timeout_secs"`
	MaxItems    int      `mapstructure:"max_items"`
	DelaySecs   int      `mapstructure:"delay_secs"`
}

// SocialConfig configures the social-search mirror source.
type SocialConfig struct {
	Mirrors     []string `mapstructure:"mirrors"`
	Query       string   `mapstructure:"query"`
	TimeoutSecs int      `mapstructure:"timeout_secs"`
	MaxItems    int      `mapstructure:"max_items"`
}

// ServerConfig configures the query facade server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCAMINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "scam_cache.json")
	v.SetDefault("cache.ttl_secs", 3600)
	v.SetDefault("cache.retention_size", 15)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("source.news.base_url", "https://news.google.com/rss/search")
	v.SetDefault("source.news.queries", []string{
		"cyber+scam+india",
		"whatsapp+fraud+india",
		"upi+scam+india",
		"digital+arrest+scam",
	})
	v.SetDefault("source.news.timeout_secs", 5)
	v.SetDefault("source.news.max_items", 10)
	v.SetDefault("source.complaints.urls", []string{
		"https://www.consumercomplaints.in/by-company/financial-fraud",
		"https://www.consumercomplaints.in/by-company/banking-services",
	})
	v.SetDefault("source.complaints.timeout_secs", 10)
	v.SetDefault("source.complaints.max_items", 5)
	v.SetDefault("source.complaints.delay_secs", 1)
	v.SetDefault("source.advisory.urls", []string{
		"https://cybercrime.gov.in/Webform/Whatsnew.aspx",
		"https://www.rbi.org.in/Scripts/BS_PressReleaseDisplay.aspx",
	})
	v.SetDefault("source.advisory.timeout_secs", 10)
	v.SetDefault("source.advisory.max_items", 5)
	v.SetDefault("source.advisory.delay_secs", 2)
	v.SetDefault("source.social.mirrors", []string{
		"https://nitter.net",
		"https://nitter.it",
		"https://nitter.poast.org",
	})
	v.SetDefault("source.social.query", "%23CyberScam")
	v.SetDefault("source.social.timeout_secs", 10)
	v.SetDefault("source.social.max_items", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

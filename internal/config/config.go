package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Analytics   AnalyticsConfig  `mapstructure:"analytics"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MarketDataConfig struct {
	QuoteCacheTTL   string `mapstructure:"quote_cache_ttl"`
	HistoryCacheTTL string `mapstructure:"history_cache_ttl"`
	MockFallback    bool   `mapstructure:"mock_fallback"`
}

// AnalyticsConfig holds the tunable constants of the forecasting and risk
// engine. The threshold and penalty values are empirically chosen; they are
// exposed here so deployments can override them, not because a derivation
// exists for the defaults.
type AnalyticsConfig struct {
	MinSeriesLength      int     `mapstructure:"min_series_length"`
	OutlierZScore        float64 `mapstructure:"outlier_z_score"`
	RidgeLambda          float64 `mapstructure:"ridge_lambda"`
	MaxCVFolds           int     `mapstructure:"max_cv_folds"`
	MaxForecastDays      int     `mapstructure:"max_forecast_days"`
	ForecastTrendPct     float64 `mapstructure:"forecast_trend_pct"`
	ShortTermTrendPct    float64 `mapstructure:"short_term_trend_pct"`
	LongTermTrendPct     float64 `mapstructure:"long_term_trend_pct"`
	RiskFreeRate         float64 `mapstructure:"risk_free_rate"`
	TradingDaysPerYear   int     `mapstructure:"trading_days_per_year"`
	VolatilityPenaltyCap float64 `mapstructure:"volatility_penalty_cap"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Analytics.MinSeriesLength < 2 {
		return nil, fmt.Errorf("analytics.min_series_length must be at least 2, got %d", config.Analytics.MinSeriesLength)
	}
	if config.Analytics.MaxForecastDays < 1 {
		return nil, fmt.Errorf("analytics.max_forecast_days must be at least 1, got %d", config.Analytics.MaxForecastDays)
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "investment_tracker")
	viper.SetDefault("database.sslmode", "disable")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Market data retrieval
	viper.SetDefault("market_data.quote_cache_ttl", "60s")
	viper.SetDefault("market_data.history_cache_ttl", "5m")
	viper.SetDefault("market_data.mock_fallback", true)

	// Analytics engine
	viper.SetDefault("analytics.min_series_length", 10)
	viper.SetDefault("analytics.outlier_z_score", 3.0)
	viper.SetDefault("analytics.ridge_lambda", 1.0)
	viper.SetDefault("analytics.max_cv_folds", 5)
	viper.SetDefault("analytics.max_forecast_days", 30)
	viper.SetDefault("analytics.forecast_trend_pct", 5.0)
	viper.SetDefault("analytics.short_term_trend_pct", 3.0)
	viper.SetDefault("analytics.long_term_trend_pct", 8.0)
	viper.SetDefault("analytics.risk_free_rate", 0.02)
	viper.SetDefault("analytics.trading_days_per_year", 252)
	viper.SetDefault("analytics.volatility_penalty_cap", 50.0)
}

// DefaultAnalytics returns the stock analytics configuration without going
// through viper. Used by tests and as a fallback when no config is loaded.
func DefaultAnalytics() AnalyticsConfig {
	return AnalyticsConfig{
		MinSeriesLength:      10,
		OutlierZScore:        3.0,
		RidgeLambda:          1.0,
		MaxCVFolds:           5,
		MaxForecastDays:      30,
		ForecastTrendPct:     5.0,
		ShortTermTrendPct:    3.0,
		LongTermTrendPct:     8.0,
		RiskFreeRate:         0.02,
		TradingDaysPerYear:   252,
		VolatilityPenaltyCap: 50.0,
	}
}

package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Game     GameConfig     `mapstructure:"game"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type GameConfig struct {
	// Character progression curve: required = int(base * level^exponent).
	CharGrowthBase     float64 `mapstructure:"char_growth_base"`
	CharGrowthExponent float64 `mapstructure:"char_growth_exponent"`
	StatPointsPerLevel int     `mapstructure:"stat_points_per_level"`
	// Guild progression curve (no stat points).
	GuildGrowthBase     float64 `mapstructure:"guild_growth_base"`
	GuildGrowthExponent float64 `mapstructure:"guild_growth_exponent"`
	// Quest expiration sweep interval.
	ExpireSweepInterval time.Duration `mapstructure:"expire_sweep_interval"`
	// Leaderboard refresh interval.
	RankingRefreshInterval time.Duration `mapstructure:"ranking_refresh_interval"`
	GuildMinMembers        int           `mapstructure:"guild_min_members"`
	GuildMaxMembers        int           `mapstructure:"guild_max_members"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/habitquest.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("game.char_growth_base", 100)
	v.SetDefault("game.char_growth_exponent", 1.2)
	v.SetDefault("game.stat_points_per_level", 2)
	v.SetDefault("game.guild_growth_base", 200)
	v.SetDefault("game.guild_growth_exponent", 1.5)
	v.SetDefault("game.expire_sweep_interval", "10m")
	v.SetDefault("game.ranking_refresh_interval", "5m")
	v.SetDefault("game.guild_min_members", 4)
	v.SetDefault("game.guild_max_members", 8)
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Admin     AdminConfig
	Booking   BookingConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QueueDB  int
}

type AdminConfig struct {
	APIKey string
}

type BookingConfig struct {
	// DefaultCapacity applies when a TimeSlotConfig row carries no
	// positive capacity. The canonical deployment runs with 1.
	DefaultCapacity int
}

type SchedulerConfig struct {
	// Cron specs per reminder checkpoint. Cadence must be at least as
	// fine as the checkpoint window.
	Spec24h      string
	Spec1h       string
	SpecFollowup string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DEFAULT_SLOT_CAPACITY", 1)
	viper.SetDefault("SWEEP_CRON_24H", "0 * * * *")
	viper.SetDefault("SWEEP_CRON_1H", "*/15 * * * *")
	viper.SetDefault("SWEEP_CRON_FOLLOWUP", "*/15 * * * *")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASS"),
			DB:       viper.GetInt("REDIS_DB"),
			QueueDB:  viper.GetInt("REDIS_QUEUE_DB"),
		},
		Admin: AdminConfig{
			APIKey: viper.GetString("ADMIN_API_KEY"),
		},
		Booking: BookingConfig{
			DefaultCapacity: viper.GetInt("DEFAULT_SLOT_CAPACITY"),
		},
		Scheduler: SchedulerConfig{
			Spec24h:      viper.GetString("SWEEP_CRON_24H"),
			Spec1h:       viper.GetString("SWEEP_CRON_1H"),
			SpecFollowup: viper.GetString("SWEEP_CRON_FOLLOWUP"),
		},
	}

	return config, nil
}

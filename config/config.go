// Initializing common application configuration
package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Dedup    DedupConfig    `mapstructure:"dedup"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

type ServerConfig struct {
	AppVersion   string        `mapstructure:"appVersion"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`      // UDP port for the booking protocol
	AdminPort    string        `mapstructure:"adminPort"` // HTTP port for health/metrics/stats
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Env          string        `mapstructure:"environment"`
	Mode         string        `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// Интервалы переподключения для LISTEN/NOTIFY слушателя
	ListenChannel      string        `mapstructure:"listen_channel"`
	ListenMinReconnect time.Duration `mapstructure:"listen_min_reconnect"`
	ListenMaxReconnect time.Duration `mapstructure:"listen_max_reconnect"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Настройки пула соединений
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type DedupConfig struct {
	Backend string        `mapstructure:"backend"` // "memory" или "redis"
	TTL     time.Duration `mapstructure:"ttl"`     // окно повторной отправки ответов
}

type MonitorConfig struct {
	MaxDuration time.Duration `mapstructure:"max_duration"` // верхний предел длительности подписки
}

type WorkerConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"` // очистка истекших подписок
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		log.Fatalf("unable to decode config into struct, %v", err)
		return nil, err
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.appVersion", "1.0.0")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8014)
	v.SetDefault("server.adminPort", "8080")
	v.SetDefault("server.poll_interval", 100*time.Millisecond)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "facility_user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "facilitydb")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.listen_channel", "booking_changes")
	v.SetDefault("database.listen_min_reconnect", 10*time.Second)
	v.SetDefault("database.listen_max_reconnect", time.Minute)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	// Dedup defaults
	v.SetDefault("dedup.backend", "memory")
	v.SetDefault("dedup.ttl", 10*time.Minute)

	// Monitor defaults
	v.SetDefault("monitor.max_duration", 24*time.Hour)

	// Worker defaults
	v.SetDefault("worker.sweep_interval", time.Minute)
}

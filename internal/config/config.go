// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек всех сервисов.
type Config struct {
	Env                     string        `yaml:"env" env-default:"local"`
	StorageConnectionString string        `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	RabbitConnectionString  string        `yaml:"rabbit_connection_string" env:"RABBIT_CONNECTION_STRING"`
	RabbitMQMaxRetries      int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay      time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
	WebhookURL              string        `yaml:"webhook_url" env:"NOTIFICATION_WEBHOOK_URL"`
	MigrationsPath          string        `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	BankAPI                 `yaml:"bank_api"`
	Monitor                 `yaml:"monitor"`
	Admin                   `yaml:"admin"`
}

// Admin структура для начального административного секрета.
// Секрет хэшируется и сохраняется в настройках при первом запуске,
// уже сохранённый хэш никогда не перезаписывается.
type Admin struct {
	InitialSecret string `yaml:"initial_secret" env:"ADMIN_INITIAL_SECRET"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env-default:"3s"`
}

// JWTToken структура для выпуска административных jwt-токенов.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
}

// BankAPI структура для подключения к банковскому API.
type BankAPI struct {
	APIURL         string        `yaml:"api_url"`
	APIToken       string        `yaml:"api_token" env:"BANK_API_TOKEN"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"30s"`
}

// Monitor структура для настройки цикла сверки платежей.
type Monitor struct {
	PollInterval time.Duration `yaml:"poll_interval" env-default:"5m"`
	PumpInterval time.Duration `yaml:"pump_interval" env-default:"60s"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH.
// При любой ошибке завершает процесс: без конфига сервисы не запускаются.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

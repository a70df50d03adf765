package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	Jaeger   string         `yaml:"jaeger" env:"JAEGER" env-default:"jaeger"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	DB       DBConfig       `yaml:"db"`
	Redis    RedisConfig    `yaml:"redis"`
	Skyfare  SkyfareConfig  `yaml:"skyfare"`
	Matching MatchingConfig `yaml:"matching"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type DBConfig struct {
	DSN string `yaml:"dsn" env:"DB_DSN"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Channel  string `yaml:"channel" env:"REDIS_EVENT_CHANNEL" env-default:"tripmatch:completed"`
}

type SkyfareConfig struct {
	BaseURL       string        `yaml:"base_url" env:"SKYFARE_BASE_URL" env-default:"https://partners.api.skyfare.net"`
	APIKey        string        `yaml:"api_key" env:"SKYFARE_API_KEY"`
	Market        string        `yaml:"market" env:"SKYFARE_MARKET" env-default:"IT"`
	Locale        string        `yaml:"locale" env:"SKYFARE_LOCALE" env-default:"en-GB"`
	Currency      string        `yaml:"currency" env:"SKYFARE_CURRENCY" env-default:"EUR"`
	CabinClass    string        `yaml:"cabin_class" env:"SKYFARE_CABIN_CLASS" env-default:"CABIN_CLASS_ECONOMY"`
	Adults        int           `yaml:"adults" env:"SKYFARE_ADULTS" env-default:"1"`
	Timeout       time.Duration `yaml:"timeout" env:"SKYFARE_TIMEOUT" env-default:"5s"`
	RatePerSecond float64       `yaml:"rate_per_second" env:"SKYFARE_RATE_PER_SECOND" env-default:"8"`
}

type MatchingConfig struct {
	MaxInFlight int           `yaml:"max_in_flight" env:"MATCH_MAX_IN_FLIGHT" env-default:"8"`
	CallTimeout time.Duration `yaml:"call_timeout" env:"MATCH_CALL_TIMEOUT" env-default:"10s"`
	Candidates  []string      `yaml:"candidates" env:"MATCH_CANDIDATES" env-separator:"," env-default:"BCN,LIS,ATH,PRG,CPH,VIE"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exists: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read the config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

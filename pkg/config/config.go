package config

import (
	"time"
)

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3001"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[fxchat]"`
}

//revive:disable
type RateProvider struct {
	Name              string        `envconfig:"NAME" default:"freecurrencyapi"`
	ApiKey            string        `envconfig:"API_KEY"`
	ApiUrl            string        `envconfig:"API_URL" default:"https://api.freecurrencyapi.com/v1"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	RequestsPerMinute int           `envconfig:"REQUESTS_PER_MINUTE" default:"10"`
	BurstSize         int           `envconfig:"BURST_SIZE" default:"2"`
	RefreshInterval   time.Duration `envconfig:"REFRESH_INTERVAL" default:"5m"`
}

//revive:enable

type RateCache struct {
	TTL time.Duration `envconfig:"TTL" default:"5m"`
}

type Conversion struct {
	LookupTimeout time.Duration `envconfig:"LOOKUP_TIMEOUT" default:"5s"`
}

type History struct {
	MaxEntries int `envconfig:"MAX_ENTRIES" default:"50"`
}

type Notification struct {
	StatusTTL time.Duration `envconfig:"STATUS_TTL" default:"3s"`
}

type Storage struct {
	Driver string `envconfig:"DRIVER" default:"database"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"fxchat:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type DB struct {
	Url string `envconfig:"URL" default:"sqlite://fxchat.db"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type App struct {
	Env          string        `envconfig:"APP_ENV" default:"development"`
	Server       *Server       `envconfig:"SERVER"`
	Log          *Log          `envconfig:"LOG"`
	RateProvider *RateProvider `envconfig:"RATE_PROVIDER"`
	RateCache    *RateCache    `envconfig:"RATE_CACHE"`
	Conversion   *Conversion   `envconfig:"CONVERSION"`
	History      *History      `envconfig:"HISTORY"`
	Notification *Notification `envconfig:"NOTIFICATION"`
	Storage      *Storage      `envconfig:"STORAGE"`
	Redis        *Redis        `envconfig:"REDIS"`
	DB           *DB           `envconfig:"DATABASE"`
	RateLimit    *RateLimit    `envconfig:"RATE_LIMIT"`
}

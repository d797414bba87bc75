package config

import "time"

const (
	localBackendURL      = "http://localhost:8787"
	productionBackendURL = "https://api.zishanhack.com"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database `envPrefix:"DATABASE_"`

	Backend  Backend  `envPrefix:"BACKEND_"`
	Session  Session  `envPrefix:"SESSION_"`
	Checkout Checkout `envPrefix:"CHECKOUT_"`
}

type Backend struct {
	BaseURL string        `env:"BASE_URL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type Session struct {
	StorageKey    string   `env:"STORAGE_KEY" envDefault:"zishanhack_token"`
	CookieName    string   `env:"COOKIE_NAME" envDefault:"zishanhack_token"`
	CookieDomains []string `env:"COOKIE_DOMAINS" envSeparator:"," envDefault:"zishanhack.com,.zishanhack.com"`
}

type Checkout struct {
	ScriptURL       string        `env:"SCRIPT_URL" envDefault:"https://checkout.razorpay.com/v1/checkout.js"`
	PollAttempts    int           `env:"POLL_ATTEMPTS" envDefault:"5"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"500ms"`
	SettleDelay     time.Duration `env:"SETTLE_DELAY" envDefault:"2s"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"900s"`
	MerchantName    string        `env:"MERCHANT_NAME" envDefault:"ZishanHack"`
	DefaultCurrency string        `env:"DEFAULT_CURRENCY" envDefault:"USD"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	URL    string `env:"URL" envDefault:"storefront.db"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"127.0.0.1"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// BackendURL returns the configured backend base URL, falling back to the
// local or production host depending on the environment.
func (c *Config) BackendURL() string {
	if c.Backend.BaseURL != "" {
		return c.Backend.BaseURL
	}
	if c.Environment.Name == "development" {
		return localBackendURL
	}
	return productionBackendURL
}

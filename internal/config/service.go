package config

import "time"

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// XeroConfig configures the Xero (provider A) client and OAuth app. The
// tenant is normally resolved from the connections endpoint when the operator
// connects; TenantID pins it when the app can see several organisations.
type XeroConfig struct {
	BaseURL        string        `yaml:"base_url"`
	TenantID       string        `yaml:"tenant_id"`
	ClientID       string        `yaml:"client_id"`
	ClientSecret   string        `yaml:"client_secret"`
	RedirectURI    string        `yaml:"redirect_uri"`
	Scope          string        `yaml:"scope"`
	AuthorizeURL   string        `yaml:"authorize_url"`
	TokenURL       string        `yaml:"token_url"`
	ConnectionsURL string        `yaml:"connections_url"`
	Timeout        time.Duration `yaml:"timeout"`
}

// QuickBooksConfig configures the QuickBooks Online (provider B) client and OAuth app.
type QuickBooksConfig struct {
	BaseURL      string        `yaml:"base_url"`
	RealmID      string        `yaml:"realm_id"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	RedirectURI  string        `yaml:"redirect_uri"`
	Scope        string        `yaml:"scope"`
	AuthorizeURL string        `yaml:"authorize_url"`
	TokenURL     string        `yaml:"token_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

type WebhookConfig struct {
	XeroKey            string `yaml:"xero_key"`
	QuickBooksVerifier string `yaml:"quickbooks_verifier"`
}

type PollerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

type QueueConfig struct {
	// Driver is memory or redis.
	Driver     string        `yaml:"driver"`
	Workers    int           `yaml:"workers"`
	BufferSize int           `yaml:"buffer_size"`
	JobTimeout time.Duration `yaml:"job_timeout"`
	Redis      RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type EncryptionConfig struct {
	// Key is a 64 char hex AES-256 key used for tokens at rest.
	Key string `yaml:"key"`
}

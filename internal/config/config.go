package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	pkgconfig "github.com/wekeepgrowing/accounting-sync/pkg/config"
	"github.com/wekeepgrowing/accounting-sync/pkg/logger"
)

// EnvPrefix prefixes every environment override, e.g. ACCOUNTING_SYNC_XERO_CLIENT_SECRET.
const EnvPrefix = "ACCOUNTING_SYNC"

type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Log        logger.Config    `yaml:"log"`
	JWT        JWTConfig        `yaml:"jwt"`
	Xero       XeroConfig       `yaml:"xero"`
	QuickBooks QuickBooksConfig `yaml:"quickbooks"`
	Webhooks   WebhookConfig    `yaml:"webhooks"`
	Poller     PollerConfig     `yaml:"poller"`
	Queue      QueueConfig      `yaml:"queue"`
	Encryption EncryptionConfig `yaml:"encryption"`
}

func LoadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/accounting-sync.yaml"
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data, pkgconfig.NewEnv(EnvPrefix))
}

// Parse decodes YAML config, overlays secrets from env and fills defaults.
func Parse(data []byte, env pkgconfig.Config) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if env != nil {
		cfg.overlaySecrets(env)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// overlaySecrets lets deployments keep credentials out of the YAML file.
func (c *Config) overlaySecrets(env pkgconfig.Config) {
	overrides := map[string]*string{
		"database.password":            &c.Database.Password,
		"jwt.secret":                   &c.JWT.Secret,
		"xero.client_id":               &c.Xero.ClientID,
		"xero.client_secret":           &c.Xero.ClientSecret,
		"xero.tenant_id":               &c.Xero.TenantID,
		"quickbooks.client_id":         &c.QuickBooks.ClientID,
		"quickbooks.client_secret":     &c.QuickBooks.ClientSecret,
		"webhooks.xero_key":            &c.Webhooks.XeroKey,
		"webhooks.quickbooks_verifier": &c.Webhooks.QuickBooksVerifier,
		"queue.redis.password":         &c.Queue.Redis.Password,
		"encryption.key":               &c.Encryption.Key,
	}
	for key, target := range overrides {
		if v := env.GetString(key); v != "" {
			*target = v
		}
	}
}

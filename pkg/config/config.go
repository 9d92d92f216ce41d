// Package config provides viper-backed access to configuration values.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config exposes read access to configuration values.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
}

type viperConfig struct {
	v *viper.Viper
}

func (c *viperConfig) GetString(key string) string {
	return c.v.GetString(key)
}

func (c *viperConfig) GetInt(key string) int {
	return c.v.GetInt(key)
}

func (c *viperConfig) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// NewEnv returns a Config that resolves keys purely from environment
// variables. Key "quickbooks.client_secret" with prefix "ACCOUNTING_SYNC"
// reads ACCOUNTING_SYNC_QUICKBOOKS_CLIENT_SECRET.
func NewEnv(prefix string) Config {
	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(prefix))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &viperConfig{v: v}
}

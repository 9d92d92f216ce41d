package config

import "time"

const (
	DefaultXeroBaseURL        = "https://api.xero.com/api.xro/2.0"
	DefaultXeroAuthURL        = "https://login.xero.com/identity/connect/authorize"
	DefaultXeroTokenURL       = "https://identity.xero.com/connect/token"
	DefaultXeroConnectionsURL = "https://api.xero.com/connections"
	DefaultXeroScope          = "offline_access accounting.transactions accounting.contacts"
	DefaultQuickBooksBaseURL  = "https://quickbooks.api.intuit.com/v3/company"
	DefaultQuickBooksAuthURL  = "https://appcenter.intuit.com/connect/oauth2"
	DefaultQuickBooksTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	DefaultQuickBooksScope    = "com.intuit.quickbooks.accounting"
)

func (c *Config) applyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "accounting-sync"
	}
	if c.Server.HTTP.Port == 0 {
		c.Server.HTTP.Port = 8080
	}
	if c.Server.GRPC.Port == 0 {
		c.Server.GRPC.Port = 9090
	}
	if c.Database.SlowQueryThreshold == 0 {
		c.Database.SlowQueryThreshold = 200 * time.Millisecond
	}

	if c.Xero.BaseURL == "" {
		c.Xero.BaseURL = DefaultXeroBaseURL
	}
	if c.Xero.AuthorizeURL == "" {
		c.Xero.AuthorizeURL = DefaultXeroAuthURL
	}
	if c.Xero.TokenURL == "" {
		c.Xero.TokenURL = DefaultXeroTokenURL
	}
	if c.Xero.ConnectionsURL == "" {
		c.Xero.ConnectionsURL = DefaultXeroConnectionsURL
	}
	if c.Xero.Scope == "" {
		c.Xero.Scope = DefaultXeroScope
	}
	if c.Xero.Timeout == 0 {
		c.Xero.Timeout = 30 * time.Second
	}

	if c.QuickBooks.BaseURL == "" {
		c.QuickBooks.BaseURL = DefaultQuickBooksBaseURL
	}
	if c.QuickBooks.AuthorizeURL == "" {
		c.QuickBooks.AuthorizeURL = DefaultQuickBooksAuthURL
	}
	if c.QuickBooks.TokenURL == "" {
		c.QuickBooks.TokenURL = DefaultQuickBooksTokenURL
	}
	if c.QuickBooks.Scope == "" {
		c.QuickBooks.Scope = DefaultQuickBooksScope
	}
	if c.QuickBooks.Timeout == 0 {
		c.QuickBooks.Timeout = 30 * time.Second
	}

	if c.Poller.Interval == 0 {
		c.Poller.Interval = 5 * time.Minute
	}

	if c.Queue.Driver == "" {
		c.Queue.Driver = "memory"
	}
	if c.Queue.Workers <= 0 {
		c.Queue.Workers = 2
	}
	if c.Queue.BufferSize <= 0 {
		c.Queue.BufferSize = 256
	}
	if c.Queue.JobTimeout == 0 {
		c.Queue.JobTimeout = 2 * time.Minute
	}
	if c.Queue.Redis.Key == "" {
		c.Queue.Redis.Key = "accounting-sync:webhook-jobs"
	}
}

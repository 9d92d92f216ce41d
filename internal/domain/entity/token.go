package entity

import "time"

// ProviderToken is a decrypted OAuth token.
type ProviderToken struct {
	Provider              string
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TenantID              string
	UpdatedAt             time.Time
}

// TokenGrant is the raw result of an OAuth token endpoint call. Lifetimes are
// in seconds from issue.
type TokenGrant struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int64
	RefreshExpiresIn int64
	TokenType        string
}

package model

import "time"

// ProviderToken stores the single current OAuth token for one provider.
// Access and refresh tokens are stored encrypted when a key is configured;
// the IV columns are empty for plaintext rows.
type ProviderToken struct {
	Provider              string    `gorm:"primaryKey;size:50" json:"provider"`
	AccessToken           string    `gorm:"type:text;not null" json:"-"`
	AccessTokenIV         string    `gorm:"size:64" json:"-"`
	RefreshToken          string    `gorm:"type:text;not null" json:"-"`
	RefreshTokenIV        string    `gorm:"size:64" json:"-"`
	AccessTokenExpiresAt  time.Time `gorm:"not null" json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `gorm:"not null" json:"refresh_token_expires_at"`
	TenantID              string    `gorm:"size:100" json:"tenant_id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ProviderToken) TableName() string {
	return "provider_tokens"
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
	"github.com/wekeepgrowing/accounting-sync/internal/infrastructure/crypto"
)

type tokenRepository struct {
	db        *gorm.DB
	encryptor crypto.EncryptionService
	logger    *zap.Logger
}

// NewTokenRepository creates a token repository. When encryptor is nil,
// tokens are stored in plaintext.
func NewTokenRepository(db *gorm.DB, encryptor crypto.EncryptionService, logger *zap.Logger) repository.TokenRepository {
	return &tokenRepository{
		db:        db,
		encryptor: encryptor,
		logger:    logger,
	}
}

func (r *tokenRepository) Get(ctx context.Context, provider string) (*entity.ProviderToken, error) {
	var row model.ProviderToken
	err := r.db.WithContext(ctx).Where("provider = ?", provider).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s token: %w", provider, err)
	}

	accessToken, err := r.open(row.AccessToken, row.AccessTokenIV)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s access token: %w", provider, err)
	}
	refreshToken, err := r.open(row.RefreshToken, row.RefreshTokenIV)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s refresh token: %w", provider, err)
	}

	return &entity.ProviderToken{
		Provider:              row.Provider,
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  row.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: row.RefreshTokenExpiresAt,
		TenantID:              row.TenantID,
		UpdatedAt:             row.UpdatedAt,
	}, nil
}

// Save upserts the provider's single token row.
func (r *tokenRepository) Save(ctx context.Context, token *entity.ProviderToken) error {
	accessToken, accessIV, err := r.seal(token.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refreshToken, refreshIV, err := r.seal(token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	row := &model.ProviderToken{
		Provider:              token.Provider,
		AccessToken:           accessToken,
		AccessTokenIV:         accessIV,
		RefreshToken:          refreshToken,
		RefreshTokenIV:        refreshIV,
		AccessTokenExpiresAt:  token.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: token.RefreshTokenExpiresAt,
		TenantID:              token.TenantID,
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "access_token_iv",
				"refresh_token", "refresh_token_iv",
				"access_token_expires_at", "refresh_token_expires_at",
				"tenant_id", "updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		r.logger.Error("Failed to save provider token",
			zap.String("provider", token.Provider),
			zap.Error(err))
		return fmt.Errorf("failed to save %s token: %w", token.Provider, err)
	}

	token.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *tokenRepository) seal(value string) (string, string, error) {
	if r.encryptor == nil {
		return value, "", nil
	}
	return r.encryptor.Encrypt(value)
}

func (r *tokenRepository) open(value, iv string) (string, error) {
	if iv == "" {
		return value, nil
	}
	if r.encryptor == nil {
		return "", errors.New("token is encrypted but no encryption key is configured")
	}
	return r.encryptor.Decrypt(value, iv)
}

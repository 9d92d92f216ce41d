package repository

import (
	"context"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

// TokenRepository keeps one token per provider; Save overwrites it.
type TokenRepository interface {
	Get(ctx context.Context, provider string) (*entity.ProviderToken, error)
	Save(ctx context.Context, token *entity.ProviderToken) error
}

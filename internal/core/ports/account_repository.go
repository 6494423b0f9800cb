package ports

import (
	"context"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// AccountRepository defines account persistence for the dev API.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Account, int, error)
	Delete(ctx context.Context, id string) error
}

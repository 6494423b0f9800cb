package ports

import (
	"context"

	"github.com/travelreviews/webclient/internal/core/domain"
)

type ReviewsAPI interface {
	List(ctx context.Context, params domain.ListParams) (*domain.Envelope[[]domain.Review], error)
	Get(ctx context.Context, id string) (*domain.Envelope[domain.Review], error)
	Create(ctx context.Context, in domain.ReviewInput) (*domain.Envelope[domain.Review], error)
	Update(ctx context.Context, id string, in domain.ReviewInput) (*domain.Envelope[domain.Review], error)
	Delete(ctx context.Context, id string) error
	Like(ctx context.Context, id string) error
	MarkHelpful(ctx context.Context, id string) error
}

type ArticlesAPI interface {
	List(ctx context.Context, params domain.ListParams) (*domain.Envelope[[]domain.Article], error)
	Get(ctx context.Context, id string) (*domain.Envelope[domain.Article], error)
	Create(ctx context.Context, in domain.ArticleInput) (*domain.Envelope[domain.Article], error)
	Update(ctx context.Context, id string, in domain.ArticleInput) (*domain.Envelope[domain.Article], error)
	Delete(ctx context.Context, id string) error
	Publish(ctx context.Context, id string) error
}

type ContactAPI interface {
	Send(ctx context.Context, msg domain.ContactMessage) error
}

type AdminAPI interface {
	Stats(ctx context.Context) (*domain.Envelope[domain.AdminStats], error)
	Users(ctx context.Context, params domain.ListParams) (*domain.Envelope[[]domain.AdminUser], error)
	UpdateUserRole(ctx context.Context, userID string, role domain.Role) error
	DeleteUser(ctx context.Context, userID string) error
}

package ports

import (
	"context"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByTokenIdentifier(ctx context.Context, tokenIdentifier string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	// CreateIfAbsent inserts user unless one with the same token identifier
	// exists. It returns the stored user and whether it was created.
	CreateIfAbsent(ctx context.Context, user *domain.User) (*domain.User, bool, error)
	AddOrganization(ctx context.Context, userID, orgID string) error
	RemoveOrganization(ctx context.Context, userID, orgID string) error
}

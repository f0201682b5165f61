// Package users is the credential store: administrator accounts keyed by
// email address.
package users

import (
	"context"

	"github.com/dmitrijs2005/complaintdesk/internal/server/models"
)

type Repository interface {
	// FindByEmail returns common.ErrorNotFound when no account uses email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Insert stores user and fills in ID and CreatedAt. A second account with
	// the same email fails with common.ErrDuplicateKey.
	Insert(ctx context.Context, user *models.User) (*models.User, error)
}

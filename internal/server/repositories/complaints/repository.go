// Package complaints stores submissions from the public complaint form.
package complaints

import (
	"context"

	"github.com/dmitrijs2005/complaintdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, complaint *models.Complaint) (*models.Complaint, error)
	// List returns all complaints, newest first.
	List(ctx context.Context) ([]*models.Complaint, error)
}

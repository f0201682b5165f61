package complaints

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/complaintdesk/internal/dbx"
	"github.com/dmitrijs2005/complaintdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, complaint *models.Complaint) (*models.Complaint, error) {
	query :=
		`INSERT INTO complaints (name, email, location, message, image_path)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	imagePath := sql.NullString{String: complaint.ImagePath, Valid: complaint.ImagePath != ""}

	err := r.db.QueryRowContext(ctx, query,
		complaint.Name, complaint.Email, complaint.Location, complaint.Message, imagePath).
		Scan(&complaint.ID, &complaint.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return complaint, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Complaint, error) {
	query :=
		`SELECT id, name, email, location, message, image_path, created_at
		 FROM complaints
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select complaints: %w", err)
	}
	defer rows.Close()

	var result []*models.Complaint
	for rows.Next() {
		var (
			item      models.Complaint
			imagePath sql.NullString
		)
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Email, &item.Location, &item.Message,
			&imagePath, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.ImagePath = imagePath.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

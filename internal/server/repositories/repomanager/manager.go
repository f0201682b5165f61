package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/complaintdesk/internal/dbx"
	"github.com/dmitrijs2005/complaintdesk/internal/server/repositories/complaints"
	"github.com/dmitrijs2005/complaintdesk/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Complaints(db dbx.DBTX) complaints.Repository
}

package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/complaintdesk/internal/dbx"
	"github.com/dmitrijs2005/complaintdesk/internal/server/repositories/complaints"
	"github.com/dmitrijs2005/complaintdesk/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves process-local repositories. The db
// handle passed to the factories is ignored, so a nil *sql.DB is fine.
// Used for development (DSN "memory://") and tests.
type InMemoryRepositoryManager struct {
	users      *users.MemoryRepository
	complaints *complaints.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:      users.NewMemoryRepository(),
		complaints: complaints.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Complaints(dbx.DBTX) complaints.Repository {
	return m.complaints
}

package users

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/complaintdesk/internal/common"
	"github.com/dmitrijs2005/complaintdesk/internal/server/models"
)

// MemoryRepository is a process-local credential store. Email uniqueness is
// checked under the same lock as the insert.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]models.User
	nextID  int
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byEmail: make(map[string]models.User),
		now:     time.Now,
	}
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) Insert(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateKey
	}

	r.nextID++
	user.ID = strconv.Itoa(r.nextID)
	user.CreatedAt = r.now()
	r.byEmail[user.Email] = *user

	return user, nil
}

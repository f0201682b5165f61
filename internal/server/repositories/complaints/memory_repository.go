package complaints

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/complaintdesk/internal/server/models"
)

// MemoryRepository keeps complaints in insertion order.
type MemoryRepository struct {
	mu     sync.RWMutex
	items  []models.Complaint
	nextID int
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, complaint *models.Complaint) (*models.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	complaint.ID = strconv.Itoa(r.nextID)
	complaint.CreatedAt = r.now()
	r.items = append(r.items, *complaint)

	return complaint, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Complaint, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		c := r.items[i]
		result = append(result, &c)
	}
	return result, nil
}

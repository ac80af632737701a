package files

import (
	"context"
	"sync"
	"time"

	"github.com/zeroshare/zeroshare/internal/common"
	"github.com/zeroshare/zeroshare/internal/server/models"
)

// InMemoryRepository is a mutex-guarded registry for development and tests.
// The check-and-increment runs under one lock acquisition, giving the same
// admission atomicity a single conditional UPDATE gives on Postgres.
type InMemoryRepository struct {
	mu      sync.Mutex
	objects map[string]*models.FileObject
}

// NewInMemoryRepository constructs an empty in-memory registry.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{objects: make(map[string]*models.FileObject)}
}

func (r *InMemoryRepository) Create(_ context.Context, f *models.FileObject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.objects[f.ID]; ok {
		return common.ErrAlreadyExists
	}
	cp := *f
	r.objects[f.ID] = &cp
	return nil
}

func (r *InMemoryRepository) TryConsume(_ context.Context, id string, now time.Time) (*models.FileObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.objects[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if f.Expired(now) {
		return nil, common.ErrExpired
	}
	if f.Spent() {
		return nil, common.ErrAlreadyConsumed
	}
	f.DownloadCount++
	cp := *f
	return &cp, nil
}

func (r *InMemoryRepository) DeleteSpent(_ context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.objects[id]
	if !ok || f.Servable(now) {
		return false, nil
	}
	delete(r.objects, id)
	return true, nil
}

func (r *InMemoryRepository) SelectPurgeable(_ context.Context, now time.Time, limit int) ([]*models.FileObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.FileObject
	for _, f := range r.objects {
		if f.Servable(now) {
			continue
		}
		cp := *f
		result = append(result, &cp)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

package memory

import (
	"context"
	"sync"

	"inquiry-backend/internal/domain"
)

// InquiryRepository is a bounded in-process archive for deployments without Postgres
type InquiryRepository struct {
	mu    sync.RWMutex
	max   int
	seq   int64
	items []domain.ArchivedInquiry
}

// NewInquiryRepository keeps at most max inquiries, dropping the oldest
func NewInquiryRepository(max int) *InquiryRepository {
	return &InquiryRepository{max: max}
}

func (r *InquiryRepository) Create(ctx context.Context, inq *domain.ArchivedInquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.AttemptID == inq.AttemptID {
			*inq = existing
			return nil
		}
	}

	r.seq++
	inq.ID = r.seq
	r.items = append(r.items, *inq)
	if r.max > 0 && len(r.items) > r.max {
		r.items = r.items[len(r.items)-r.max:]
	}
	return nil
}

// List returns newest first
func (r *InquiryRepository) List(ctx context.Context, limit, offset int) ([]domain.ArchivedInquiry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := int64(len(r.items))
	var out []domain.ArchivedInquiry
	for i := len(r.items) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.items[i])
	}
	return out, total, nil
}

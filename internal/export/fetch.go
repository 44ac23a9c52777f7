package export

import (
	"context"

	"civic-backend/internal/models"
	"civic-backend/internal/repository"
)

// Lister is the read side of the complaint repository.
type Lister interface {
	List(ctx context.Context, f repository.ComplaintFilter) ([]models.Complaint, error)
}

// FetchAll pages through every complaint matching f, ignoring its limit and
// offset.
func FetchAll(ctx context.Context, repo Lister, f repository.ComplaintFilter) ([]models.Complaint, error) {
	f.Limit = repository.MaxComplaintLimit
	f.Offset = 0

	var out []models.Complaint
	for {
		page, err := repo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < f.Limit {
			return out, nil
		}
		f.Offset += len(page)
	}
}

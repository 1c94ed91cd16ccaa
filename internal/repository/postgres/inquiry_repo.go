package postgres

import (
	"context"
	"errors"
	"fmt"

	"inquiry-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type inquiryRepo struct {
	db *pgxpool.Pool
}

// NewInquiryRepository creates the Postgres-backed inquiry archive
func NewInquiryRepository(db *pgxpool.Pool) domain.InquiryRepository {
	return &inquiryRepo{db: db}
}

// Create archives a dispatched inquiry. Archiving the same attempt twice is a no-op
// that loads the existing row.
func (r *inquiryRepo) Create(ctx context.Context, inq *domain.ArchivedInquiry) error {
	query := `
		INSERT INTO inquiries (attempt_id, lang, user_name, user_company, user_email,
		                       user_phone, pol_pod, commodity_description, dispatched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (attempt_id) DO NOTHING
		RETURNING id`

	in := inq.Inquiry
	err := r.db.QueryRow(ctx, query,
		inq.AttemptID, inq.Lang, in.Name, in.Company, in.Email,
		in.Phone, in.PolPod, in.Commodity, inq.DispatchedAt,
	).Scan(&inq.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.db.QueryRow(ctx, `SELECT id, dispatched_at FROM inquiries WHERE attempt_id = $1`, inq.AttemptID).
			Scan(&inq.ID, &inq.DispatchedAt)
	}
	if err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

// List returns archived inquiries newest first with the total count
func (r *inquiryRepo) List(ctx context.Context, limit, offset int) ([]domain.ArchivedInquiry, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM inquiries`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inquiries: %w", err)
	}

	query := `
		SELECT id, attempt_id, lang, user_name, user_company, user_email,
		       user_phone, pol_pod, commodity_description, dispatched_at
		FROM inquiries
		ORDER BY dispatched_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	var items []domain.ArchivedInquiry
	for rows.Next() {
		var a domain.ArchivedInquiry
		if err := rows.Scan(
			&a.ID, &a.AttemptID, &a.Lang, &a.Inquiry.Name, &a.Inquiry.Company, &a.Inquiry.Email,
			&a.Inquiry.Phone, &a.Inquiry.PolPod, &a.Inquiry.Commodity, &a.DispatchedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan inquiry: %w", err)
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

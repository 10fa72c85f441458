package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/interiorly/interiorly/internal/model"
)

// PostgresDealRepo はPostgreSQLを使用したキャンペーンリポジトリ。
type PostgresDealRepo struct {
	db *sql.DB
}

// NewPostgresDealRepo はPostgresDealRepoを生成する。
func NewPostgresDealRepo(db *sql.DB) *PostgresDealRepo {
	return &PostgresDealRepo{db: db}
}

// ListActive は now 時点で有効なキャンペーンをデザイナー情報付きで取得する。
// is_featured 降順、created_at 降順で最大 limit 件を返す。
func (r *PostgresDealRepo) ListActive(ctx context.Context, now time.Time, limit int) ([]*model.Deal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.id, d.designer_id, d.title, d.description, d.discount_percent,
		        d.original_price, d.deal_price, COALESCE(d.image_url, ''), d.is_featured,
		        d.valid_from, d.valid_until, d.created_at,
		        g.full_name, COALESCE(g.company_name, ''), COALESCE(g.city, ''),
		        COALESCE(g.avatar_url, ''), g.rating
		 FROM designer_deals d
		 JOIN designers g ON g.id = d.designer_id
		 WHERE d.is_active = true
		   AND d.valid_from <= $1
		   AND d.valid_until >= $1
		 ORDER BY d.is_featured DESC, d.created_at DESC
		 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active deals: %w", err)
	}
	defer rows.Close()

	var deals []*model.Deal
	for rows.Next() {
		d := &model.Deal{}
		if err := rows.Scan(
			&d.ID, &d.DesignerID, &d.Title, &d.Description, &d.DiscountPercent,
			&d.OriginalPrice, &d.DealPrice, &d.ImageURL, &d.IsFeatured,
			&d.ValidFrom, &d.ValidUntil, &d.CreatedAt,
			&d.Designer.FullName, &d.Designer.CompanyName, &d.Designer.City,
			&d.Designer.AvatarURL, &d.Designer.Rating,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deals: %w", err)
	}

	return deals, nil
}

// compile-time interface check
var _ DealRepository = (*PostgresDealRepo)(nil)

// Package deals はトップページに掲載するデザイナーのキャンペーン情報を提供する。
package deals

import (
	"context"
	"fmt"
	"time"

	"github.com/interiorly/interiorly/internal/model"
	"github.com/interiorly/interiorly/internal/repository"
)

// DefaultLimit は一度に返すキャンペーンの既定の上限件数。
const DefaultLimit = 10

// Sanitizer はキャンペーンの説明文と画像URLを無害化するインターフェース。
type Sanitizer interface {
	Description(rawHTML string) string
	ImageURL(raw string) string
}

// Service はキャンペーン情報の取得を提供する。
type Service struct {
	repo      repository.DealRepository
	sanitizer Sanitizer
	limit     int
	now       func() time.Time
}

// NewService はServiceを生成する。limitが0以下の場合はDefaultLimitを使用する。
func NewService(repo repository.DealRepository, sanitizer Sanitizer, limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		limit:     limit,
		now:       time.Now,
	}
}

// ListActive は現在有効なキャンペーンを注目順・新着順で返す。
// 説明文と画像URLはサニタイズ済み。
func (s *Service) ListActive(ctx context.Context) ([]*model.Deal, error) {
	deals, err := s.repo.ListActive(ctx, s.now(), s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	for _, d := range deals {
		d.Description = s.sanitizer.Description(d.Description)
		d.ImageURL = s.sanitizer.ImageURL(d.ImageURL)
		d.Designer.AvatarURL = s.sanitizer.ImageURL(d.Designer.AvatarURL)
	}

	if deals == nil {
		deals = []*model.Deal{}
	}
	return deals, nil
}

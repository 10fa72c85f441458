// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/interiorly/interiorly/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Upsert は認証バックエンドのユーザーをローカルにミラーする。
	// 既存レコードの is_admin は変更しない。
	Upsert(ctx context.Context, user *model.User) error
}

// SessionReader はセッションの参照インターフェース。
// セッションを書き換えられるのは auth.Service のみで、他のコンポーネントにはこの型で渡す。
type SessionReader interface {
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	SessionReader

	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DesignerRepository はデザイナープロフィールの参照インターフェース。
type DesignerRepository interface {
	// FindIDByUserID はユーザーIDに紐づくデザイナーIDを返す。
	// 見つからない場合は空文字列とnilを返す。
	FindIDByUserID(ctx context.Context, userID string) (string, error)
}

// CustomerRepository は顧客プロジェクトの参照インターフェース。
type CustomerRepository interface {
	// ExistsByUserID はユーザーIDに紐づく顧客プロジェクトが存在するかを返す。
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
}

// DealRepository はデザイナーのキャンペーン情報の参照インターフェース。
type DealRepository interface {
	// ListActive は now 時点で有効なキャンペーンを取得する。
	// is_featured 降順、created_at 降順で最大 limit 件を返す。
	ListActive(ctx context.Context, now time.Time, limit int) ([]*model.Deal, error)
}
